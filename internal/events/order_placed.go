package events

import (
	"time"

	"github.com/shopkern/orderd/internal/order"
)

type OrderPlacedLine struct {
	ItemID     string `json:"itemId"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
}

type OrderPlaced struct {
	EventType  string            `json:"eventType"`
	OrderID    string            `json:"orderId"`
	AccountID  string            `json:"accountId"`
	TotalCents int64             `json:"totalCents"`
	Lines      []OrderPlacedLine `json:"lines"`
	Timestamp  time.Time         `json:"timestamp"`
}

func newOrderPlaced(o *order.Order, now time.Time) OrderPlaced {
	ev := OrderPlaced{
		EventType:  "OrderPlaced",
		OrderID:    o.ID,
		AccountID:  o.AccountID,
		TotalCents: o.TotalCents,
		Timestamp:  now,
	}
	for _, ln := range o.Lines {
		ev.Lines = append(ev.Lines, OrderPlacedLine{
			ItemID:     ln.ItemID,
			Quantity:   ln.Quantity,
			PriceCents: ln.PriceCents,
		})
	}
	return ev
}

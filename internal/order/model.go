package order

import "time"

type Line struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
	// PriceCents is the line total snapshotted at order time, unit price
	// times quantity. Later price changes never touch it.
	PriceCents int64 `json:"priceCents"`
}

type Order struct {
	ID             string    `json:"orderId"`
	AccountID      string    `json:"accountId"`
	TotalCents     int64     `json:"totalCents"`
	Status         Status    `json:"status"`
	IdempotencyKey string    `json:"idempotencyKey"`
	CreatedAt      time.Time `json:"createdAt"`
	Lines          []Line    `json:"lines"`
}

package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/shopkern/orderd/internal/account"
	"github.com/shopkern/orderd/internal/inventory"
	"github.com/shopkern/orderd/internal/loader"
	"github.com/shopkern/orderd/internal/order"
)

type lineView struct {
	ItemID     string          `json:"itemId"`
	Quantity   int             `json:"quantity"`
	PriceCents int64           `json:"priceCents"`
	Item       *inventory.Item `json:"item,omitempty"`
}

type orderView struct {
	OrderID        string           `json:"orderId"`
	AccountID      string           `json:"accountId"`
	TotalCents     int64            `json:"totalCents"`
	Status         order.Status     `json:"status"`
	IdempotencyKey string           `json:"idempotencyKey"`
	CreatedAt      time.Time        `json:"createdAt"`
	Lines          []lineView       `json:"lines"`
	Account        *account.Account `json:"account,omitempty"`
}

type pageView struct {
	Nodes      []orderView    `json:"nodes"`
	TotalCount int            `json:"totalCount"`
	PageInfo   order.PageInfo `json:"pageInfo"`
}

func parseExpand(raw string) (expandAccount, expandItems, ok bool) {
	if raw == "" {
		return false, false, true
	}
	for _, part := range strings.Split(raw, ",") {
		switch strings.TrimSpace(part) {
		case "account":
			expandAccount = true
		case "items":
			expandItems = true
		case "":
		default:
			return false, false, false
		}
	}
	return expandAccount, expandItems, true
}

// renderOrders resolves the requested expansions through a request-scoped
// loader set. Every key is enqueued before the first thunk is forced, so
// each entity type needs a single batched query no matter how many orders
// and lines the page holds. A reference whose target no longer exists
// renders without the expanded entity; only storage faults fail the page.
func (h *Handler) renderOrders(ctx context.Context, orders []order.Order, expandAccount, expandItems bool) ([]orderView, error) {
	loaders := loader.New(h.accounts, h.items, h.orderSrc)

	accThunks := make([]dataloader.Thunk[account.Account], len(orders))
	itemThunks := make([][]dataloader.Thunk[inventory.Item], len(orders))
	for i, o := range orders {
		if expandAccount {
			accThunks[i] = loaders.Accounts.Load(ctx, o.AccountID)
		}
		if expandItems {
			itemThunks[i] = make([]dataloader.Thunk[inventory.Item], len(o.Lines))
			for j, ln := range o.Lines {
				itemThunks[i][j] = loaders.Items.Load(ctx, ln.ItemID)
			}
		}
	}

	views := make([]orderView, len(orders))
	for i, o := range orders {
		v := orderView{
			OrderID:        o.ID,
			AccountID:      o.AccountID,
			TotalCents:     o.TotalCents,
			Status:         o.Status,
			IdempotencyKey: o.IdempotencyKey,
			CreatedAt:      o.CreatedAt,
			Lines:          make([]lineView, len(o.Lines)),
		}
		for j, ln := range o.Lines {
			v.Lines[j] = lineView{ItemID: ln.ItemID, Quantity: ln.Quantity, PriceCents: ln.PriceCents}
		}
		if expandAccount {
			a, err := accThunks[i]()
			switch {
			case err == nil:
				v.Account = &a
			case !errors.Is(err, account.ErrNotFound):
				return nil, fmt.Errorf("expand account %s: %w", o.AccountID, err)
			}
		}
		if expandItems {
			for j := range o.Lines {
				it, err := itemThunks[i][j]()
				switch {
				case err == nil:
					v.Lines[j].Item = &it
				case !errors.Is(err, inventory.ErrNotFound):
					return nil, fmt.Errorf("expand item %s: %w", o.Lines[j].ItemID, err)
				}
			}
		}
		views[i] = v
	}
	return views, nil
}

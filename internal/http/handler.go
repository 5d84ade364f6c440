package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/shopkern/orderd/internal/account"
	"github.com/shopkern/orderd/internal/inventory"
	"github.com/shopkern/orderd/internal/loader"
	"github.com/shopkern/orderd/internal/order"
)

// OrderService is the slice of the order service the API uses.
type OrderService interface {
	Create(ctx context.Context, in order.CreateOrderInput) (*order.Order, error)
	Get(ctx context.Context, orderID string) (*order.Order, error)
	List(ctx context.Context, f order.ListFilter) (*order.Page, error)
}

// ItemStore is the slice of the inventory repository the API uses.
type ItemStore interface {
	Create(ctx context.Context, it *inventory.Item) error
	GetByID(ctx context.Context, itemID string) (inventory.Item, error)
	GetByIDs(ctx context.Context, itemIDs []string) ([]inventory.Item, error)
	List(ctx context.Context) ([]inventory.Item, error)
	Restock(ctx context.Context, itemID string, quantity int) (inventory.Item, error)
}

type Handler struct {
	orders   OrderService
	accounts account.Repository
	items    ItemStore
	orderSrc loader.OrderSource
	logger   *zap.Logger
}

func NewHandler(orders OrderService, accounts account.Repository, items ItemStore, orderSrc loader.OrderSource, logger *zap.Logger) *Handler {
	return &Handler{orders: orders, accounts: accounts, items: items, orderSrc: orderSrc, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

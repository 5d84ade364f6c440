package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopkern/orderd/internal/account"
	"github.com/shopkern/orderd/internal/inventory"
	"github.com/shopkern/orderd/internal/order"
)

type fakeOrderService struct {
	createFn func(ctx context.Context, in order.CreateOrderInput) (*order.Order, error)
	getFn    func(ctx context.Context, orderID string) (*order.Order, error)
	listFn   func(ctx context.Context, f order.ListFilter) (*order.Page, error)
}

func (f *fakeOrderService) Create(ctx context.Context, in order.CreateOrderInput) (*order.Order, error) {
	if f.createFn != nil {
		return f.createFn(ctx, in)
	}
	return &order.Order{ID: "order-1"}, nil
}

func (f *fakeOrderService) Get(ctx context.Context, orderID string) (*order.Order, error) {
	if f.getFn != nil {
		return f.getFn(ctx, orderID)
	}
	return &order.Order{ID: orderID}, nil
}

func (f *fakeOrderService) List(ctx context.Context, fl order.ListFilter) (*order.Page, error) {
	if f.listFn != nil {
		return f.listFn(ctx, fl)
	}
	return &order.Page{Nodes: []order.Order{}}, nil
}

type fakeAccounts struct {
	accounts map[string]account.Account
	createFn func(ctx context.Context, a *account.Account) error
	batches  [][]string
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: map[string]account.Account{}}
}

func (f *fakeAccounts) Create(ctx context.Context, a *account.Account) error {
	if f.createFn != nil {
		return f.createFn(ctx, a)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	f.accounts[a.ID] = *a
	return nil
}

func (f *fakeAccounts) GetByID(ctx context.Context, accountID string) (account.Account, error) {
	if a, ok := f.accounts[accountID]; ok {
		return a, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (f *fakeAccounts) GetByIDs(ctx context.Context, accountIDs []string) ([]account.Account, error) {
	f.batches = append(f.batches, append([]string(nil), accountIDs...))
	var out []account.Account
	for _, id := range accountIDs {
		if a, ok := f.accounts[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccounts) List(ctx context.Context) ([]account.Account, error) {
	var out []account.Account
	for _, a := range f.accounts {
		out = append(out, a)
	}
	return out, nil
}

type fakeItems struct {
	items   map[string]inventory.Item
	batches [][]string
}

func newFakeItems() *fakeItems {
	return &fakeItems{items: map[string]inventory.Item{}}
}

func (f *fakeItems) Create(ctx context.Context, it *inventory.Item) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	f.items[it.ID] = *it
	return nil
}

func (f *fakeItems) GetByID(ctx context.Context, itemID string) (inventory.Item, error) {
	if it, ok := f.items[itemID]; ok {
		return it, nil
	}
	return inventory.Item{}, inventory.ErrNotFound
}

func (f *fakeItems) GetByIDs(ctx context.Context, itemIDs []string) ([]inventory.Item, error) {
	f.batches = append(f.batches, append([]string(nil), itemIDs...))
	var out []inventory.Item
	for _, id := range itemIDs {
		if it, ok := f.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItems) List(ctx context.Context) ([]inventory.Item, error) {
	var out []inventory.Item
	for _, it := range f.items {
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeItems) Restock(ctx context.Context, itemID string, quantity int) (inventory.Item, error) {
	it, ok := f.items[itemID]
	if !ok {
		return inventory.Item{}, inventory.ErrNotFound
	}
	it.Stock += quantity
	it.Version++
	f.items[itemID] = it
	return it, nil
}

type fakeOrderSrc struct{}

func (f *fakeOrderSrc) GetByIDs(ctx context.Context, orderIDs []string) ([]order.Order, error) {
	return nil, nil
}

func newTestRouter(svc OrderService, accounts *fakeAccounts, items *fakeItems) http.Handler {
	if accounts == nil {
		accounts = newFakeAccounts()
	}
	if items == nil {
		items = newFakeItems()
	}
	return NewRouter(NewHandler(svc, accounts, items, &fakeOrderSrc{}, zap.NewNop()))
}

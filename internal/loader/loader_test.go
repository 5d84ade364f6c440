package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopkern/orderd/internal/account"
	"github.com/shopkern/orderd/internal/inventory"
	"github.com/shopkern/orderd/internal/order"
)

type fakeAccountSource struct {
	accounts map[string]account.Account
	batches  [][]string
	err      error
}

func (f *fakeAccountSource) GetByIDs(ctx context.Context, ids []string) ([]account.Account, error) {
	f.batches = append(f.batches, append([]string(nil), ids...))
	if f.err != nil {
		return nil, f.err
	}
	var out []account.Account
	for _, id := range ids {
		if a, ok := f.accounts[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeItemSource struct {
	items   map[string]inventory.Item
	batches [][]string
}

func (f *fakeItemSource) GetByIDs(ctx context.Context, ids []string) ([]inventory.Item, error) {
	f.batches = append(f.batches, append([]string(nil), ids...))
	var out []inventory.Item
	for _, id := range ids {
		if it, ok := f.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

type fakeOrderSource struct {
	orders map[string]order.Order
}

func (f *fakeOrderSource) GetByIDs(ctx context.Context, ids []string) ([]order.Order, error) {
	var out []order.Order
	for _, id := range ids {
		if o, ok := f.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func newTestLoaders() (*Loaders, *fakeAccountSource, *fakeItemSource) {
	accounts := &fakeAccountSource{accounts: map[string]account.Account{
		"acc-1": {ID: "acc-1", Name: "Ada"},
		"acc-2": {ID: "acc-2", Name: "Grace"},
	}}
	items := &fakeItemSource{items: map[string]inventory.Item{
		"item-a": {ID: "item-a", Name: "Keyboard", UnitPriceCents: 4999},
		"item-b": {ID: "item-b", Name: "Mouse", UnitPriceCents: 1999},
	}}
	orders := &fakeOrderSource{orders: map[string]order.Order{}}
	return New(accounts, items, orders), accounts, items
}

func TestLoadersSingleBatchPerEntity(t *testing.T) {
	loaders, accounts, _ := newTestLoaders()
	ctx := context.Background()

	// Request the same key twice plus a second key before forcing any
	// thunk: one batch, duplicates collapsed.
	t1 := loaders.Accounts.Load(ctx, "acc-1")
	t2 := loaders.Accounts.Load(ctx, "acc-2")
	t3 := loaders.Accounts.Load(ctx, "acc-1")

	a1, err := t1()
	require.NoError(t, err)
	require.Equal(t, "Ada", a1.Name)

	a2, err := t2()
	require.NoError(t, err)
	require.Equal(t, "Grace", a2.Name)

	a3, err := t3()
	require.NoError(t, err)
	require.Equal(t, a1, a3)

	require.Len(t, accounts.batches, 1)
	require.ElementsMatch(t, []string{"acc-1", "acc-2"}, accounts.batches[0])
}

func TestLoadersCachesWithinInstance(t *testing.T) {
	loaders, accounts, _ := newTestLoaders()
	ctx := context.Background()

	first, err := loaders.Accounts.Load(ctx, "acc-1")()
	require.NoError(t, err)

	// Second load of a resolved key is served from the cache.
	second, err := loaders.Accounts.Load(ctx, "acc-1")()
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, accounts.batches, 1)
}

func TestLoadersFreshInstanceRefetches(t *testing.T) {
	accounts := &fakeAccountSource{accounts: map[string]account.Account{
		"acc-1": {ID: "acc-1", Name: "Ada"},
	}}
	items := &fakeItemSource{items: map[string]inventory.Item{}}
	orders := &fakeOrderSource{orders: map[string]order.Order{}}

	ctx := context.Background()
	_, err := New(accounts, items, orders).Accounts.Load(ctx, "acc-1")()
	require.NoError(t, err)
	_, err = New(accounts, items, orders).Accounts.Load(ctx, "acc-1")()
	require.NoError(t, err)

	require.Len(t, accounts.batches, 2)
}

func TestLoadersMissingKeyDoesNotFailBatch(t *testing.T) {
	loaders, _, items := newTestLoaders()
	ctx := context.Background()

	tMissing := loaders.Items.Load(ctx, "ghost")
	tPresent := loaders.Items.Load(ctx, "item-a")

	_, err := tMissing()
	require.ErrorIs(t, err, inventory.ErrNotFound)

	it, err := tPresent()
	require.NoError(t, err)
	require.Equal(t, "Keyboard", it.Name)

	require.Len(t, items.batches, 1)
	require.ElementsMatch(t, []string{"ghost", "item-a"}, items.batches[0])
}

func TestLoadersFetchErrorReachesEveryKey(t *testing.T) {
	loaders, accounts, _ := newTestLoaders()
	accounts.err = errors.New("db down")
	ctx := context.Background()

	t1 := loaders.Accounts.Load(ctx, "acc-1")
	t2 := loaders.Accounts.Load(ctx, "acc-2")

	_, err1 := t1()
	_, err2 := t2()
	require.ErrorContains(t, err1, "db down")
	require.ErrorContains(t, err2, "db down")
}

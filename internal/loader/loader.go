package loader

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/shopkern/orderd/internal/account"
	"github.com/shopkern/orderd/internal/inventory"
	"github.com/shopkern/orderd/internal/order"
)

// The sources match the bulk-fetch methods on the repositories.
type AccountSource interface {
	GetByIDs(ctx context.Context, accountIDs []string) ([]account.Account, error)
}

type ItemSource interface {
	GetByIDs(ctx context.Context, itemIDs []string) ([]inventory.Item, error)
}

type OrderSource interface {
	GetByIDs(ctx context.Context, orderIDs []string) ([]order.Order, error)
}

// Loaders batches and deduplicates entity lookups. All keys requested
// within one batch window are fetched with a single query per entity type,
// and a key is never fetched twice by the same Loaders instance.
//
// Construct a fresh instance per request: the cache has no eviction and is
// only correct while the underlying data can be treated as a snapshot.
type Loaders struct {
	Accounts *dataloader.Loader[string, account.Account]
	Items    *dataloader.Loader[string, inventory.Item]
	Orders   *dataloader.Loader[string, order.Order]
}

func New(accounts AccountSource, items ItemSource, orders OrderSource) *Loaders {
	return &Loaders{
		Accounts: newLoader(accounts.GetByIDs, func(a account.Account) string { return a.ID }, account.ErrNotFound),
		Items:    newLoader(items.GetByIDs, func(it inventory.Item) string { return it.ID }, inventory.ErrNotFound),
		Orders:   newLoader(orders.GetByIDs, func(o order.Order) string { return o.ID }, order.ErrNotFound),
	}
}

func newLoader[V any](fetch func(context.Context, []string) ([]V, error), id func(V) string, notFound error) *dataloader.Loader[string, V] {
	return dataloader.NewBatchedLoader(
		batchByID(fetch, id, notFound),
		dataloader.WithWait[string, V](time.Millisecond),
		dataloader.WithBatchCapacity[string, V](100),
	)
}

// batchByID adapts a bulk fetch into a dataloader batch function. Results
// line up 1:1 with keys; keys the fetch did not return resolve to notFound
// without failing the rest of the batch.
func batchByID[V any](fetch func(context.Context, []string) ([]V, error), id func(V) string, notFound error) dataloader.BatchFunc[string, V] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[V] {
		results := make([]*dataloader.Result[V], len(keys))

		values, err := fetch(ctx, keys)
		if err != nil {
			for i := range keys {
				results[i] = &dataloader.Result[V]{Error: err}
			}
			return results
		}

		byID := make(map[string]V, len(values))
		for _, v := range values {
			byID[id(v)] = v
		}
		for i, key := range keys {
			if v, ok := byID[key]; ok {
				results[i] = &dataloader.Result[V]{Data: v}
			} else {
				results[i] = &dataloader.Result[V]{Error: notFound}
			}
		}
		return results
	}
}

package order

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/shopkern/orderd/internal/account"
	"github.com/shopkern/orderd/internal/db"
	"github.com/shopkern/orderd/internal/inventory"
)

// EventPublisher emits integration events after an order commits.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, o *Order) error
}

type CreateOrderInput struct {
	AccountID      string      `json:"accountId"`
	IdempotencyKey string      `json:"idempotencyKey"`
	Lines          []LineInput `json:"lines"`
}

type LineInput struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

func (in CreateOrderInput) validate() error {
	if in.AccountID == "" {
		return &ValidationError{Field: "accountId", Reason: "must not be empty"}
	}
	if in.IdempotencyKey == "" {
		return &ValidationError{Field: "idempotencyKey", Reason: "must not be empty"}
	}
	if len(in.Lines) == 0 {
		return &ValidationError{Field: "lines", Reason: "must contain at least one line"}
	}
	for i, ln := range in.Lines {
		if ln.ItemID == "" {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].itemId", i), Reason: "must not be empty"}
		}
		if ln.Quantity <= 0 {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].quantity", i), Reason: "must be a positive integer"}
		}
	}
	return nil
}

// mergeLines combines duplicate item ids into one line with the summed
// quantity and returns the result sorted by item id ascending, the same
// order the row locks are acquired in.
func mergeLines(lines []LineInput) []LineInput {
	qty := make(map[string]int, len(lines))
	for _, ln := range lines {
		qty[ln.ItemID] += ln.Quantity
	}
	ids := make([]string, 0, len(qty))
	for id := range qty {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	merged := make([]LineInput, len(ids))
	for i, id := range ids {
		merged[i] = LineInput{ItemID: id, Quantity: qty[id]}
	}
	return merged
}

type Service struct {
	db       db.DB
	accounts account.Repository
	items    inventory.Repository
	orders   Repository
	events   EventPublisher
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewService(database db.DB, accounts account.Repository, items inventory.Repository, orders Repository, events EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		db:       database,
		accounts: accounts,
		items:    items,
		orders:   orders,
		events:   events,
		logger:   logger,
		tracer:   otel.Tracer("orderd/order"),
	}
}

// Create places an order: each line's price is snapshotted as the unit
// price at order time multiplied by the quantity, stock is deducted and
// the order inserted in one transaction. Replaying an idempotency key
// returns the stored order without touching stock again.
//
// Item rows are locked with FOR UPDATE NOWAIT in ascending id order, so two
// overlapping checkouts can never hold locks in opposite order. The loser of
// a lock race gets a ContentionError and may retry.
func (s *Service) Create(ctx context.Context, in CreateOrderInput) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.create")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	if existing, err := s.orders.GetByIdempotencyKey(ctx, in.IdempotencyKey); err == nil {
		s.logger.Info("idempotent replay",
			zap.String("orderId", existing.ID),
			zap.String("idempotencyKey", in.IdempotencyKey))
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if _, err := s.accounts.GetByID(ctx, in.AccountID); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, &NotFoundError{Resource: "account", IDs: []string{in.AccountID}}
		}
		return nil, err
	}

	merged := mergeLines(in.Lines)
	ids := make([]string, len(merged))
	for i, ln := range merged {
		ids[i] = ln.ItemID
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	locked, err := s.items.LockForUpdate(ctx, tx, ids)
	if err != nil {
		if db.IsLockNotAvailable(err) {
			span.SetAttributes(attribute.Bool("order.contended", true))
			return nil, &ContentionError{ItemIDs: ids}
		}
		return nil, err
	}
	byID := make(map[string]inventory.Item, len(locked))
	for _, it := range locked {
		byID[it.ID] = it
	}

	var missing []string
	for _, ln := range merged {
		if _, ok := byID[ln.ItemID]; !ok {
			missing = append(missing, ln.ItemID)
		}
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Resource: "item", IDs: missing}
	}

	lines := make([]Line, 0, len(merged))
	var total int64
	for _, ln := range merged {
		it := byID[ln.ItemID]
		if it.Stock < ln.Quantity {
			return nil, &InsufficientStockError{ItemID: it.ID, Requested: ln.Quantity, Available: it.Stock}
		}
		price := it.UnitPriceCents * int64(ln.Quantity)
		lines = append(lines, Line{ItemID: it.ID, Quantity: ln.Quantity, PriceCents: price})
		total += price
	}

	for _, ln := range lines {
		if err := s.items.UpdateStock(ctx, tx, ln.ItemID, byID[ln.ItemID].Stock-ln.Quantity); err != nil {
			return nil, err
		}
	}

	o := &Order{
		AccountID:      in.AccountID,
		TotalCents:     total,
		Status:         StatusConfirmed,
		IdempotencyKey: in.IdempotencyKey,
		Lines:          lines,
	}
	if err := s.orders.InsertWithTx(ctx, tx, o); err != nil {
		if db.IsUniqueViolation(err, "orders_idempotency_key_key") {
			// Lost the insert race on the key. Drop our transaction and
			// hand back the winner's order.
			_ = tx.Rollback(ctx)
			winner, ferr := s.orders.GetByIdempotencyKey(ctx, in.IdempotencyKey)
			if ferr != nil {
				return nil, &IdempotencyConflictError{Key: in.IdempotencyKey}
			}
			s.logger.Info("idempotent replay after insert race",
				zap.String("orderId", winner.ID),
				zap.String("idempotencyKey", in.IdempotencyKey))
			return winner, nil
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}

	span.SetAttributes(
		attribute.String("order.id", o.ID),
		attribute.Int64("order.total_cents", o.TotalCents),
		attribute.Int("order.lines", len(o.Lines)),
	)
	s.logger.Info("order placed",
		zap.String("orderId", o.ID),
		zap.String("accountId", o.AccountID),
		zap.Int64("totalCents", o.TotalCents),
		zap.Int("lines", len(o.Lines)))

	if s.events != nil {
		if err := s.events.PublishOrderPlaced(ctx, o); err != nil {
			s.logger.Warn("publish order placed", zap.String("orderId", o.ID), zap.Error(err))
		}
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, &ValidationError{Field: "orderId", Reason: "must not be empty"}
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Resource: "order", IDs: []string{orderID}}
		}
		return nil, err
	}
	return o, nil
}

// List returns one page of orders matching the filter, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) (*Page, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", f.Status)}
	}
	f = f.normalize()

	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return &Page{
		Nodes:      orders,
		TotalCount: total,
		PageInfo: PageInfo{
			HasNextPage:     f.Offset+f.Limit < total,
			HasPreviousPage: f.Offset > 0,
		},
	}, nil
}

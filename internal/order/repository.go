package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shopkern/orderd/internal/db"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	// InsertWithTx writes the order and its lines on the caller's
	// transaction.
	InsertWithTx(ctx context.Context, q db.Querier, o *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	GetByIDs(ctx context.Context, orderIDs []string) ([]Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, int, error)
}

type PostgresRepository struct {
	db db.Querier
}

func NewPostgresRepository(db db.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) InsertWithTx(ctx context.Context, q db.Querier, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	_, err := q.Exec(ctx, `
		INSERT INTO orders (id, account_id, total_cents, status, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, o.ID, o.AccountID, o.TotalCents, string(o.Status), o.IdempotencyKey, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, ln := range o.Lines {
		_, err := q.Exec(ctx, `
			INSERT INTO order_lines (id, order_id, item_id, quantity, price_cents)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), o.ID, ln.ItemID, ln.Quantity, ln.PriceCents)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	row := r.db.QueryRow(ctx, `
		SELECT id, account_id, total_cents, status, idempotency_key, created_at
		FROM orders
		WHERE id = $1
	`, orderID)
	if err := scanOrder(row, &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	orders := []Order{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// GetByIDs fetches all orders matching orderIDs, lines included, in two
// round trips. Missing ids are simply absent from the result.
func (r *PostgresRepository) GetByIDs(ctx context.Context, orderIDs []string) ([]Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, total_cents, status, idempotency_key, created_at
		FROM orders
		WHERE id = ANY($1)
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) GetByIdempotencyKey(ctx context.Context, key string) (*Order, error) {
	var o Order
	row := r.db.QueryRow(ctx, `
		SELECT id, account_id, total_cents, status, idempotency_key, created_at
		FROM orders
		WHERE idempotency_key = $1
	`, key)
	if err := scanOrder(row, &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select order by key: %w", err)
	}

	orders := []Order{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// List returns one page of orders plus the total count of rows matching the
// filter. Both queries share the same WHERE clause so the count stays
// consistent with the page.
func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	var conds []string
	var args []any
	if f.AccountID != "" {
		args = append(args, f.AccountID)
		conds = append(conds, fmt.Sprintf("account_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if !f.DateFrom.IsZero() {
		args = append(args, f.DateFrom)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !f.DateTo.IsZero() {
		args = append(args, f.DateTo)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT id, account_id, total_cents, status, idempotency_key, created_at
		FROM orders%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select orders: %w", err)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// attachLines loads the lines for every order in one query and fills them in.
func (r *PostgresRepository) attachLines(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	rows, err := r.db.Query(ctx, `
		SELECT order_id, item_id, quantity, price_cents
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY order_id, item_id
	`, ids)
	if err != nil {
		return fmt.Errorf("select order lines: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[string][]Line, len(orders))
	for rows.Next() {
		var orderID string
		var ln Line
		if err := rows.Scan(&orderID, &ln.ItemID, &ln.Quantity, &ln.PriceCents); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		byOrder[orderID] = append(byOrder[orderID], ln)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		orders[i].Lines = byOrder[orders[i].ID]
	}
	return nil
}

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(&o.ID, &o.AccountID, &o.TotalCents, &o.Status, &o.IdempotencyKey, &o.CreatedAt)
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return orders, nil
}

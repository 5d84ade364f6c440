package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shopkern/orderd/internal/db"
)

var ErrNotFound = errors.New("item not found")

type Repository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, itemID string) (Item, error)
	GetByIDs(ctx context.Context, itemIDs []string) ([]Item, error)
	List(ctx context.Context) ([]Item, error)
	Restock(ctx context.Context, itemID string, quantity int) (Item, error)

	// LockForUpdate and UpdateStock run on the caller's transaction.
	LockForUpdate(ctx context.Context, q db.Querier, itemIDs []string) ([]Item, error)
	UpdateStock(ctx context.Context, q db.Querier, itemID string, stock int) error
}

type PostgresRepository struct {
	db db.Querier
}

func NewPostgresRepository(db db.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, it *Item) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	it.UpdatedAt = it.CreatedAt
	if it.Version == 0 {
		it.Version = 1
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO inventory_items (id, name, unit_price_cents, stock, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, it.ID, it.Name, it.UnitPriceCents, it.Stock, it.Version, it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, itemID string) (Item, error) {
	var it Item
	row := r.db.QueryRow(ctx, `
		SELECT id, name, unit_price_cents, stock, version, created_at, updated_at
		FROM inventory_items
		WHERE id = $1
	`, itemID)
	if err := scanItem(row, &it); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, fmt.Errorf("select item: %w", err)
	}
	return it, nil
}

// GetByIDs fetches all items matching itemIDs in one round trip. Missing ids
// are simply absent from the result.
func (r *PostgresRepository) GetByIDs(ctx context.Context, itemIDs []string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, unit_price_cents, stock, version, created_at, updated_at
		FROM inventory_items
		WHERE id = ANY($1)
	`, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return collectItems(rows)
}

func (r *PostgresRepository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, unit_price_cents, stock, version, created_at, updated_at
		FROM inventory_items
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return collectItems(rows)
}

// Restock atomically adds quantity to the item's stock.
func (r *PostgresRepository) Restock(ctx context.Context, itemID string, quantity int) (Item, error) {
	var it Item
	row := r.db.QueryRow(ctx, `
		UPDATE inventory_items
		SET stock = stock + $2, version = version + 1, updated_at = now()
		WHERE id = $1
		RETURNING id, name, unit_price_cents, stock, version, created_at, updated_at
	`, itemID, quantity)
	if err := scanItem(row, &it); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, fmt.Errorf("restock item: %w", err)
	}
	return it, nil
}

// LockForUpdate locks the item rows for the duration of the caller's
// transaction. Rows are locked in ascending id order so that concurrent
// checkouts always acquire locks in the same sequence, and NOWAIT makes a
// contended row fail immediately instead of queueing.
func (r *PostgresRepository) LockForUpdate(ctx context.Context, q db.Querier, itemIDs []string) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT id, name, unit_price_cents, stock, version, created_at, updated_at
		FROM inventory_items
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE NOWAIT
	`, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("lock items: %w", err)
	}
	return collectItems(rows)
}

func (r *PostgresRepository) UpdateStock(ctx context.Context, q db.Querier, itemID string, stock int) error {
	tag, err := q.Exec(ctx, `
		UPDATE inventory_items
		SET stock = $2, version = version + 1, updated_at = now()
		WHERE id = $1
	`, itemID, stock)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanItem(row pgx.Row, it *Item) error {
	return row.Scan(&it.ID, &it.Name, &it.UnitPriceCents, &it.Stock, &it.Version, &it.CreatedAt, &it.UpdatedAt)
}

func collectItems(rows pgx.Rows) ([]Item, error) {
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := scanItem(rows, &it); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

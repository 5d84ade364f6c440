package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shopkern/orderd/internal/db"
)

var (
	ErrNotFound   = errors.New("account not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, accountID string) (Account, error)
	GetByIDs(ctx context.Context, accountIDs []string) ([]Account, error)
	List(ctx context.Context) ([]Account, error)
}

type PostgresRepository struct {
	db db.Querier
}

func NewPostgresRepository(db db.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (id, email, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, a.ID, a.Email, a.Name, a.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, "accounts_email_key") {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, accountID string) (Account, error) {
	var a Account
	row := r.db.QueryRow(ctx, `
		SELECT id, email, name, created_at
		FROM accounts
		WHERE id = $1
	`, accountID)
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("select account: %w", err)
	}
	return a, nil
}

// GetByIDs fetches all accounts matching accountIDs in one round trip.
// Missing ids are simply absent from the result.
func (r *PostgresRepository) GetByIDs(ctx context.Context, accountIDs []string) ([]Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, email, name, created_at
		FROM accounts
		WHERE id = ANY($1)
	`, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return accounts, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, email, name, created_at
		FROM accounts
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return accounts, nil
}

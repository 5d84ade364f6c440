package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes we branch on. Kept here so the repositories and the
// order engine never inspect driver errors directly.
const (
	codeLockNotAvailable = "55P03"
	codeUniqueViolation  = "23505"
)

// IsLockNotAvailable reports whether err is a failed FOR UPDATE NOWAIT,
// meaning another transaction holds the row lock right now.
func IsLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeLockNotAvailable
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
// When constraint is non-empty the violated constraint must match it too.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

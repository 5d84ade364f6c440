package order

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError rejects malformed checkout or listing input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports referenced entities that do not exist. IDs names
// every missing id, not just the first one encountered.
type NotFoundError struct {
	Resource string
	IDs      []string
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 1 {
		return fmt.Sprintf("%s %q not found", e.Resource, e.IDs[0])
	}
	return fmt.Sprintf("%ss not found: %s", e.Resource, strings.Join(e.IDs, ", "))
}

// InsufficientStockError reports the first requested line that exceeds the
// available stock. Nothing has been deducted when it is returned.
type InsufficientStockError struct {
	ItemID    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %q: requested %d, available %d", e.ItemID, e.Requested, e.Available)
}

// ContentionError reports that a concurrent checkout holds a lock on one of
// the requested items. The request is safe to retry.
type ContentionError struct {
	ItemIDs []string
}

func (e *ContentionError) Error() string {
	return fmt.Sprintf("items %v are locked by a concurrent order", e.ItemIDs)
}

// IdempotencyConflictError reports a concurrent request with the same
// idempotency key whose winning order could not be read back yet. The
// request is safe to retry.
type IdempotencyConflictError struct {
	Key string
}

func (e *IdempotencyConflictError) Error() string {
	return fmt.Sprintf("order with idempotency key %q is already in flight", e.Key)
}

// Retryable reports whether err is a transient conflict that the caller can
// resubmit unchanged: lock contention, or an idempotency race whose winner
// could not be read back yet.
func Retryable(err error) bool {
	var ce *ContentionError
	var ice *IdempotencyConflictError
	return errors.As(err, &ce) || errors.As(err, &ice)
}

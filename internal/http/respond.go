package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/shopkern/orderd/internal/account"
	"github.com/shopkern/orderd/internal/inventory"
	"github.com/shopkern/orderd/internal/order"
)

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, field, reason string) {
	writeJSON(w, http.StatusBadRequest, errorBody{errorDetail{
		Code:    "VALIDATION",
		Message: fmt.Sprintf("invalid %s: %s", field, reason),
	}})
}

// writeError maps domain errors onto the wire taxonomy. Conflicts that are
// safe to retry carry retryable=true.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		ve  *order.ValidationError
		nfe *order.NotFoundError
		ise *order.InsufficientStockError
		ce  *order.ContentionError
		ice *order.IdempotencyConflictError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{errorDetail{Code: "VALIDATION", Message: ve.Error()}})
	case errors.As(err, &nfe):
		writeJSON(w, http.StatusNotFound, errorBody{errorDetail{Code: "NOT_FOUND", Message: nfe.Error()}})
	case errors.As(err, &ise):
		writeJSON(w, http.StatusConflict, errorBody{errorDetail{Code: "INSUFFICIENT_STOCK", Message: ise.Error()}})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, errorBody{errorDetail{Code: "CONTENTION", Message: ce.Error(), Retryable: order.Retryable(err)}})
	case errors.As(err, &ice):
		writeJSON(w, http.StatusConflict, errorBody{errorDetail{Code: "IDEMPOTENCY_CONFLICT", Message: ice.Error(), Retryable: order.Retryable(err)}})
	case errors.Is(err, account.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorBody{errorDetail{Code: "EMAIL_TAKEN", Message: err.Error()}})
	case errors.Is(err, account.ErrNotFound), errors.Is(err, inventory.ErrNotFound), errors.Is(err, order.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{errorDetail{Code: "NOT_FOUND", Message: err.Error()}})
	default:
		h.logger.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{errorDetail{Code: "INTERNAL", Message: "internal error"}})
	}
}

package httpapi

import (
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/go-chi/chi/v5"

	"github.com/shopkern/orderd/internal/account"
)

type createAccountRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "body", "malformed json")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		badRequest(w, "email", "must be a valid email address")
		return
	}
	if req.Name == "" {
		badRequest(w, "name", "must not be empty")
		return
	}

	a := &account.Account{Email: req.Email, Name: req.Name}
	if err := h.accounts.Create(r.Context(), a); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.GetByID(r.Context(), chi.URLParam(r, "accountId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if accounts == nil {
		accounts = []account.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

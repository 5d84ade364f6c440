package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopkern/orderd/internal/inventory"
)

type createItemRequest struct {
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Stock          int    `json:"stock"`
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "body", "malformed json")
		return
	}
	if req.Name == "" {
		badRequest(w, "name", "must not be empty")
		return
	}
	if req.UnitPriceCents < 0 {
		badRequest(w, "unitPriceCents", "must not be negative")
		return
	}
	if req.Stock < 0 {
		badRequest(w, "stock", "must not be negative")
		return
	}

	it := &inventory.Item{Name: req.Name, UnitPriceCents: req.UnitPriceCents, Stock: req.Stock}
	if err := h.items.Create(r.Context(), it); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.items.GetByID(r.Context(), chi.URLParam(r, "itemId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if items == nil {
		items = []inventory.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

type restockRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) RestockItem(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "body", "malformed json")
		return
	}
	if req.ItemID == "" {
		badRequest(w, "itemId", "must not be empty")
		return
	}
	if req.Quantity <= 0 {
		badRequest(w, "quantity", "must be a positive integer")
		return
	}

	it, err := h.items.Restock(r.Context(), req.ItemID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

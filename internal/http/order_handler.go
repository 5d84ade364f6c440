package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shopkern/orderd/internal/order"
)

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var in order.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "body", "malformed json")
		return
	}

	o, err := h.orders.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	expandAccount, expandItems, ok := parseExpand(r.URL.Query().Get("expand"))
	if !ok {
		badRequest(w, "expand", `must be a comma-separated list of "account" and "items"`)
		return
	}

	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !expandAccount && !expandItems {
		writeJSON(w, http.StatusOK, o)
		return
	}

	views, err := h.renderOrders(r.Context(), []order.Order{*o}, expandAccount, expandItems)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views[0])
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	expandAccount, expandItems, ok := parseExpand(q.Get("expand"))
	if !ok {
		badRequest(w, "expand", `must be a comma-separated list of "account" and "items"`)
		return
	}

	f := order.ListFilter{
		AccountID: q.Get("accountId"),
		Status:    order.Status(q.Get("status")),
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(w, "from", "must be an RFC 3339 timestamp")
			return
		}
		f.DateFrom = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(w, "to", "must be an RFC 3339 timestamp")
			return
		}
		f.DateTo = t
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, "limit", "must be an integer")
			return
		}
		f.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, "offset", "must be an integer")
			return
		}
		f.Offset = n
	}

	page, err := h.orders.List(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !expandAccount && !expandItems {
		writeJSON(w, http.StatusOK, page)
		return
	}

	views, err := h.renderOrders(r.Context(), page.Nodes, expandAccount, expandItems)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageView{
		Nodes:      views,
		TotalCount: page.TotalCount,
		PageInfo:   page.PageInfo,
	})
}

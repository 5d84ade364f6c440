package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", h.Health)

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{orderId}", h.GetOrder)
	})

	r.Route("/api/accounts", func(r chi.Router) {
		r.Post("/", h.CreateAccount)
		r.Get("/", h.ListAccounts)
		r.Get("/{accountId}", h.GetAccount)
	})

	r.Route("/api/items", func(r chi.Router) {
		r.Post("/", h.CreateItem)
		r.Get("/", h.ListItems)
		r.Post("/restock", h.RestockItem)
		r.Get("/{itemId}", h.GetItem)
	})

	return r
}

package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	Service *orders.Service
	Log     *slog.Logger
}

type orderPlacedResp struct {
	Message string       `json:"message"`
	Order   orders.Order `json:"order"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Delete("/{id}", h.delete)
	})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	os, err := h.Service.List(ctx)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	defer cleanupForm(r)

	in := orders.CreateInput{
		Fullname: r.FormValue("fullname"),
		GCash:    r.FormValue("gcash"),
		Address:  r.FormValue("address"),
		Items:    r.FormValue("items"),
		Total:    r.FormValue("total"),
		BaseURL:  baseURL(r),
	}
	ups := uploads(r, "paymentProof")
	if len(ups) > 1 {
		writeError(w, r, h.Log, apperr.Invalid("paymentProof", "exactly one file allowed"))
		return
	}
	if len(ups) == 1 {
		in.Proof = &ups[0]
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Service.Create(ctx, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderPlacedResp{Message: "Order placed successfully", Order: o})
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResp{Message: "Order deleted successfully"})
}

package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-pos-terminal.git/internal/inventory"
)

// AvailabilityHandler fronts the inventory validation cache for the UI.
type AvailabilityHandler struct {
	Checker *inventory.Checker
}

func (h *AvailabilityHandler) Register(r *chi.Mux) {
	r.Get("/availability/{inventoryId}", h.checkAvailability)
	r.Get("/availability/{inventoryId}/change", h.checkQuantityChange)
	r.Delete("/availability/{inventoryId}", h.invalidate)
	r.Delete("/availability", h.invalidateAll)
}

func (h *AvailabilityHandler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requested, err := strconv.Atoi(q.Get("requested"))
	if err != nil || requested < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "requested must be a non-negative integer"})
		return
	}
	current, _ := strconv.Atoi(q.Get("current"))
	force := q.Get("force") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	v, err := h.Checker.CheckAvailability(ctx, chi.URLParam(r, "inventoryId"), requested, current, force)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *AvailabilityHandler) checkQuantityChange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	newQty, err := strconv.Atoi(q.Get("new"))
	if err != nil || newQty < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "new must be a non-negative integer"})
		return
	}
	current, _ := strconv.Atoi(q.Get("current"))
	force := q.Get("force") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	v, err := h.Checker.CheckQuantityChange(ctx, chi.URLParam(r, "inventoryId"), newQty, current, force)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *AvailabilityHandler) invalidate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Checker.Invalidate(ctx, chi.URLParam(r, "inventoryId")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AvailabilityHandler) invalidateAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Checker.InvalidateAll(ctx); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-pos-terminal.git/internal/catalog"
)

// CatalogHandler exposes the local catalog mirror. Replace is called by the
// sync collaborator with a full decoded snapshot; the paging happened on its
// side.
type CatalogHandler struct {
	Store *catalog.Store
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Put("/catalog", h.replaceCatalog)
	r.Delete("/catalog", h.clearCatalog)
	r.Get("/catalog", h.listProducts)
	r.Get("/catalog/search", h.searchProducts)
	r.Get("/catalog/{id}", h.getProduct)
	r.Get("/catalog/barcode/{code}", h.getByBarcode)
}

func (h *CatalogHandler) replaceCatalog(w http.ResponseWriter, r *http.Request) {
	var products []catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&products); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Store.ReplaceCatalog(ctx, products); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": len(products)})
}

func (h *CatalogHandler) clearCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.Clear(ctx); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ps, err := h.Store.GetAll(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) getByBarcode(w http.ResponseWriter, r *http.Request) {
	code, err := url.PathUnescape(chi.URLParam(r, "code"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid code"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.GetByBarcode(ctx, code)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Store.SearchByName(ctx, term, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

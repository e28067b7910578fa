package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ariefcatur/go-pos-terminal.git/internal/catalog"
	"github.com/ariefcatur/go-pos-terminal.git/internal/inventory"
	"github.com/ariefcatur/go-pos-terminal.git/internal/journal"
)

func setupAPI(t *testing.T, remoteQty int) *chi.Mux {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	models := append(catalog.Models(), journal.Models()...)
	require.NoError(t, db.AutoMigrate(models...))

	stock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"quantity": remoteQty})
	}))
	t.Cleanup(stock.Close)

	checker := inventory.NewChecker(
		inventory.NewMemoryQuantityStore(5*time.Minute),
		inventory.NewClient(stock.URL),
	)

	r := NewRouter()
	(&CatalogHandler{Store: catalog.NewStore(db)}).Register(r)
	(&AvailabilityHandler{Checker: checker}).Register(r)
	(&OrdersHandler{Journal: journal.New(db, nil, nil)}).Register(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestCatalogEndpoints(t *testing.T) {
	r := setupAPI(t, 10)

	products := []catalog.Product{
		{ID: "P1", Name: "Maize Flour 2kg", PriceCents: 150, InventoryID: "INV-1",
			Barcodes: []string{"6009123456784"}},
	}
	rec := doJSON(t, r, http.MethodPut, "/catalog", products)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/catalog/P1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Maize Flour 2kg", decode[catalog.Product](t, rec).Name)

	rec = doJSON(t, r, http.MethodGet, "/catalog/barcode/6009123456784", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "P1", decode[catalog.Product](t, rec).ID)

	rec = doJSON(t, r, http.MethodGet, "/catalog/search?q=flour&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]catalog.Product](t, rec), 1)

	rec = doJSON(t, r, http.MethodGet, "/catalog/search?q=&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode[[]catalog.Product](t, rec))

	rec = doJSON(t, r, http.MethodGet, "/catalog/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/catalog", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, r, http.MethodGet, "/catalog/P1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvailabilityEndpoints(t *testing.T) {
	r := setupAPI(t, 2)

	rec := doJSON(t, r, http.MethodGet, "/availability/INV-1?requested=3&current=0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[inventory.Verdict](t, rec)
	require.Equal(t, inventory.StatusConflict, v.Status)
	require.Equal(t, 2, v.Available)
	require.Equal(t, 2, v.MaxAddable)

	rec = doJSON(t, r, http.MethodGet, "/availability/INV-1/change?new=2&current=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, inventory.StatusOK, decode[inventory.Verdict](t, rec).Status)

	rec = doJSON(t, r, http.MethodGet, "/availability/INV-1?requested=x&current=0", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersEndpoints(t *testing.T) {
	r := setupAPI(t, 10)

	req := RecordOrderReq{
		Lines: journal.Lines{{ProductID: "P1", Name: "Maize Flour 2kg", Qty: 1,
			UnitPriceCents: 150, LineTotalCents: 150}},
		Payments:   journal.Payments{{Method: "cash", AmountCents: 150}},
		TotalCents: 150,
	}
	rec := doJSON(t, r, http.MethodPost, "/orders", req)
	require.Equal(t, http.StatusCreated, rec.Code)
	o := decode[journal.Order](t, rec)
	require.Equal(t, journal.StatusPaid, o.Status)
	require.NotEmpty(t, o.ID)

	rec = doJSON(t, r, http.MethodGet, "/orders?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]journal.Order](t, rec)
	require.Len(t, list, 1)
	require.Equal(t, o.ID, list[0].ID)

	pending := journal.StatusPending
	rec = doJSON(t, r, http.MethodPatch, "/orders/"+o.ID, journal.Patch{Status: &pending})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, journal.StatusPending, decode[journal.Order](t, rec).Status)

	rec = doJSON(t, r, http.MethodPatch, "/orders/ghost", journal.Patch{Status: &pending})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/orders/"+o.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, r, http.MethodGet, "/orders/"+o.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/orders", RecordOrderReq{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

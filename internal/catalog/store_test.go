package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

func sampleProducts() []Product {
	return []Product{
		{ID: "P1", Name: "Maize Flour 2kg", PriceCents: 150, InventoryID: "INV-1",
			Barcodes: []string{"6009123456784"}},
		{ID: "P2", Name: "Brown Bread", PriceCents: 60, DiscountPriceCents: 55, InventoryID: "INV-2",
			Barcodes: []string{"6001001001001", "6001001001002"}},
		{ID: "P3", Name: "Full Cream Milk 1L", PriceCents: 180, InventoryID: "INV-3"},
	}
}

func TestReplaceCatalogAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewStore(setupTestDB(t))
	require.NoError(t, s.ReplaceCatalog(ctx, sampleProducts()))

	p, err := s.GetByID(ctx, "P1")
	require.NoError(t, err)
	require.Equal(t, "Maize Flour 2kg", p.Name)
	require.Equal(t, 150, p.PriceCents)
	require.Equal(t, []string{"6009123456784"}, p.Barcodes)

	for _, code := range []string{"6001001001001", "6001001001002"} {
		p, err := s.GetByBarcode(ctx, code)
		require.NoError(t, err)
		require.Equal(t, "P2", p.ID)
	}

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestReplaceCatalogIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewStore(setupTestDB(t))
	require.NoError(t, s.ReplaceCatalog(ctx, sampleProducts()))
	require.NoError(t, s.ReplaceCatalog(ctx, sampleProducts()))

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestReplaceCatalogRebuildsBarcodes(t *testing.T) {
	ctx := context.Background()
	s := NewStore(setupTestDB(t))
	require.NoError(t, s.ReplaceCatalog(ctx, sampleProducts()))

	// snapshot where P2 lost one code and gained another
	next := sampleProducts()
	next[1].Barcodes = []string{"6001001001002", "6001001009999"}
	require.NoError(t, s.ReplaceCatalog(ctx, next))

	_, err := s.GetByBarcode(ctx, "6001001001001")
	require.ErrorIs(t, err, ErrNotFound)
	p, err := s.GetByBarcode(ctx, "6001001009999")
	require.NoError(t, err)
	require.Equal(t, "P2", p.ID)
}

func TestBarcodeCollisionLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewStore(setupTestDB(t))
	products := []Product{
		{ID: "A", Name: "First", PriceCents: 10, Barcodes: []string{"12345678"}},
		{ID: "B", Name: "Second", PriceCents: 20, Barcodes: []string{"12345678"}},
	}
	require.NoError(t, s.ReplaceCatalog(ctx, products))

	p, err := s.GetByBarcode(ctx, "12345678")
	require.NoError(t, err)
	require.Equal(t, "B", p.ID)
}

func TestGetByBarcodeTrims(t *testing.T) {
	ctx := context.Background()
	s := NewStore(setupTestDB(t))
	require.NoError(t, s.ReplaceCatalog(ctx, sampleProducts()))

	p, err := s.GetByBarcode(ctx, "  6009123456784\n")
	require.NoError(t, err)
	require.Equal(t, "P1", p.ID)
}

func TestGetMisses(t *testing.T) {
	ctx := context.Background()
	s := NewStore(setupTestDB(t))

	_, err := s.GetByID(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetByBarcode(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetByBarcode(ctx, "   ")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearchByName(t *testing.T) {
	ctx := context.Background()
	s := NewStore(setupTestDB(t))
	require.NoError(t, s.ReplaceCatalog(ctx, sampleProducts()))

	got, err := s.SearchByName(ctx, "FLOUR", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "P1", got[0].ID)

	got, err = s.SearchByName(ctx, "", 10)
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = s.SearchByName(ctx, "rea", 1)
	require.NoError(t, err)
	require.Len(t, got, 1) // limit respected; Bread and Cream both match

	got, err = s.SearchByName(ctx, "100%", 10)
	require.NoError(t, err)
	require.Empty(t, got) // LIKE metacharacters are literal
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := NewStore(setupTestDB(t))
	require.NoError(t, s.ReplaceCatalog(ctx, sampleProducts()))
	require.NoError(t, s.Clear(ctx))

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
	_, err = s.GetByBarcode(ctx, "6009123456784")
	require.ErrorIs(t, err, ErrNotFound)
}

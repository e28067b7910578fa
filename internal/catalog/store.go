package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ariefcatur/go-pos-terminal.git/internal/sqlitex"
)

// ErrNotFound is returned on a lookup miss. A miss is an expected outcome,
// callers branch on it with errors.Is.
var ErrNotFound = errors.New("product not found")

// Store is the persistent local mirror of the remote catalog.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// Models lists what Store persists, for migration at startup.
func Models() []any { return []any{&Product{}, &Barcode{}} }

// ReplaceCatalog upserts every product by id and rebuilds its barcode rows
// in one transaction, so readers never see a half-replaced catalog. Safe to
// call repeatedly with a full snapshot.
func (s *Store) ReplaceCatalog(ctx context.Context, products []Product) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range products {
			p := products[i]
			p.NameFolded = strings.ToLower(p.Name)
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&p).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", p.ID).Delete(&Barcode{}).Error; err != nil {
				return err
			}
			for _, code := range p.Barcodes {
				code = strings.TrimSpace(code)
				if code == "" {
					continue
				}
				// last write wins when two products claim the same code
				b := Barcode{Code: code, ProductID: p.ID}
				if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&b).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return sqlitex.Unavailable("replace catalog", err)
	}
	return nil
}

// Clear removes every product and barcode row.
func (s *Store) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Barcode{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&Product{}).Error
	})
	if err != nil {
		return sqlitex.Unavailable("clear catalog", err)
	}
	return nil
}

// GetAll returns every stored product, order unspecified.
func (s *Store) GetAll(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := s.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, sqlitex.Unavailable("get all products", err)
	}
	if err := s.loadBarcodes(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns the product or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, sqlitex.Unavailable("get product", err)
	}
	rows := []Product{p}
	if err := s.loadBarcodes(ctx, rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// GetByBarcode resolves a (trimmed) code via the barcode index, then the
// product row. Two lookups, no scan.
func (s *Store) GetByBarcode(ctx context.Context, code string) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNotFound
	}
	var b Barcode
	if err := s.db.WithContext(ctx).First(&b, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, sqlitex.Unavailable("get barcode", err)
	}
	return s.GetByID(ctx, b.ProductID)
}

// SearchByName does a case-insensitive substring match over product names.
// Empty terms return nothing, never the whole catalog. Full scan is fine at
// the few-thousand-row catalogs a terminal mirrors.
func (s *Store) SearchByName(ctx context.Context, term string, limit int) ([]Product, error) {
	term = strings.TrimSpace(strings.ToLower(term))
	if term == "" {
		return []Product{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLike(term) + "%"
	var out []Product
	err := s.db.WithContext(ctx).
		Where("name_folded LIKE ? ESCAPE '\\'", pattern).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, sqlitex.Unavailable("search products", err)
	}
	if err := s.loadBarcodes(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) loadBarcodes(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, 0, len(products))
	for i := range products {
		ids = append(ids, products[i].ID)
	}
	var rows []Barcode
	if err := s.db.WithContext(ctx).Where("product_id IN ?", ids).Find(&rows).Error; err != nil {
		return sqlitex.Unavailable("load barcodes", err)
	}
	byProduct := map[string][]string{}
	for _, b := range rows {
		byProduct[b.ProductID] = append(byProduct[b.ProductID], b.Code)
	}
	for i := range products {
		products[i].Barcodes = byProduct[products[i].ID]
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

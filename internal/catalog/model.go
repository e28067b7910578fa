package catalog

import "time"

// Product is the local mirror of one remote catalog row. Rows are replaced
// wholesale on refresh, never patched field by field.
type Product struct {
	ID                 string    `gorm:"primarykey;size:64" json:"id"`
	Name               string    `gorm:"size:200;not null" json:"name"`
	NameFolded         string    `gorm:"size:200;index" json:"-"`
	PriceCents         int       `gorm:"not null" json:"price_cents"`
	DiscountPriceCents int       `json:"discount_price_cents,omitempty"`
	InventoryID        string    `gorm:"size:64" json:"inventory_id,omitempty"`
	Barcodes           []string  `gorm:"-" json:"barcodes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// Barcode maps one normalized code to exactly one product id. A product may
// own several codes; on collision the newest registration wins.
type Barcode struct {
	Code      string `gorm:"primarykey;size:64"`
	ProductID string `gorm:"size:64;index;not null"`
}

func (Barcode) TableName() string { return "barcodes" }

package journal

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
)

// Line is one cart line frozen at submission time. The printer collaborator
// reads exactly these fields.
type Line struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Qty            int    `json:"qty"`
	UnitPriceCents int    `json:"unit_price_cents"`
	LineTotalCents int    `json:"line_total_cents"`
}

type Payment struct {
	Method      string `json:"method"` // cash | card | ...
	AmountCents int    `json:"amount_cents"`
}

type Lines []Line

type Payments []Payment

// TotalCents sums the recorded payment amounts.
func (p Payments) TotalCents() int {
	total := 0
	for _, x := range p {
		total += x.AmountCents
	}
	return total
}

// Order is one journaled sale. Created at submission, updated on status
// change, deleted only explicitly.
type Order struct {
	ID         string   `gorm:"primarykey;size:64" json:"id"`
	Lines      Lines    `gorm:"type:text" json:"lines"`
	Payments   Payments `gorm:"type:text" json:"payments"`
	TotalCents int      `gorm:"not null" json:"total_cents"`
	Status     Status   `gorm:"size:16;index" json:"status"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// DeriveStatus: paid when recorded payments cover the cart total.
func (o *Order) DeriveStatus() Status {
	if o.Payments.TotalCents() >= o.TotalCents {
		return StatusPaid
	}
	return StatusPending
}

// Lines and Payments live as JSON text columns; SQLite has no array type
// and nobody queries inside them.

func (l Lines) Value() (driver.Value, error) { return jsonValue(l) }
func (l *Lines) Scan(v any) error            { return jsonScan(v, l) }

func (p Payments) Value() (driver.Value, error) { return jsonValue(p) }
func (p *Payments) Scan(v any) error            { return jsonScan(v, p) }

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src, dest any) error {
	switch b := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(b, dest)
	case string:
		return json.Unmarshal([]byte(b), dest)
	default:
		return fmt.Errorf("unexpected column type %T", src)
	}
}

// Package journal is the durable local log of submitted orders. It is what
// keeps a sale on disk when the network is down, and what sibling windows
// watch for changes.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ariefcatur/go-pos-terminal.git/internal/sqlitex"
)

// ErrNotFound: unknown order id. Update never silently creates.
var ErrNotFound = errors.New("order not found")

type Journal struct {
	db  *gorm.DB
	bus Broadcaster
	log *slog.Logger
	now func() time.Time
}

func New(db *gorm.DB, bus Broadcaster, log *slog.Logger) *Journal {
	if bus == nil {
		bus = NoopBroadcaster{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Journal{db: db, bus: bus, log: log, now: time.Now}
}

func Models() []any { return []any{&Order{}} }

// Record persists an order at submission. Missing ids get a locally
// generated, visually distinct one; missing status is derived from the
// recorded payments. Re-recording an id overwrites it (last write wins).
func (j *Journal) Record(ctx context.Context, o Order) (*Order, error) {
	if o.ID == "" {
		o.ID = offlineID(j.now())
	}
	if o.Status == "" {
		o.Status = o.DeriveStatus()
	}
	err := j.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&o).Error
	if err != nil {
		return nil, sqlitex.Unavailable("record order", err)
	}
	j.broadcast(ctx, Signal{Type: SignalOrderPut, OrderID: o.ID})
	return &o, nil
}

// Patch carries the fields Update may change; nil means leave alone.
type Patch struct {
	Status     *Status   `json:"status,omitempty"`
	Lines      *Lines    `json:"lines,omitempty"`
	Payments   *Payments `json:"payments,omitempty"`
	TotalCents *int      `json:"total_cents,omitempty"`
}

// Update merges the patch into an existing order and bumps updated_at.
func (j *Journal) Update(ctx context.Context, orderID string, patch Patch) (*Order, error) {
	var out *Order
	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o Order
		if err := tx.First(&o, "id = ?", orderID).Error; err != nil {
			return err
		}
		if patch.Status != nil {
			o.Status = *patch.Status
		}
		if patch.Lines != nil {
			o.Lines = *patch.Lines
		}
		if patch.Payments != nil {
			o.Payments = *patch.Payments
		}
		if patch.TotalCents != nil {
			o.TotalCents = *patch.TotalCents
		}
		o.UpdatedAt = j.now()
		if err := tx.Save(&o).Error; err != nil {
			return err
		}
		out = &o
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, sqlitex.Unavailable("update order", err)
	}
	j.broadcast(ctx, Signal{Type: SignalOrderUpdated, OrderID: orderID})
	return out, nil
}

// List returns up to limit orders, newest first unless asked otherwise.
func (j *Journal) List(ctx context.Context, limit int, newestFirst bool) ([]Order, error) {
	order := "created_at DESC"
	if !newestFirst {
		order = "created_at ASC"
	}
	q := j.db.WithContext(ctx).Order(order)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []Order
	if err := q.Find(&out).Error; err != nil {
		return nil, sqlitex.Unavailable("list orders", err)
	}
	return out, nil
}

func (j *Journal) Get(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	if err := j.db.WithContext(ctx).First(&o, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, sqlitex.Unavailable("get order", err)
	}
	return &o, nil
}

func (j *Journal) Delete(ctx context.Context, orderID string) error {
	res := j.db.WithContext(ctx).Delete(&Order{}, "id = ?", orderID)
	if res.Error != nil {
		return sqlitex.Unavailable("delete order", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	j.broadcast(ctx, Signal{Type: SignalOrderDeleted, OrderID: orderID})
	return nil
}

func (j *Journal) ClearAll(ctx context.Context) error {
	if err := j.db.WithContext(ctx).Where("1 = 1").Delete(&Order{}).Error; err != nil {
		return sqlitex.Unavailable("clear orders", err)
	}
	j.broadcast(ctx, Signal{Type: SignalOrdersClear})
	return nil
}

// broadcast is best effort. The write already landed; a lost signal only
// delays siblings until their next read.
func (j *Journal) broadcast(ctx context.Context, s Signal) {
	if err := j.bus.Broadcast(ctx, s); err != nil {
		j.log.Warn("journal broadcast failed", "type", s.Type, "order_id", s.OrderID, "err", err)
	}
}

// offlineID: "offline-" prefix keeps locally generated ids visually distinct
// from server-assigned ones; the uuid fragment covers same-millisecond
// submissions from sibling windows.
func offlineID(now time.Time) string {
	return fmt.Sprintf("offline-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

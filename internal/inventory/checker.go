package inventory

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"
)

type Status string

const (
	// StatusOK: available covers the required quantity.
	StatusOK Status = "ok"
	// StatusConflict: confirmed shortage, the only status that blocks.
	StatusConflict Status = "conflict"
	// StatusIndeterminate: remote answered without a usable quantity.
	// Advisory, warn-but-allow.
	StatusIndeterminate Status = "indeterminate"
	// StatusError: remote call failed. Caller decides policy; the observed
	// default is to proceed optimistically.
	StatusError Status = "error"
)

type Verdict struct {
	Status    Status `json:"status"`
	Available int    `json:"available"`
	// MaxAddable: how many more units fit on top of the current cart
	// quantity. Only meaningful on conflict.
	MaxAddable int    `json:"max_addable"`
	Reason     string `json:"reason,omitempty"`
}

// QuantityStore is the TTL cache behind the checker. The Redis
// implementation serves production; tests plug in a map.
type QuantityStore interface {
	Get(ctx context.Context, inventoryID string) (qty int, ok bool, err error)
	Set(ctx context.Context, inventoryID string, qty int) error
	Delete(ctx context.Context, inventoryID string) error
	DeleteAll(ctx context.Context) error
}

// Fetcher is what Client implements.
type Fetcher interface {
	FetchQuantity(ctx context.Context, inventoryID string) (int, error)
}

// Checker validates proposed cart-quantity changes against cached or live
// stock numbers.
type Checker struct {
	store  QuantityStore
	remote Fetcher
	sf     singleflight.Group
}

func NewChecker(store QuantityStore, remote Fetcher) *Checker {
	return &Checker{store: store, remote: remote}
}

// CheckAvailability verdicts adding requestedQty on top of currentCartQty.
// A live cache entry short-circuits the remote call; concurrent misses for
// the same id share one flight.
func (c *Checker) CheckAvailability(ctx context.Context, inventoryID string, requestedQty, currentCartQty int, forceRefresh bool) (Verdict, error) {
	if inventoryID == "" {
		return Verdict{}, ErrInvalidArgument
	}
	required := currentCartQty + requestedQty

	if !forceRefresh {
		// cache read errors count as a miss, the cache is an optimization
		if qty, ok, err := c.store.Get(ctx, inventoryID); err == nil && ok {
			return verdictFor(qty, required, currentCartQty), nil
		}
	}

	v, err, _ := c.sf.Do(inventoryID, func() (any, error) {
		if !forceRefresh {
			// another flight may have filled the cache while we queued
			if qty, ok, err := c.store.Get(ctx, inventoryID); err == nil && ok {
				return qty, nil
			}
		}
		qty, err := c.remote.FetchQuantity(ctx, inventoryID)
		if err != nil {
			return 0, err
		}
		_ = c.store.Set(ctx, inventoryID, qty)
		return qty, nil
	})
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			return Verdict{Status: StatusIndeterminate, Reason: err.Error()}, nil
		}
		return Verdict{Status: StatusError, Reason: err.Error()}, nil
	}
	return verdictFor(v.(int), required, currentCartQty), nil
}

// CheckQuantityChange verdicts setting the cart line to newQty. Decreases
// are always fine and never touch the network.
func (c *Checker) CheckQuantityChange(ctx context.Context, inventoryID string, newQty, currentCartQty int, forceRefresh bool) (Verdict, error) {
	if inventoryID == "" {
		return Verdict{}, ErrInvalidArgument
	}
	if newQty <= currentCartQty {
		return Verdict{Status: StatusOK}, nil
	}
	return c.CheckAvailability(ctx, inventoryID, newQty-currentCartQty, currentCartQty, forceRefresh)
}

// Invalidate busts one cached quantity after a known stock-affecting event.
func (c *Checker) Invalidate(ctx context.Context, inventoryID string) error {
	if inventoryID == "" {
		return ErrInvalidArgument
	}
	return c.store.Delete(ctx, inventoryID)
}

func (c *Checker) InvalidateAll(ctx context.Context) error {
	return c.store.DeleteAll(ctx)
}

func verdictFor(available, required, currentCartQty int) Verdict {
	if available >= required {
		return Verdict{Status: StatusOK, Available: available}
	}
	max := available - currentCartQty
	if max < 0 {
		max = 0
	}
	return Verdict{Status: StatusConflict, Available: available, MaxAddable: max}
}

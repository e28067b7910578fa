package redisx

import "time"

const (
	// Cached live quantity: stock:qty:{inventory_id} -> "7"
	KeyStockQty = "stock:qty:%s"

	// Prefix for wildcard invalidation of every cached quantity.
	KeyStockQtyPrefix = "stock:qty:"

	// Dedup forwarded journal entries: dedup:{service}:{id}
	KeyDedup = "dedup:%s:%s"

	// Shared channel for content-free order-journal change signals.
	// Subscribers re-read the journal, the payload is never trusted.
	ChannelOrders = "pos:orders:%s"
)

var (
	// Stale quantities up to 5 minutes old are served on purpose: the
	// terminal keeps selling through network blips.
	TTLStockQty = 5 * time.Minute
	TTLDedup    = 48 * time.Hour
)

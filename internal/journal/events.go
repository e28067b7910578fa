package journal

import (
	"context"
	"encoding/json"
	"time"
)

// Cross-window change signals. Content-free on purpose: subscribers re-read
// the journal rather than trust the payload, so delivery only needs to be
// at-least-once.
const (
	SignalOrderPut     = "order-put"
	SignalOrderUpdated = "order-updated"
	SignalOrderDeleted = "order-deleted"
	SignalOrdersClear  = "orders-cleared"
)

type Signal struct {
	Type    string `json:"type"`
	OrderID string `json:"order_id,omitempty"`
}

type Broadcaster interface {
	Broadcast(ctx context.Context, s Signal) error
}

// NoopBroadcaster stands in when no shared channel is available (Redis
// down); the window still works, siblings just poll.
type NoopBroadcaster struct{}

func (NoopBroadcaster) Broadcast(context.Context, Signal) error { return nil }

// ---- store-and-forward events (forwarder <-> back office) ----

const (
	EventOrderRecorded = "OrderRecorded"
	EventOrderSettled  = "OrderSettled"
)

const (
	TopicOrderRecorded = "pos.order.recorded"
	TopicOrderSettled  = "pos.order.settled"
)

// Envelope v1, one per journal entry shipped upstream.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TerminalID    string          `json:"terminal_id"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderRecordedPayload struct {
	Order Order `json:"order"`
}

type OrderSettledPayload struct {
	OrderID     string `json:"order_id"`
	PaymentRef  string `json:"payment_ref"`
	AmountCents int    `json:"amount_cents"`
}

// Partition key = order id, so every event of one order keeps its order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

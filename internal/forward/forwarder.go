// Package forward ships journaled orders to the back office once the
// network allows, and applies settlement confirmations coming back. The
// journal stays the source of truth; everything here is at-least-once with
// Redis dedup on top.
package forward

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-pos-terminal.git/internal/kafka"
	"github.com/ariefcatur/go-pos-terminal.git/internal/journal"
	"github.com/ariefcatur/go-pos-terminal.git/internal/redisx"
)

type Service struct {
	Journal     *journal.Journal
	Redis       *redis.Client
	Producer    *kafkax.Producer
	ServiceName string
	TerminalID  string
	Log         *slog.Logger
}

// HandleSignal reacts to one journal change signal. Per the signal contract
// the payload is not trusted: the journal is re-read and anything not yet
// forwarded goes out.
func (s *Service) HandleSignal(ctx context.Context, sig journal.Signal) error {
	switch sig.Type {
	case journal.SignalOrderPut, journal.SignalOrderUpdated:
	default:
		// deletions stay local, the back office keeps its own copy
		return nil
	}

	orders, err := s.Journal.List(ctx, 0, false)
	if err != nil {
		return err
	}
	for i := range orders {
		if err := s.forwardOne(ctx, &orders[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) forwardOne(ctx context.Context, o *journal.Order) error {
	// one dedup entry per order version, so a status change re-forwards
	dkey := fmt.Sprintf(redisx.KeyDedup, "forwarder",
		fmt.Sprintf("%s:%d", o.ID, o.UpdatedAt.UnixMilli()))
	exists, err := redisx.Exists(ctx, s.Redis, dkey)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err(); err != nil {
		return err
	}

	ev := journal.Envelope{
		EventID:       uuid.NewString(),
		EventType:     journal.EventOrderRecorded,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TerminalID:    s.TerminalID,
		CorrelationID: o.ID,
		Payload:       kafkax.MustMarshal(journal.OrderRecordedPayload{Order: *o}),
	}
	s.Producer.Publish(journal.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(journal.EventOrderRecorded)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	s.Log.Info("order forwarded", "order_id", o.ID, "status", o.Status)
	return nil
}

// HandleSettled consumes back-office settlement events and marks the local
// journal entry paid. Wired as a kafka consumer handler.
func (s *Service) HandleSettled(ctx context.Context, m kafkago.Message) error {
	var env journal.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != journal.EventOrderSettled {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "settlement", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[journal.OrderSettledPayload](env.Payload)
	if err != nil {
		return err
	}

	paid := journal.StatusPaid
	if _, err := s.Journal.Update(ctx, p.OrderID, journal.Patch{Status: &paid}); err != nil {
		if errors.Is(err, journal.ErrNotFound) {
			// an order settled elsewhere does not exist in this journal
			s.Log.Warn("settlement for unknown order", "order_id", p.OrderID)
			return nil
		}
		return err
	}
	s.Log.Info("order settled", "order_id", p.OrderID, "payment_ref", p.PaymentRef)
	return nil
}

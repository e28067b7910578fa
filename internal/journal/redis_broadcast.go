package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-pos-terminal.git/internal/redisx"
)

// RedisBroadcaster carries the cross-window signal over a Redis pub/sub
// channel shared by every window of one terminal.
type RedisBroadcaster struct {
	rdb     *redis.Client
	channel string
}

func NewRedisBroadcaster(rdb *redis.Client, terminalID string) *RedisBroadcaster {
	return &RedisBroadcaster{
		rdb:     rdb,
		channel: fmt.Sprintf(redisx.ChannelOrders, terminalID),
	}
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, s Signal) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

// Subscribe delivers signals until ctx ends. Undecodable messages are
// dropped; the contract is re-read-to-confirm anyway.
func (b *RedisBroadcaster) Subscribe(ctx context.Context) <-chan Signal {
	sub := b.rdb.Subscribe(ctx, b.channel)
	out := make(chan Signal, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var s Signal
				if err := json.Unmarshal([]byte(m.Payload), &s); err != nil {
					continue
				}
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

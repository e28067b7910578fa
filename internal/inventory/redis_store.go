package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-pos-terminal.git/internal/redisx"
)

// RedisQuantityStore keeps cached quantities in Redis under a TTL. Entries
// older than the TTL simply expire, so a hit is always a trusted value.
type RedisQuantityStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisQuantityStore(rdb *redis.Client, ttl time.Duration) *RedisQuantityStore {
	if ttl <= 0 {
		ttl = redisx.TTLStockQty
	}
	return &RedisQuantityStore{rdb: rdb, ttl: ttl}
}

func (s *RedisQuantityStore) Get(ctx context.Context, inventoryID string) (int, bool, error) {
	v, err := s.rdb.Get(ctx, fmt.Sprintf(redisx.KeyStockQty, inventoryID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	qty, err := strconv.Atoi(v)
	if err != nil {
		// someone wrote garbage under our key, treat as a miss
		return 0, false, nil
	}
	return qty, true, nil
}

func (s *RedisQuantityStore) Set(ctx context.Context, inventoryID string, qty int) error {
	return s.rdb.Set(ctx, fmt.Sprintf(redisx.KeyStockQty, inventoryID), strconv.Itoa(qty), s.ttl).Err()
}

func (s *RedisQuantityStore) Delete(ctx context.Context, inventoryID string) error {
	return s.rdb.Del(ctx, fmt.Sprintf(redisx.KeyStockQty, inventoryID)).Err()
}

func (s *RedisQuantityStore) DeleteAll(ctx context.Context) error {
	return redisx.DeleteByPrefix(ctx, s.rdb, redisx.KeyStockQtyPrefix)
}

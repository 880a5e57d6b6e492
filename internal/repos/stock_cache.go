package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"stockroom/internal/domain"
)

// StockCache keeps stock records in redis for the cache-aside read path.
type StockCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStockCache(client *redis.Client, ttl time.Duration) *StockCache {
	return &StockCache{client: client, ttl: ttl}
}

// DialStockCache connects and pings redis at addr.
func DialStockCache(ctx context.Context, addr string, ttl time.Duration) (*StockCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewStockCache(client, ttl), nil
}

func (c *StockCache) Close() error { return c.client.Close() }

func stockKey(productID int64) string {
	return "stock:" + strconv.FormatInt(productID, 10)
}

// setIfNewer writes the record only when the cached version is missing or
// older, so a late fill with a stale row cannot replace a newer one.
var setIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
  return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'd', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// Get reports found=false on a cache miss.
func (c *StockCache) Get(ctx context.Context, productID int64) (domain.StockRecord, bool, error) {
	data, err := c.client.HGet(ctx, stockKey(productID), "d").Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.StockRecord{}, false, nil
	}
	if err != nil {
		return domain.StockRecord{}, false, fmt.Errorf("redis get: %w", err)
	}
	var rec domain.StockRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.StockRecord{}, false, fmt.Errorf("decode cached stock: %w", err)
	}
	return rec, true, nil
}

// Set caches rec unless a record with the same or a higher version is
// already cached. stored reports whether the entry was written.
func (c *StockCache) Set(ctx context.Context, rec domain.StockRecord) (stored bool, err error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encode stock: %w", err)
	}
	n, err := setIfNewer.Run(ctx, c.client, []string{stockKey(rec.ProductID)},
		rec.Version, string(data), c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis set: %w", err)
	}
	return n == 1, nil
}

func (c *StockCache) Invalidate(ctx context.Context, productID int64) error {
	return c.client.Del(ctx, stockKey(productID)).Err()
}

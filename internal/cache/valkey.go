package cache

import (
	"context"
	"fmt"
	"time"

	"eventhub/internal/config"

	"github.com/redis/go-redis/v9"
)

// tokenBucket refills RefillTokens every interval up to capacity and takes one token.
// Returns {allowed, remaining, retry_after_ms}.
const tokenBucket = `
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
    tokens = capacity
    last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local intervals = math.floor(elapsed / interval_ms)
if intervals > 0 then
    tokens = math.min(capacity, tokens + (intervals * refill_tokens))
    last_refill = last_refill + (intervals * interval_ms)
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`

type ValkeyClient struct {
	client  *redis.Client
	limiter *redis.Script
}

// Allowance is the result of taking one token from a bucket
type Allowance struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

func NewValkeyClient(cfg config.ValkeyConfig) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:  rdb,
		limiter: redis.NewScript(tokenBucket),
	}, nil
}

func (v *ValkeyClient) TakeToken(ctx context.Context, key string, cfg config.RateLimitConfig) (Allowance, error) {
	args := []any{
		time.Now().UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(),
		int64(cfg.TTL / time.Second),
	}

	vals, err := v.limiter.Run(ctx, v.client, []string{key}, args...).Int64Slice()
	if err != nil {
		return Allowance{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return Allowance{}, fmt.Errorf("rate limit script: unexpected result %v", vals)
	}

	return Allowance{
		Allowed:    vals[0] == 1,
		Remaining:  vals[1],
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

func (v *ValkeyClient) Ping(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "subgrab:listings:"
	// redisOpTimeout bounds a single command when the caller's context has no deadline.
	redisOpTimeout = 2 * time.Second
)

func init() {
	Register("redis", newRedisCache)
}

// redisCache shares the listing cache between runs and hosts through Redis or Valkey.
//
// Two keys hold the whole cache:
//
//   - {prefix}pages: a hash of URL to page body, each field expiring on its own
//     through HPEXPIRE (Redis 7.4+ or Valkey 8+).
//   - {prefix}recency: a sorted set of URL scored by last access in microseconds,
//     used to drop the least recently used pages once Size is exceeded.
//
// Reads and writes run as Lua scripts so the recency bookkeeping stays atomic.
type redisCache struct {
	client     *redis.Client
	ttl        time.Duration
	maxSize    int
	onEvict    EvictCallback
	logger     Logger
	pagesKey   string
	recencyKey string
}

// readAndTouch returns the page for ARGV[2] and bumps its recency to ARGV[1].
var readAndTouch = redis.NewScript(`
local page = redis.call('HGET', KEYS[1], ARGV[2])
if page then
    redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
end
return page
`)

// writeAndTrim stores ARGV[1] under ARGV[3] with a TTL of ARGV[5] ms, records
// recency ARGV[2] and pops the oldest URLs until at most ARGV[4] remain.
// The popped URLs are returned; a URL whose field already expired is popped
// all the same.
var writeAndTrim = redis.NewScript(`
local url   = ARGV[3]
local limit = tonumber(ARGV[4])

redis.call('HSET', KEYS[1], url, ARGV[1])
redis.call('HPEXPIRE', KEYS[1], tonumber(ARGV[5]), 'FIELDS', 1, url)
redis.call('ZADD', KEYS[2], ARGV[2], url)

local dropped = {}
local count = redis.call('ZCARD', KEYS[2])
while count > limit do
    local oldest = redis.call('ZPOPMIN', KEYS[2], 1)
    if #oldest == 0 then break end
    redis.call('HDEL', KEYS[1], oldest[1])
    table.insert(dropped, oldest[1])
    count = count - 1
end
return dropped
`)

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddress, err)
	}

	prefix := cfg.RedisKeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisCache{
		client:     client,
		ttl:        cfg.TTL,
		maxSize:    cfg.Size,
		onEvict:    cfg.OnEvict,
		logger:     cfg.Logger,
		pagesKey:   prefix + "pages",
		recencyKey: prefix + "recency",
	}, nil
}

func (r *redisCache) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, redisOpTimeout)
}

func (r *redisCache) report(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, err)
	}
}

func now() string {
	return strconv.FormatInt(time.Now().UnixMicro(), 10)
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	page, err := readAndTouch.Run(ctx, r.client, []string{r.pagesKey, r.recencyKey}, now(), key).Text()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.report("redis listing cache read failed", err)
		}
		return nil, false
	}
	return []byte(page), true
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	dropped, err := writeAndTrim.Run(ctx, r.client, []string{r.pagesKey, r.recencyKey},
		value, now(), key, r.maxSize, r.ttl.Milliseconds(),
	).StringSlice()
	if err != nil {
		r.report("redis listing cache write failed", err)
		return
	}

	if r.onEvict == nil {
		return
	}
	for _, url := range dropped {
		r.onEvict(url, nil)
	}
}

func (r *redisCache) Contains(ctx context.Context, key string) bool {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	found, err := r.client.HExists(ctx, r.pagesKey, key).Result()
	if err != nil {
		r.report("redis listing cache lookup failed", err)
		return false
	}
	return found
}

func (r *redisCache) Len(ctx context.Context) int {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	n, err := r.client.HLen(ctx, r.pagesKey).Result()
	if err != nil {
		r.report("redis listing cache size failed", err)
		return 0
	}
	return int(n)
}

func (r *redisCache) Close() error {
	return r.client.Close()
}

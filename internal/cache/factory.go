package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ProviderConfig holds everything a provider may need to build a cache.
type ProviderConfig struct {
	Size    int           // Maximum number of entries
	TTL     time.Duration // Lifetime of an entry
	OnEvict EvictCallback // Optional, not every provider reports evictions
	Logger  Logger        // Optional, backend errors are dropped when nil

	RedisAddress  string
	RedisPassword string
	RedisDB       int
	// RedisKeyPrefix namespaces the two keys used by the redis provider. Defaults to "subgrab:listings:".
	RedisKeyPrefix string

	// Group labels the cache_* metrics. A non-empty Group wraps the cache with instrumentation.
	Group string
}

// Provider builds a Cache from its config.
type Provider func(cfg ProviderConfig) (Cache, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register makes a provider available to New under name.
// Registering a nil provider or the same name twice panics.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	providers[name] = p
}

// New builds a cache with the named provider. With a Group set, evictions are
// counted and the result is wrapped to record hits, misses and the entry count.
func New(name string, cfg ProviderConfig) (Cache, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}

	if cfg.Group == "" {
		return p(cfg)
	}

	group := cfg.Group
	onEvict := cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if onEvict != nil {
			onEvict(key, value)
		}
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}
	return newInstrumentedCache(inner, group), nil
}

// RegisteredProviders returns the provider names in sorted order.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(cv *prometheus.CounterVec, group string) float64 {
	c, err := cv.GetMetricWithLabelValues(group)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// isolateEntriesRegistry swaps entriesReg for a fresh registry during the test.
func isolateEntriesRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	orig := entriesReg
	entriesReg = reg
	t.Cleanup(func() { entriesReg = orig })
	return reg
}

func entriesGauge(reg *prometheus.Registry, group string) float64 {
	mfs, _ := reg.Gather()
	for _, mf := range mfs {
		if mf.GetName() != "cache_entries" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "cache" && lp.GetValue() == group {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	return -1
}

func TestInstrumentedCache_HitsAndMisses(t *testing.T) {
	isolateEntriesRegistry(t)
	ctx := context.Background()
	c, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour, Group: "test-hit-miss"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	hits := counterValue(HitsTotal, "test-hit-miss")
	misses := counterValue(MissesTotal, "test-hit-miss")

	_, _ = c.Get(ctx, "absent")
	c.Set(ctx, "present", []byte("v"))
	_, _ = c.Get(ctx, "present")
	_, _ = c.Get(ctx, "present")

	if got := counterValue(HitsTotal, "test-hit-miss") - hits; got != 2 {
		t.Errorf("Expected 2 hits, got %.0f", got)
	}
	if got := counterValue(MissesTotal, "test-hit-miss") - misses; got != 1 {
		t.Errorf("Expected 1 miss, got %.0f", got)
	}
}

func TestInstrumentedCache_Evictions(t *testing.T) {
	isolateEntriesRegistry(t)
	ctx := context.Background()
	var evicted []string
	c, err := New("memory", ProviderConfig{
		Size:    1,
		TTL:     time.Hour,
		Group:   "test-evict",
		OnEvict: func(key string, _ []byte) { evicted = append(evicted, key) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	before := counterValue(EvictionsTotal, "test-evict")
	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))

	if got := counterValue(EvictionsTotal, "test-evict") - before; got != 1 {
		t.Errorf("Expected 1 eviction, got %.0f", got)
	}
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("Expected the caller's OnEvict to see 'a', got %v", evicted)
	}
}

func TestInstrumentedCache_EntriesGauge(t *testing.T) {
	reg := isolateEntriesRegistry(t)
	ctx := context.Background()
	c, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour, Group: "test-entries"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if v := entriesGauge(reg, "test-entries"); v != 0 {
		t.Fatalf("Expected 0 entries, got %.0f", v)
	}
	c.Set(ctx, "x", []byte("1"))
	c.Set(ctx, "y", []byte("2"))
	if v := entriesGauge(reg, "test-entries"); v != 2 {
		t.Errorf("Expected 2 entries, got %.0f", v)
	}

	_ = c.Close()
	if v := entriesGauge(reg, "test-entries"); v != -1 {
		t.Errorf("Expected the gauge to be gone after Close, got %.0f", v)
	}
}

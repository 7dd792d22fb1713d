package metrics

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Counter is a monotonically increasing event count.
type Counter struct {
	name string
	n    atomic.Int64
}

// Inc adds one.
func (c *Counter) Inc() {
	if on.Load() {
		c.n.Add(1)
	}
}

// Value returns the current count.
func (c *Counter) Value() int64 { return c.n.Load() }

// Reset sets the count to zero.
func (c *Counter) Reset() { c.n.Store(0) }

// CacheMetric counts hits and misses of a derived-data cache.
type CacheMetric struct {
	name         string
	hits, misses Counter
}

// Hit records a cache hit.
func (c *CacheMetric) Hit() { c.hits.Inc() }

// Miss records a cache miss.
func (c *CacheMetric) Miss() { c.misses.Inc() }

func (c *CacheMetric) Name() string  { return c.name }
func (c *CacheMetric) Hits() int64   { return c.hits.Value() }
func (c *CacheMetric) Misses() int64 { return c.misses.Value() }

// HitRate returns hits / (hits + misses), or 0 with no data.
func (c *CacheMetric) HitRate() float64 {
	h, m := c.Hits(), c.Misses()
	if h+m == 0 {
		return 0
	}
	return float64(h) / float64(h+m)
}

// Reset clears both counters.
func (c *CacheMetric) Reset() {
	c.hits.Reset()
	c.misses.Reset()
}

var (
	// VisibleCache tracks reuse of the flattened visible sequence.
	VisibleCache = &CacheMetric{name: "visible_sequence"}
	// BuilderFailures counts child builders that errored or panicked.
	BuilderFailures = &Counter{name: "builder_failures"}
)

// WriteReport prints every metric with data, one per line.
func WriteReport(w io.Writer) {
	for _, s := range AllTimingStats() {
		fmt.Fprintf(w, "%-16s count=%-6d avg=%.3fms max=%.3fms total=%.3fms\n",
			s.Name, s.Count, s.AvgMs, s.MaxMs, s.TotalMs)
	}
	if h, m := VisibleCache.Hits(), VisibleCache.Misses(); h+m > 0 {
		fmt.Fprintf(w, "%-16s hits=%d misses=%d rate=%.2f\n", VisibleCache.Name(), h, m, VisibleCache.HitRate())
	}
	if n := BuilderFailures.Value(); n > 0 {
		fmt.Fprintf(w, "%-16s %d\n", BuilderFailures.name, n)
	}
}

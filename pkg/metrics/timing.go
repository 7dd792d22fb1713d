// Package metrics instruments the readtree engine.
//
// Durations are kept for the hot paths: flattening the visible sequence,
// refresh, lazy child builds and typeahead scans. Counters follow the
// visible-sequence cache and builder failures. Everything is atomic, so the
// watcher and loader goroutines record alongside the UI.
//
// Recording is on unless READTREE_METRICS=0.
//
//	defer metrics.Timer(metrics.Refresh)()
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

var on atomic.Bool

func init() {
	on.Store(os.Getenv("READTREE_METRICS") != "0")
}

// Enabled reports whether samples are being recorded.
func Enabled() bool { return on.Load() }

// SetEnabled switches recording on or off.
func SetEnabled(e bool) { on.Store(e) }

// TimingMetric accumulates durations of one engine operation.
type TimingMetric struct {
	name  string
	n     atomic.Int64
	sum   atomic.Int64
	worst atomic.Int64
	best  atomic.Int64 // zero until the first sample
}

func timing(name string) *TimingMetric { return &TimingMetric{name: name} }

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !on.Load() {
		return
	}
	ns := int64(d)
	m.n.Add(1)
	m.sum.Add(ns)
	for cur := m.worst.Load(); ns > cur; cur = m.worst.Load() {
		if m.worst.CompareAndSwap(cur, ns) {
			break
		}
	}
	for cur := m.best.Load(); cur == 0 || ns < cur; cur = m.best.Load() {
		if m.best.CompareAndSwap(cur, ns) {
			break
		}
	}
}

// Name is the label used in reports.
func (m *TimingMetric) Name() string { return m.name }

// Count is the number of samples so far.
func (m *TimingMetric) Count() int64 { return m.n.Load() }

// Stats snapshots the metric in milliseconds.
func (m *TimingMetric) Stats() TimingStats {
	n, sum := m.n.Load(), m.sum.Load()
	s := TimingStats{
		Name:    m.name,
		Count:   n,
		TotalMs: millis(sum),
		MaxMs:   millis(m.worst.Load()),
		MinMs:   millis(m.best.Load()),
	}
	if n > 0 {
		s.AvgMs = millis(sum / n)
	}
	return s
}

// Reset forgets every sample.
func (m *TimingMetric) Reset() {
	m.n.Store(0)
	m.sum.Store(0)
	m.worst.Store(0)
	m.best.Store(0)
}

func millis(ns int64) float64 { return float64(ns) / float64(time.Millisecond) }

// TimingStats is a point-in-time copy of a TimingMetric.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer starts measuring and returns the function that stops it.
func Timer(m *TimingMetric) func() {
	if m == nil || !on.Load() {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

var (
	Flatten     = timing("flatten")
	Refresh     = timing("refresh")
	ChildBuild  = timing("child_build")
	Typeahead   = timing("typeahead")
	SourceLoad  = timing("source_load")
	RenderFrame = timing("render_frame")

	timings = []*TimingMetric{Flatten, Refresh, ChildBuild, Typeahead, SourceLoad, RenderFrame}
)

// AllTimingStats returns a snapshot of every timing metric that has samples.
func AllTimingStats() []TimingStats {
	var out []TimingStats
	for _, m := range timings {
		if m.Count() > 0 {
			out = append(out, m.Stats())
		}
	}
	return out
}

// ResetAll clears timings, cache counters and failure counts.
func ResetAll() {
	for _, m := range timings {
		m.Reset()
	}
	VisibleCache.Reset()
	BuilderFailures.Reset()
}

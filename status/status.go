// Package status is a lock-free metrics board shared by the frame loop and the status line
// Writers cache the returned pointers once and update atomics per frame; readers take sorted snapshots
package status

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// Gauge is an atomic float64; zero value reads 0
type Gauge struct {
	bits atomic.Uint64
}

// Set stores v
func (g *Gauge) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

// Get loads the current value
func (g *Gauge) Get() float64 {
	return math.Float64frombits(g.bits.Load())
}

// Add adds delta and returns the new value
func (g *Gauge) Add(delta float64) float64 {
	for {
		old := g.bits.Load()
		next := math.Float64frombits(old) + delta
		if g.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// Label is an atomic string; zero value reads ""
type Label struct {
	ptr atomic.Pointer[string]
}

// Set stores s
func (l *Label) Set(s string) {
	l.ptr.Store(&s)
}

// Get loads the current string
func (l *Label) Get() string {
	if p := l.ptr.Load(); p != nil {
		return *p
	}
	return ""
}

// table maps names to lazily created metric cells
type table[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func (t *table[T]) get(name string) *T {
	t.mu.RLock()
	p, ok := t.items[name]
	t.mu.RUnlock()
	if ok {
		return p
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.items[name]; ok {
		return p
	}
	if t.items == nil {
		t.items = make(map[string]*T)
	}
	p = new(T)
	t.items[name] = p
	return p
}

func (t *table[T]) each(fn func(name string, p *T)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for k, p := range t.items {
		fn(k, p)
	}
}

// Registry holds counters, gauges and labels by name
type Registry struct {
	counters table[atomic.Int64]
	gauges   table[Gauge]
	labels   table[Label]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Counter returns the counter for name, creating it on first use
func (r *Registry) Counter(name string) *atomic.Int64 {
	return r.counters.get(name)
}

// Gauge returns the gauge for name, creating it on first use
func (r *Registry) Gauge(name string) *Gauge {
	return r.gauges.get(name)
}

// Label returns the label for name, creating it on first use
func (r *Registry) Label(name string) *Label {
	return r.labels.get(name)
}

// Metric is one rendered entry of a snapshot
type Metric struct {
	Name  string
	Value string
}

// Snapshot returns every metric formatted, sorted by name
func (r *Registry) Snapshot() []Metric {
	var out []Metric
	r.counters.each(func(name string, p *atomic.Int64) {
		out = append(out, Metric{Name: name, Value: fmt.Sprintf("%d", p.Load())})
	})
	r.gauges.each(func(name string, p *Gauge) {
		out = append(out, Metric{Name: name, Value: fmt.Sprintf("%.1f", p.Get())})
	})
	r.labels.each(func(name string, p *Label) {
		out = append(out, Metric{Name: name, Value: p.Get()})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

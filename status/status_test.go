package status

import (
	"sync"
	"testing"
)

func TestRegistryReturnsStablePointers(t *testing.T) {
	r := NewRegistry()

	c1 := r.Counter("frames")
	c2 := r.Counter("frames")
	if c1 != c2 {
		t.Fatal("Counter returned different pointers for the same name")
	}
	if r.Gauge("fps") != r.Gauge("fps") {
		t.Fatal("Gauge returned different pointers for the same name")
	}
}

func TestGaugeConcurrentAdd(t *testing.T) {
	var g Gauge
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				g.Add(0.5)
			}
		}()
	}
	wg.Wait()

	if got := g.Get(); got != 400 {
		t.Errorf("Expected 400, got %v", got)
	}
}

func TestSnapshotSorted(t *testing.T) {
	r := NewRegistry()
	r.Counter("glyphs.forced").Store(3)
	r.Gauge("fps").Set(59.94)
	r.Label("page").Set("works")

	snap := r.Snapshot()
	want := []Metric{
		{Name: "fps", Value: "59.9"},
		{Name: "glyphs.forced", Value: "3"},
		{Name: "page", Value: "works"},
	}
	if len(snap) != len(want) {
		t.Fatalf("Expected %d metrics, got %d: %v", len(want), len(snap), snap)
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Errorf("metric %d: want %+v, got %+v", i, want[i], snap[i])
		}
	}
}

func TestLabelZeroValue(t *testing.T) {
	var l Label
	if l.Get() != "" {
		t.Errorf("Expected empty label, got %q", l.Get())
	}
	l.Set("dark")
	if l.Get() != "dark" {
		t.Errorf("Expected dark, got %q", l.Get())
	}
}

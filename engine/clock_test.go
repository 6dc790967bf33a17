package engine

import (
	"sync"
	"testing"
	"time"
)

func TestMonotonicTimeProvider(t *testing.T) {
	p := NewMonotonicTimeProvider()

	t1 := p.Now()
	time.Sleep(5 * time.Millisecond)
	t2 := p.Now()

	if !t2.After(t1) {
		t.Errorf("Expected t2 after t1, got t1=%v t2=%v", t1, t2)
	}
}

func TestMockTimeProvider(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(start)

	if !mock.Now().Equal(start) {
		t.Fatalf("Expected %v, got %v", start, mock.Now())
	}

	next := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	mock.SetTime(next)
	if !mock.Now().Equal(next) {
		t.Errorf("Expected %v after SetTime, got %v", next, mock.Now())
	}

	got := mock.Advance(90 * time.Minute)
	if want := next.Add(90 * time.Minute); !got.Equal(want) || !mock.Now().Equal(want) {
		t.Errorf("Expected %v after Advance, got %v", want, got)
	}
}

func TestMockTimeProviderConcurrency(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(start)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = mock.Now()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				mock.Advance(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if want := start.Add(200 * time.Millisecond); !mock.Now().Equal(want) {
		t.Errorf("Expected %v, got %v", want, mock.Now())
	}
}

func TestTimeProviderInterface(t *testing.T) {
	var _ TimeProvider = &MonotonicTimeProvider{}
	var _ TimeProvider = &MockTimeProvider{}
}

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoopDeliversEventsInOrder(t *testing.T) {
	loop := NewLoop(1000, 16, nil)

	var got []int
	done := make(chan error, 1)
	go func() {
		done <- loop.Run(context.Background(), Handlers{
			OnEvent: func(ev any) bool {
				n := ev.(int)
				if n < 0 {
					return false
				}
				got = append(got, n)
				return true
			},
		})
	}()

	for i := 0; i < 5; i++ {
		if !loop.Post(i) {
			t.Fatalf("Post(%d) rejected", i)
		}
	}
	loop.Post(-1)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit")
	}

	for i, n := range got {
		if n != i {
			t.Fatalf("event %d out of order: %v", i, got)
		}
	}
	if len(got) != 5 {
		t.Errorf("Expected 5 events, got %d", len(got))
	}
}

func TestLoopFramesAndStopHook(t *testing.T) {
	loop := NewLoop(500, 4, nil)

	stopped := false
	frames := 0
	err := loop.Run(context.Background(), Handlers{
		OnFrame: func(now time.Time) bool {
			frames++
			return frames < 3
		},
		OnStop: func() { stopped = true },
	})
	if err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if frames != 3 {
		t.Errorf("Expected 3 frames, got %d", frames)
	}
	if loop.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", loop.Frames())
	}
	if !stopped {
		t.Error("OnStop not invoked")
	}
	if loop.Post("late") {
		t.Error("Post accepted after stop")
	}
}

func TestLoopContextCancel(t *testing.T) {
	loop := NewLoop(100, 4, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx, Handlers{}) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop ignored cancellation")
	}

	select {
	case <-loop.Done():
	default:
		t.Error("Done not closed after cancel")
	}
}

func TestLoopDropsWhenFull(t *testing.T) {
	loop := NewLoop(60, 2, nil)

	loop.Post(1)
	loop.Post(2)
	if loop.Post(3) {
		t.Error("Expected third post to be dropped")
	}
	if loop.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", loop.Dropped())
	}
	loop.Stop()
	loop.Stop()
}

func TestLoopRejectsSecondRun(t *testing.T) {
	loop := NewLoop(100, 1, nil)
	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- loop.Run(context.Background(), Handlers{
			OnFrame: func(time.Time) bool {
				select {
				case <-started:
				default:
					close(started)
				}
				return true
			},
		})
	}()

	<-started
	if err := loop.Run(context.Background(), Handlers{}); !errors.Is(err, ErrLoopRunning) {
		t.Errorf("Expected ErrLoopRunning, got %v", err)
	}
	loop.Stop()
	<-done
}

package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcherDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(dir, 100*time.Millisecond, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "about.page")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("# About\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case slugs := <-w.Changes():
		if len(slugs) != 1 || slugs[0] != "about" {
			t.Errorf("slugs = %v, want [about]", slugs)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}

	// rapid writes collapse into one batch
	select {
	case extra := <-w.Changes():
		t.Errorf("unexpected second batch %v", extra)
	case <-time.After(300 * time.Millisecond):
	}

	if st := w.Stats(); st.Delivered != 1 {
		t.Errorf("Delivered = %d, want 1", st.Delivered)
	}
}

func TestWatcherStartStop(t *testing.T) {
	w := NewWatcher(t.TempDir(), 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(ctx); !errors.Is(err, ErrWatcherRunning) {
		t.Errorf("second Start err = %v", err)
	}
	if !w.Running() {
		t.Error("Running() = false after Start")
	}
	w.Stop()
	w.Stop()
	if w.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing"), 0, nil)
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatal("Start on a missing directory succeeded")
	}
}

func TestServiceLifecycle(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.page"), []byte("# Home\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewService(NewManager(dir, nil), 0, nil)
	if err := s.Init(WatchOption(true)); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := s.Manager().Slugs(); len(got) != 1 || got[0] != "index" {
		t.Errorf("slugs = %v", got)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
}

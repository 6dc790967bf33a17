package theme

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceSwitchesOnTick(t *testing.T) {
	clock := clockAt(17)
	m := NewManager(DefaultConfig(), &MemoryStore{}, clock, false, nil)
	require.Equal(t, Light, m.Current())

	changed := make(chan Theme, 1)
	s := NewService(m, 5*time.Millisecond, nil)
	s.OnChange = func(th Theme) {
		select {
		case changed <- th:
		default:
		}
	}
	require.NoError(t, s.Init())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	clock.Advance(time.Hour)
	select {
	case th := <-changed:
		assert.Equal(t, Dark, th)
	case <-time.After(2 * time.Second):
		t.Fatal("no theme change observed")
	}
	assert.Equal(t, Dark, m.Current())
}

func TestServiceStopIdempotent(t *testing.T) {
	s := NewService(NewManager(DefaultConfig(), nil, clockAt(12), false, nil), 0, nil)
	assert.Equal(t, time.Minute, s.interval)
	assert.NoError(t, s.Stop())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop())
	assert.NoError(t, s.Stop())
}

package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToConsoleStderr(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	require.NotNil(t, l)
	sl := l.For(CategoryScoring)
	require.NotNil(t, sl)
	require.NoError(t, l.Sync())
}

func TestForCachesPerCategory(t *testing.T) {
	l, err := New(Config{Level: "debug", Format: "json"})
	require.NoError(t, err)
	first := l.For(CategoryConfig)
	second := l.For(CategoryConfig)
	require.Same(t, first, second)
}

func TestTimerStopReturnsNonNegativeDuration(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	timer := l.StartTimer(CategoryScoring, "unit-test-phase")
	elapsed := timer.Stop()
	require.GreaterOrEqual(t, elapsed.Nanoseconds(), int64(0))
}

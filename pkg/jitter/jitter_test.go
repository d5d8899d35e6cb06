package jitter

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_Range(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := Duration(100*time.Millisecond, 0.5)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestDurationWithSeed_Deterministic(t *testing.T) {
	a := DurationWithSeed(time.Second, 0.5, rand.New(rand.NewSource(42)))
	b := DurationWithSeed(time.Second, 0.5, rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		min     time.Duration
	}{
		{attempt: 0, min: 10 * time.Millisecond},
		{attempt: 1, min: 20 * time.Millisecond},
		{attempt: 2, min: 40 * time.Millisecond},
		{attempt: 10, min: 50 * time.Millisecond},
	}

	for _, tt := range tests {
		d := ExponentialBackoff(10*time.Millisecond, 50*time.Millisecond, tt.attempt, 0)
		assert.Equal(t, tt.min, d, "attempt %d", tt.attempt)
	}
}

func TestBackoff_Delay(t *testing.T) {
	b := NewBackoff(time.Millisecond, 4*time.Millisecond)

	d := b.Delay(5)
	assert.GreaterOrEqual(t, d, 4*time.Millisecond)
	assert.LessOrEqual(t, d, 6*time.Millisecond)
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}

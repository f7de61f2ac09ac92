package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BurstAtLeastOne(t *testing.T) {
	l := New("openlibrary", 0.5)
	assert.Equal(t, "openlibrary", l.Name())
	assert.True(t, l.Allow(), "first request should pass with burst 1")
	assert.False(t, l.Allow(), "second request should be throttled")
}

func TestNewWithBurst(t *testing.T) {
	l := NewWithBurst("googlebooks", 1, 3)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(), "request %d within burst", i)
	}
	assert.False(t, l.Allow())
}

func TestUnlimited_NeverBlocks(t *testing.T) {
	l := Unlimited("test")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(ctx))
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	l := NewWithBurst("slow", 0.001, 1)
	require.True(t, l.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait for slow")
}

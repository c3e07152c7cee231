// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	_, ok, err := c.Get(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, ok)

	payload := []byte(`{"positions":[]}`)
	require.NoError(t, c.Set(ctx, "e1", payload))
	payload[0] = 'X'

	got, ok, err := c.Get(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"positions":[]}`, string(got), "stored copy is independent of the caller's slice")
}

func TestMemoryExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "e1", []byte("x")))
	now = now.Add(TTL + time.Second)

	_, ok, err := c.Get(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewFallsBack(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	// Nothing listens on port 1.
	c, err = New(ctx, "redis://127.0.0.1:1/0")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)
	assert.NoError(t, c.Close())
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), "http://not-redis")
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "results:abc", key("abc"))
}

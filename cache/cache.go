// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL bounds how long a results payload is kept. Completed elections never
// change, so this only reclaims memory.
const TTL = 24 * time.Hour

// Results stores the encoded results of completed elections.
type Results interface {
	Get(ctx context.Context, electionID string) ([]byte, bool, error)
	Set(ctx context.Context, electionID string, payload []byte) error
	Close() error
}

func key(electionID string) string { return "results:" + electionID }

// New connects to Redis at url. An empty url, or a server that does not
// answer a ping, yields an in-process cache instead.
func New(ctx context.Context, url string) (Results, error) {
	if url == "" {
		return NewMemory(), nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 2 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		slog.Warn("redis unavailable, using in-memory results cache", "addr", opts.Addr, "error", err)
		return NewMemory(), nil
	}

	slog.Info("results cache connected", "addr", opts.Addr)
	return NewRedis(client), nil
}

type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (c *Redis) Get(ctx context.Context, electionID string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key(electionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return b, true, nil
}

func (c *Redis) Set(ctx context.Context, electionID string, payload []byte) error {
	if err := c.client.Set(ctx, key(electionID), payload, TTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *Redis) Close() error { return c.client.Close() }

type entry struct {
	payload []byte
	expires time.Time
}

// Memory is the single-process fallback.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now}
}

func (c *Memory) Get(_ context.Context, electionID string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key(electionID)]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expires) {
		return nil, false, nil
	}
	return e.payload, true, nil
}

func (c *Memory) Set(_ context.Context, electionID string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key(electionID)] = entry{payload: append([]byte(nil), payload...), expires: c.now().Add(TTL)}
	return nil
}

func (c *Memory) Close() error { return nil }

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package cache keeps the encoded results of completed elections so repeated
// result views skip the tally query. Redis (go-redis) is used when REDIS_URL
// is set and reachable; otherwise an in-process map stands in.
package cache

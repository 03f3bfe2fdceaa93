// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"sync"

	"golang.org/x/time/rate"
)

// Throttle rate-limits authentication attempts per username. It sits in front
// of the lockout counter and never changes persisted state.
//
// A nil *Throttle allows everything.
type Throttle struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewThrottle allows perSecond attempts per user with the given burst.
// It returns nil when perSecond <= 0.
func NewThrottle(perSecond float64, burst int) *Throttle {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttle{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow consumes one attempt for username and reports whether it may proceed.
func (t *Throttle) Allow(username string) bool {
	if t == nil {
		return true
	}

	t.mu.Lock()
	limiter, ok := t.limiters[username]
	if !ok {
		limiter = rate.NewLimiter(t.limit, t.burst)
		t.limiters[username] = limiter
	}
	t.mu.Unlock()

	return limiter.Allow()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jeranaias/docvault/internal/logging"
	"github.com/jeranaias/docvault/internal/storage"
	"github.com/jeranaias/docvault/internal/users"
)

// =============================================================================
// LOCKOUT CONSTANTS
// =============================================================================

const (
	// DefaultMaxAttempts is the number of consecutive failures that locks an account.
	DefaultMaxAttempts = 5

	// DefaultLockDuration is how long a lock lasts before it lifts on the next check.
	DefaultLockDuration = 15 * time.Minute
)

var (
	// ErrUnknownUser is returned by administrative calls for a missing profile.
	ErrUnknownUser = errors.New("unknown user")

	// ErrNotLocked is returned by Unlock when the account is not locked.
	ErrNotLocked = errors.New("account is not locked")

	// errUnchanged aborts a profile update without writing.
	errUnchanged = errors.New("unchanged")
)

// =============================================================================
// LOCK STATUS
// =============================================================================

// LockStatus is a read-only view of one account's lockout state.
type LockStatus struct {
	Username          string    `json:"username"`
	FailedAttempts    int       `json:"failed_attempts"`
	RemainingAttempts int       `json:"remaining_attempts"`
	Locked            bool      `json:"locked"`
	LockTime          *time.Time `json:"lock_time,omitempty"`
	UnlockAt          *time.Time `json:"unlock_at,omitempty"`
}

// TimeRemaining returns how long until the lock lifts, or 0.
func (s LockStatus) TimeRemaining(now time.Time) time.Duration {
	if !s.Locked || s.UnlockAt == nil {
		return 0
	}
	if d := s.UnlockAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// =============================================================================
// LOCKOUT ENGINE
// =============================================================================

// LockoutEngine tracks failed logins and locks accounts. Its state lives in
// the "security" block of each profile, so it survives restarts.
type LockoutEngine struct {
	profiles     *users.ProfileStore
	maxAttempts  int
	lockDuration time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// LockoutOption configures a LockoutEngine.
type LockoutOption func(*LockoutEngine)

// WithMaxAttempts sets the failure count that locks an account.
func WithMaxAttempts(max int) LockoutOption {
	return func(l *LockoutEngine) {
		if max > 0 {
			l.maxAttempts = max
		}
	}
}

// WithLockDuration sets how long a lock lasts.
func WithLockDuration(d time.Duration) LockoutOption {
	return func(l *LockoutEngine) {
		if d > 0 {
			l.lockDuration = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) LockoutOption {
	return func(l *LockoutEngine) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger for lock and unlock events.
func WithLogger(logger *slog.Logger) LockoutOption {
	return func(l *LockoutEngine) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLockoutEngine creates an engine over profiles.
func NewLockoutEngine(profiles *users.ProfileStore, opts ...LockoutOption) *LockoutEngine {
	l := &LockoutEngine{
		profiles:     profiles,
		maxAttempts:  DefaultMaxAttempts,
		lockDuration: DefaultLockDuration,
		now:          time.Now,
		logger:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MaxAttempts returns the configured failure limit.
func (l *LockoutEngine) MaxAttempts() int { return l.maxAttempts }

// LockDuration returns the configured lock length.
func (l *LockoutEngine) LockDuration() time.Duration { return l.lockDuration }

// Now returns the engine's clock reading.
func (l *LockoutEngine) Now() time.Time { return l.now() }

// =============================================================================
// CORE OPERATIONS
// =============================================================================

// IsLocked reports whether username is locked. An expired lock is cleared and
// persisted before returning false. A lock without a lock time never expires.
// Unknown users are never locked.
func (l *LockoutEngine) IsLocked(username string) (bool, error) {
	locked := false
	err := l.update(func(m map[string]users.Profile) error {
		p, ok := m[username]
		if !ok || !p.Security.IsLocked {
			return errUnchanged
		}
		if p.Security.LockTime == nil || p.Security.LockTime.IsZero() {
			locked = true
			return errUnchanged
		}
		unlockAt := p.Security.LockTime.Add(l.lockDuration)
		if !l.now().After(unlockAt) {
			locked = true
			return errUnchanged
		}

		p.Security.IsLocked = false
		p.Security.FailedAttempts = 0
		m[username] = p
		l.logger.Info("account lock expired", "user", username, "locked_at", p.Security.LockTime.String())
		return nil
	})
	if err != nil {
		return locked, fmt.Errorf("check lock for %s: %w", username, err)
	}
	return locked, nil
}

// ResetFailedAttempts zeroes the failure counter. Missing users are ignored.
func (l *LockoutEngine) ResetFailedAttempts(username string) error {
	err := l.update(func(m map[string]users.Profile) error {
		p, ok := m[username]
		if !ok {
			return errUnchanged
		}
		p.Security.FailedAttempts = 0
		m[username] = p
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset attempts for %s: %w", username, err)
	}
	return nil
}

// IncrementFailedAttempts records one failure and returns the new count,
// locking the account when the count reaches MaxAttempts. Unknown users get 0.
func (l *LockoutEngine) IncrementFailedAttempts(username string) (int, error) {
	attempts := 0
	err := l.update(func(m map[string]users.Profile) error {
		p, ok := m[username]
		if !ok {
			return errUnchanged
		}
		p.Security.FailedAttempts++
		attempts = p.Security.FailedAttempts

		if attempts >= l.maxAttempts {
			lockTime := storage.NewTimestamp(l.now())
			p.Security.IsLocked = true
			p.Security.LockTime = &lockTime
			l.logger.Warn("account locked",
				"user", username,
				"attempts", attempts,
				"locked_until", lockTime.Add(l.lockDuration).Format(storage.TimeLayout),
			)
		} else {
			l.logger.Info("failed login recorded", "user", username, "attempts", attempts, "max", l.maxAttempts)
		}
		m[username] = p
		return nil
	})
	if err != nil {
		return attempts, fmt.Errorf("record failure for %s: %w", username, err)
	}
	return attempts, nil
}

// =============================================================================
// ADMINISTRATION
// =============================================================================

// Status returns the lockout view of username without modifying anything.
// An expired lock is reported as unlocked.
func (l *LockoutEngine) Status(username string) (LockStatus, bool) {
	p, ok := l.profiles.Get(username)
	if !ok {
		return LockStatus{}, false
	}
	return l.statusOf(username, p), true
}

// Unlock clears a lock immediately.
func (l *LockoutEngine) Unlock(username string) error {
	err := l.profiles.Update(func(m map[string]users.Profile) error {
		p, ok := m[username]
		if !ok {
			return ErrUnknownUser
		}
		if !p.Security.IsLocked {
			return ErrNotLocked
		}
		p.Security = users.SecurityState{}
		m[username] = p
		return nil
	})
	if err != nil {
		return fmt.Errorf("unlock %s: %w", username, err)
	}
	l.logger.Info("account unlocked by administrator", "user", username)
	return nil
}

// ListLocked returns every account that is currently locked, by username.
func (l *LockoutEngine) ListLocked() []LockStatus {
	profiles := l.profiles.Load()
	var out []LockStatus
	for _, name := range l.profiles.Usernames() {
		p, ok := profiles[name]
		if !ok {
			continue
		}
		if st := l.statusOf(name, p); st.Locked {
			out = append(out, st)
		}
	}
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

func (l *LockoutEngine) statusOf(username string, p users.Profile) LockStatus {
	sec := p.Security
	st := LockStatus{
		Username:       username,
		FailedAttempts: sec.FailedAttempts,
		Locked:         sec.IsLocked,
	}
	if sec.LockTime != nil && !sec.LockTime.IsZero() {
		lockedAt := sec.LockTime.Time
		unlockAt := lockedAt.Add(l.lockDuration)
		st.LockTime, st.UnlockAt = &lockedAt, &unlockAt
		if sec.IsLocked && l.now().After(unlockAt) {
			st.Locked = false
		}
	}
	switch {
	case st.Locked:
		st.RemainingAttempts = 0
	case sec.IsLocked:
		// expired lock, the counter resets on the next check
		st.RemainingAttempts = l.maxAttempts
	default:
		st.RemainingAttempts = max(l.maxAttempts-sec.FailedAttempts, 0)
	}
	return st
}

// update runs fn under the profile store lock; errUnchanged skips the write.
func (l *LockoutEngine) update(fn func(map[string]users.Profile) error) error {
	err := l.profiles.Update(fn)
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

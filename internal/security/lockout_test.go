// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docvault/internal/storage"
	"github.com/jeranaias/docvault/internal/users"
)

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine(t *testing.T, names ...string) (*LockoutEngine, *users.ProfileStore, *fakeClock) {
	t.Helper()
	profiles := users.NewProfileStore(filepath.Join(t.TempDir(), "user_data.json"))

	m := map[string]users.Profile{}
	for _, name := range names {
		m[name] = users.NewProfile(storage.Timestamp{}, users.Permissions{})
	}
	require.NoError(t, profiles.Save(m))

	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)}
	engine := NewLockoutEngine(profiles, WithClock(clock.Now))
	return engine, profiles, clock
}

// =============================================================================
// LOCKING
// =============================================================================

func TestIncrementFailedAttempts_LocksAtMax(t *testing.T) {
	engine, profiles, clock := newTestEngine(t, "alice")

	for i := 1; i < DefaultMaxAttempts; i++ {
		n, err := engine.IncrementFailedAttempts("alice")
		require.NoError(t, err)
		assert.Equal(t, i, n)

		locked, err := engine.IsLocked("alice")
		require.NoError(t, err)
		assert.False(t, locked, "locked too early after %d failures", i)
	}

	n, err := engine.IncrementFailedAttempts("alice")
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxAttempts, n)

	p, _ := profiles.Get("alice")
	assert.True(t, p.Security.IsLocked)
	require.NotNil(t, p.Security.LockTime)
	assert.True(t, p.Security.LockTime.Equal(clock.t))

	locked, err := engine.IsLocked("alice")
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestIncrementFailedAttempts_UnknownUser(t *testing.T) {
	engine, profiles, _ := newTestEngine(t, "alice")

	n, err := engine.IncrementFailedAttempts("ghost")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, ok := profiles.Get("ghost")
	assert.False(t, ok, "no profile should be created")
}

func TestResetFailedAttempts(t *testing.T) {
	engine, profiles, _ := newTestEngine(t, "alice")

	_, err := engine.IncrementFailedAttempts("alice")
	require.NoError(t, err)
	_, err = engine.IncrementFailedAttempts("alice")
	require.NoError(t, err)
	require.NoError(t, engine.ResetFailedAttempts("alice"))

	p, _ := profiles.Get("alice")
	assert.Zero(t, p.Security.FailedAttempts)

	require.NoError(t, engine.ResetFailedAttempts("ghost"))
}

// =============================================================================
// AUTO UNLOCK
// =============================================================================

func TestIsLocked_AutoUnlocksAfterDuration(t *testing.T) {
	engine, profiles, clock := newTestEngine(t, "alice")
	for i := 0; i < DefaultMaxAttempts; i++ {
		_, err := engine.IncrementFailedAttempts("alice")
		require.NoError(t, err)
	}

	clock.Advance(DefaultLockDuration)
	locked, err := engine.IsLocked("alice")
	require.NoError(t, err)
	assert.True(t, locked, "still locked at exactly the boundary")

	clock.Advance(time.Second)
	locked, err = engine.IsLocked("alice")
	require.NoError(t, err)
	assert.False(t, locked)

	p, _ := profiles.Get("alice")
	assert.False(t, p.Security.IsLocked, "unlock must be persisted")
	assert.Zero(t, p.Security.FailedAttempts)
}

func TestIsLocked_NullLockTimeStaysLocked(t *testing.T) {
	engine, profiles, clock := newTestEngine(t, "alice")
	require.NoError(t, profiles.Update(func(m map[string]users.Profile) error {
		p := m["alice"]
		p.Security = users.SecurityState{FailedAttempts: 5, IsLocked: true}
		m["alice"] = p
		return nil
	}))

	clock.Advance(24 * time.Hour)
	locked, err := engine.IsLocked("alice")
	require.NoError(t, err)
	assert.True(t, locked)

	st, ok := engine.Status("alice")
	require.True(t, ok)
	assert.True(t, st.Locked)
	assert.Nil(t, st.UnlockAt)
}

func TestIsLocked_MalformedLockTimeStaysLocked(t *testing.T) {
	engine, profiles, clock := newTestEngine(t, "alice")
	data := `{"alice": {"created_at": "2024-01-01 09:00:00", "last_login": "", "login_count": 0,
		"permissions": {"read": true, "write": false, "delete": false},
		"security": {"failed_attempts": 5, "is_locked": true, "lock_time": "sometime"}}}`
	require.NoError(t, os.WriteFile(profiles.Path(), []byte(data), 0600))

	clock.Advance(24 * time.Hour)
	locked, err := engine.IsLocked("alice")
	require.NoError(t, err)
	assert.True(t, locked)

	st, ok := engine.Status("alice")
	require.True(t, ok)
	assert.Nil(t, st.LockTime)
	assert.Nil(t, st.UnlockAt)
}

func TestLockStatus_JSONOmitsUnsetTimes(t *testing.T) {
	engine, _, _ := newTestEngine(t, "alice", "bob")
	for i := 0; i < DefaultMaxAttempts; i++ {
		_, _ = engine.IncrementFailedAttempts("bob")
	}

	alice, _ := engine.Status("alice")
	data, err := json.Marshal(alice)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "lock_time")
	assert.NotContains(t, string(data), "unlock_at")

	bob, _ := engine.Status("bob")
	data, err = json.Marshal(bob)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lock_time":"2024-06-01T12:00:00`)
	assert.Contains(t, string(data), `"unlock_at":"2024-06-01T12:15:00`)
}

func TestIsLocked_UnknownUser(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	locked, err := engine.IsLocked("ghost")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestLockSurvivesRestart(t *testing.T) {
	engine, profiles, clock := newTestEngine(t, "alice")
	for i := 0; i < DefaultMaxAttempts; i++ {
		_, err := engine.IncrementFailedAttempts("alice")
		require.NoError(t, err)
	}

	reopened := NewLockoutEngine(users.NewProfileStore(profiles.Path()), WithClock(clock.Now))
	locked, err := reopened.IsLocked("alice")
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestCustomLimits(t *testing.T) {
	engine, _, clock := newTestEngine(t, "alice")
	engine = NewLockoutEngine(engine.profiles,
		WithClock(clock.Now),
		WithMaxAttempts(2),
		WithLockDuration(time.Minute),
	)

	_, _ = engine.IncrementFailedAttempts("alice")
	_, _ = engine.IncrementFailedAttempts("alice")
	locked, _ := engine.IsLocked("alice")
	require.True(t, locked)

	clock.Advance(time.Minute + time.Second)
	locked, _ = engine.IsLocked("alice")
	assert.False(t, locked)
}

// =============================================================================
// ADMINISTRATION
// =============================================================================

func TestStatusAndListLocked(t *testing.T) {
	engine, _, clock := newTestEngine(t, "alice", "bob")
	for i := 0; i < DefaultMaxAttempts; i++ {
		_, _ = engine.IncrementFailedAttempts("bob")
	}
	_, _ = engine.IncrementFailedAttempts("alice")

	alice, ok := engine.Status("alice")
	require.True(t, ok)
	assert.False(t, alice.Locked)
	assert.Equal(t, DefaultMaxAttempts-1, alice.RemainingAttempts)

	bob, ok := engine.Status("bob")
	require.True(t, ok)
	assert.True(t, bob.Locked)
	require.NotNil(t, bob.UnlockAt)
	assert.True(t, bob.UnlockAt.Equal(clock.t.Add(DefaultLockDuration)))
	assert.Equal(t, DefaultLockDuration, bob.TimeRemaining(clock.t))

	locked := engine.ListLocked()
	require.Len(t, locked, 1)
	assert.Equal(t, "bob", locked[0].Username)

	_, ok = engine.Status("ghost")
	assert.False(t, ok)
}

func TestUnlock(t *testing.T) {
	engine, _, _ := newTestEngine(t, "alice")
	for i := 0; i < DefaultMaxAttempts; i++ {
		_, _ = engine.IncrementFailedAttempts("alice")
	}

	require.NoError(t, engine.Unlock("alice"))
	locked, err := engine.IsLocked("alice")
	require.NoError(t, err)
	assert.False(t, locked)

	err = engine.Unlock("alice")
	assert.True(t, errors.Is(err, ErrNotLocked))

	err = engine.Unlock("ghost")
	assert.True(t, errors.Is(err, ErrUnknownUser))
}

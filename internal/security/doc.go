// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package security holds the building blocks of docvault's access control:
//
//   - password.go: salt generation, salted SHA-256 hashing, constant-time verify
//   - lockout.go:  failed-attempt counting and timed account lockout, persisted
//     in the user profile store
//   - access.go:   the read / write / delete permission check
//   - throttle.go: optional per-user attempt rate limiting
//
// # Lockout
//
// After MaxAttempts consecutive failures an account is locked and its lock
// time recorded. The lock is lifted lazily: the first IsLocked call after
// LockDuration has elapsed clears it and persists the change.
//
//	engine := security.NewLockoutEngine(profiles,
//		security.WithMaxAttempts(5),
//		security.WithLockDuration(15*time.Minute),
//	)
//	locked, err := engine.IsLocked("alice")
//
// # Permissions
//
//	if !security.Can(session.Permissions, security.ActionDelete) {
//		return ErrPermissionDenied
//	}
package security

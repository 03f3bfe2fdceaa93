// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidUsername is returned by Register for blank usernames.
	ErrInvalidUsername = errors.New("username cannot be empty")

	// ErrPasswordTooShort is returned by Register below the minimum length.
	ErrPasswordTooShort = errors.New("password too short")

	// ErrUserExists is returned by Register for a taken username.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned by Authenticate for an unknown username.
	ErrUserNotFound = errors.New("user not found")

	// ErrWrongPassword is wrapped by WrongPasswordError.
	ErrWrongPassword = errors.New("wrong password")

	// ErrAccountLocked is wrapped by LockedError.
	ErrAccountLocked = errors.New("account locked")

	// ErrThrottled is returned when attempts arrive faster than the throttle allows.
	ErrThrottled = errors.New("too many login attempts, try again shortly")
)

// LockedError reports a locked account and, when known, when it unlocks.
type LockedError struct {
	Username string
	UnlockAt time.Time
}

// Error implements the error interface.
func (e *LockedError) Error() string {
	if e.UnlockAt.IsZero() {
		return fmt.Sprintf("account %q is locked", e.Username)
	}
	return fmt.Sprintf("account %q is locked until %s", e.Username, e.UnlockAt.Format("15:04:05"))
}

// Unwrap lets errors.Is match ErrAccountLocked.
func (e *LockedError) Unwrap() error { return ErrAccountLocked }

// WrongPasswordError reports a failed attempt that did not lock the account.
type WrongPasswordError struct {
	Remaining int
}

// Error implements the error interface.
func (e *WrongPasswordError) Error() string {
	return fmt.Sprintf("wrong password, %d attempt(s) remaining", e.Remaining)
}

// Unwrap lets errors.Is match ErrWrongPassword.
func (e *WrongPasswordError) Unwrap() error { return ErrWrongPassword }

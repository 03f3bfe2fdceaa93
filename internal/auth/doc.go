// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth registers and authenticates docvault users.
//
// Authenticate returns nil on success or one of the errors below; callers
// branch with errors.Is / errors.As:
//
//	err := svc.Authenticate(user, pass)
//	var locked *auth.LockedError
//	var wrong *auth.WrongPasswordError
//	switch {
//	case err == nil:
//	case errors.As(err, &locked):     // locked.UnlockAt
//	case errors.As(err, &wrong):      // wrong.Remaining
//	case errors.Is(err, auth.ErrUserNotFound):
//	}
//
// Credentials written before salting was introduced are upgraded on the
// first login attempt for that user, whatever its outcome.
package auth

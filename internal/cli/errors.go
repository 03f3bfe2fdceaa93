// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and user-facing rendering of domain errors.
//
// STANDARDIZED PATTERN:
//   - Handlers always return errors, main decides how to display them
//   - Domain errors are matched with errors.Is/As, never by message text

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/docvault/internal/auth"
	"github.com/jeranaias/docvault/internal/config"
	"github.com/jeranaias/docvault/internal/files"
	"github.com/jeranaias/docvault/internal/security"
	"github.com/jeranaias/docvault/internal/workspace"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates authentication or authorization failure
	ExitAuthError = 4
	// ExitNotFoundError indicates a user or document was not found
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError is returned for malformed command lines.
type UsageError struct {
	Message string
	Usage   string
}

func (e *UsageError) Error() string {
	if e.Usage == "" {
		return e.Message
	}
	return fmt.Sprintf("%s\n\nUsage:\n%s", e.Message, e.Usage)
}

func usageErrorf(usage, format string, args ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, args...), Usage: usage}
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var validateErrs config.ValidateErrors
	if errors.As(err, &validateErrs) {
		return ExitConfigError
	}

	switch {
	case errors.Is(err, auth.ErrWrongPassword),
		errors.Is(err, auth.ErrAccountLocked),
		errors.Is(err, auth.ErrThrottled),
		errors.Is(err, workspace.ErrPermissionDenied):
		return ExitAuthError
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, security.ErrUnknownUser),
		errors.Is(err, files.ErrNotFound):
		return ExitNotFoundError
	}
	return ExitGeneralError
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// Describe returns the message shown to a person for err, with a hint
// where one helps.
func Describe(err error) string {
	var locked *auth.LockedError
	var wrong *auth.WrongPasswordError
	var denied *workspace.PermissionError

	switch {
	case errors.As(err, &locked):
		if locked.UnlockAt.IsZero() {
			return "Account is locked. Ask an administrator to run: docvault lockout unlock " + locked.Username
		}
		return fmt.Sprintf("Account is locked. Try again after %s.", locked.UnlockAt.Format("15:04:05"))
	case errors.As(err, &wrong):
		return fmt.Sprintf("Wrong password. %d attempt(s) remaining before the account locks.", wrong.Remaining)
	case errors.Is(err, auth.ErrUserNotFound):
		return "No such user. Create one with: docvault register <user>"
	case errors.Is(err, auth.ErrUserExists):
		return "That username is already taken."
	case errors.Is(err, auth.ErrPasswordTooShort):
		return err.Error()
	case errors.As(err, &denied):
		return fmt.Sprintf("You do not have %s permission.", denied.Action)
	case errors.Is(err, files.ErrInvalidName):
		return fmt.Sprintf("%v (names may not be empty or contain path separators or \"..\")", err)
	}
	return err.Error()
}

// DisplayError prints err to w in the standard format, or as a JSON error
// response in JSON mode.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if jsonMode {
		_ = NewJSONErrorResponse(command, err).Write(w)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), Describe(err))
}

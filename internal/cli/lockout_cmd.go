// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// lockout_cmd.go - CLI commands for account lockout management.
//
// Command: lockout [subcommand]
// Aliases: lock
//
// Subcommands:
//   status <user>       Show failed attempts and lock state
//   list (default)      List locked accounts (alias: ls)
//   unlock <user>       Clear a lock and its failure count
//
// Examples:
//   docvault lockout                   List locked accounts
//   docvault lockout status alice      Show alice's state
//   docvault lockout status alice --json
//   docvault lockout unlock alice      Unlock before the lock expires
//
// Lockout policy (config [security]):
//   - max_login_attempts consecutive failures lock the account (default 5)
//   - the lock lifts on the first check after lock_duration_minutes (default 15)
//
// Flags:
//   --json              Output in JSON format

package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/docvault/internal/security"
	"github.com/jeranaias/docvault/internal/util"
)

const lockoutUsage = `  docvault lockout status <user>   Show lockout state for a user
  docvault lockout list            List locked accounts
  docvault lockout unlock <user>   Manually unlock an account`

// HandleLockout handles the "lockout" command with various subcommands.
func (a *App) HandleLockout(args Args) error {
	p := NewArgParser(args.Raw, "json")
	if p.BoolFlag("json") {
		args.JSON = true
	}
	username := p.Positional(1)

	switch p.Subcommand() {
	case "", "list", "ls":
		return a.lockoutList(args)
	case "status":
		if username == "" {
			return usageErrorf(lockoutUsage, "username required")
		}
		return a.lockoutStatus(args, username)
	case "unlock", "reset":
		if username == "" {
			return usageErrorf(lockoutUsage, "username required")
		}
		return a.lockoutUnlock(args, username)
	default:
		return usageErrorf(lockoutUsage, "unknown lockout subcommand: %s", p.Subcommand())
	}
}

// =============================================================================
// LOCKOUT STATUS
// =============================================================================

func (a *App) lockoutStatus(args Args, username string) error {
	st, ok := a.Lockout.Status(username)
	if !ok {
		return fmt.Errorf("lockout status %s: %w", username, security.ErrUnknownUser)
	}

	return a.emit(args, "lockout status", st, func() {
		w := a.Stdout
		fmt.Fprintln(w, TitleStyle.Render("Lockout Status: "+username))
		fmt.Fprintln(w, RenderSeparator())

		state := SuccessStyle.Render("UNLOCKED")
		if st.Locked {
			state = ErrorStyle.Render("LOCKED")
		}
		fmt.Fprintln(w, RenderField("State:", state))
		fmt.Fprintln(w, RenderField("Failed Attempts:", strconv.Itoa(st.FailedAttempts)))

		remaining := strconv.Itoa(st.RemainingAttempts)
		if !st.Locked && st.RemainingAttempts <= 1 {
			remaining = WarningStyle.Render(remaining)
		}
		fmt.Fprintln(w, RenderField("Remaining:", remaining))

		if st.LockTime != nil {
			fmt.Fprintln(w, RenderField("Locked At:", st.LockTime.Format("2006-01-02 15:04:05")))
		}
		if st.Locked && st.UnlockAt != nil {
			fmt.Fprintln(w, RenderField("Unlocks At:", st.UnlockAt.Format("15:04:05")))
			fmt.Fprintln(w, RenderField("Time Remaining:", formatDurationShort(st.TimeRemaining(a.Lockout.Now()))))
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Policy: %d attempts, %s lock\n",
			a.Lockout.MaxAttempts(), formatDurationShort(a.Lockout.LockDuration()))
	})
}

// =============================================================================
// LOCKOUT LIST
// =============================================================================

func (a *App) lockoutList(args Args) error {
	locked := a.Lockout.ListLocked()
	data := LockoutListData{
		MaxAttempts:  a.Lockout.MaxAttempts(),
		LockDuration: a.Lockout.LockDuration().String(),
		Locked:       locked,
		Count:        len(locked),
	}
	if data.Locked == nil {
		data.Locked = []security.LockStatus{}
	}

	return a.emit(args, "lockout list", data, func() {
		w := a.Stdout
		fmt.Fprintln(w, TitleStyle.Render("Locked Accounts"))
		fmt.Fprintln(w, RenderSeparator())

		if len(locked) == 0 {
			fmt.Fprintln(w, SuccessStyle.Render("  No accounts are currently locked."))
			return
		}

		fmt.Fprintf(w, "  %s %-14s %s\n", util.PadRight("User", 20), "Unlocks At", "Time Remaining")
		fmt.Fprintln(w, DimStyle.Render("  "+strings.Repeat("-", 50)))
		now := a.Lockout.Now()
		for _, st := range locked {
			until := "manual unlock"
			if st.UnlockAt != nil {
				until = st.UnlockAt.Format("15:04:05")
			}
			fmt.Fprintf(w, "  %s %-14s %s\n",
				ErrorStyle.Render(util.PadRight(util.TruncateWidth(st.Username, 20), 20)),
				until,
				WarningStyle.Render(formatDurationShort(st.TimeRemaining(now))))
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Total: %d locked account(s)\n", len(locked))
		fmt.Fprintln(w, DimStyle.Render("  Unlock with: docvault lockout unlock <user>"))
	})
}

// =============================================================================
// LOCKOUT UNLOCK
// =============================================================================

func (a *App) lockoutUnlock(args Args, username string) error {
	if err := a.Lockout.Unlock(username); err != nil {
		return err
	}
	st, _ := a.Lockout.Status(username)
	return a.emit(args, "lockout unlock", st, func() {
		fmt.Fprintf(a.Stdout, "%s %s\n", SuccessStyle.Render("Unlocked"), username)
	})
}

// formatDurationShort renders d as "14m 05s", "3h 10m" or "45s".
func formatDurationShort(d time.Duration) string {
	d = d.Round(time.Second)
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

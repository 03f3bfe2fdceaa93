// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for the docvault CLI.
//
// USABILITY: TTY detection for proper terminal handling
//   - Interactive terminals get colours and hidden password prompts
//   - Piped input is read line by line, piped output is plain text
//   - NO_COLOR and ui.color are respected

package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// isTerminal reports whether f is attached to a terminal. Anything that is
// not an *os.File (a test buffer, a pipe wrapper) is not.
func isTerminal(f any) bool {
	file, ok := f.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return isTerminal(os.Stdout)
}

// =============================================================================
// TERMINAL WIDTH DETECTION
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width used for tables
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the current terminal width.
// Returns DefaultTerminalWidth (80) if width cannot be determined.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

// SetColorMode applies ui.color: "always", "never" or "auto". Auto enables
// colour for a stdout terminal unless NO_COLOR is set.
func SetColorMode(mode string) {
	var enabled bool
	switch strings.ToLower(mode) {
	case "always":
		enabled = true
	case "never":
		enabled = false
	default:
		enabled = os.Getenv("NO_COLOR") == "" && IsStdoutTTY()
	}
	lipgloss.SetColorProfile(colorProfile(enabled))
}

// outputWidth is the width to lay tables out in when writing to w: the
// terminal width for a stdout terminal, otherwise DefaultTerminalWidth.
func outputWidth(w any) int {
	if isTerminal(w) {
		return GetTerminalWidth()
	}
	return DefaultTerminalWidth
}

// colorProfile returns Ascii when colours are off, otherwise the best profile
// termenv detects for stdout.
func colorProfile(enabled bool) termenv.Profile {
	if !enabled {
		return termenv.Ascii
	}
	if profile := termenv.ColorProfile(); profile != termenv.Ascii {
		return profile
	}
	// Forced colour on a non-terminal.
	return termenv.ANSI256
}

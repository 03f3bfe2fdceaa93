// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - Password and line input.
//
// USABILITY: passwords are read without echo on a terminal; piped input is
// read one line at a time so scripts can drive register and login.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when stdin ends before a required answer.
var ErrNoInput = errors.New("no input")

// lineSource reads prompted lines. The shell reads through the same source
// as the password prompt so piped input is consumed in order.
type lineSource interface {
	Prompt(prompt string) (string, error)
}

// readerSource reads lines from a non-terminal reader. The prompt is not
// echoed.
type readerSource struct {
	r *bufio.Reader
}

func (s *readerSource) Prompt(string) (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// input returns the app's shared line source over Stdin.
func (a *App) input() *readerSource {
	if a.lines == nil {
		a.lines = &readerSource{r: bufio.NewReader(a.Stdin)}
	}
	return a.lines
}

// stdinIsTerminal reports whether Stdin is an interactive terminal.
func (a *App) stdinIsTerminal() bool {
	return isTerminal(a.Stdin)
}

// readPassword prompts on Stderr and reads a password. On a terminal the
// input is hidden with term.ReadPassword.
func (a *App) readPassword(prompt string) (string, error) {
	if a.stdinIsTerminal() {
		fmt.Fprint(a.Stderr, prompt)
		passBytes, err := term.ReadPassword(int(a.Stdin.(*os.File).Fd()))
		fmt.Fprintln(a.Stderr) // Add newline after hidden input
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(passBytes), nil
	}

	password, err := a.input().Prompt(prompt)
	if errors.Is(err, io.EOF) {
		return "", fmt.Errorf("password: %w", ErrNoInput)
	}
	return password, err
}

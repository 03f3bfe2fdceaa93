// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// login_cmd.go - The "login" command.
//
// Command: login <user>
//
// Prompts for the password, then opens the document shell. Failures show
// the remaining attempts or, once locked, when the lock lifts.

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/docvault/internal/util"
	"github.com/jeranaias/docvault/internal/workspace"
)

const loginUsage = "  docvault login <user>"

// HandleLogin authenticates and runs the shell until exit or end of input.
func (a *App) HandleLogin(args Args) error {
	p := NewArgParser(args.Raw)
	username := p.Positional(0)
	if username == "" {
		return usageErrorf(loginUsage, "username required")
	}

	password, err := a.readPassword("Password: ")
	if err != nil {
		return err
	}

	session, err := a.Auth.Login(username, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Stdout, "%s %s %s\n",
		SuccessStyle.Render("Welcome,"),
		session.Username,
		DimStyle.Render(fmt.Sprintf("(login #%d)", session.LoginCount)))

	shell := NewShell(workspace.New(session, a.Files, a.Logger), a.Files, a.Stdout, a.Logger)
	if !a.stdinIsTerminal() {
		return shell.Run(a.input())
	}

	in := newLinerSource(a.Config.HistoryPath())
	defer in.Close()
	return shell.Run(in)
}

// =============================================================================
// LINE EDITING
// =============================================================================

// linerSource provides input history and line editing for the shell.
// USABILITY: Supports arrow keys for history navigation and line editing.
type linerSource struct {
	line        *liner.State
	historyFile string
}

func newLinerSource(historyFile string) *linerSource {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	s := &linerSource{line: line, historyFile: historyFile}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			s.line.ReadHistory(f)
			f.Close()
		}
	}
	return s
}

// Prompt reads a line and adds non-empty input to the history.
func (s *linerSource) Prompt(prompt string) (string, error) {
	input, err := s.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		s.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (s *linerSource) Close() {
	if s.historyFile != "" && os.MkdirAll(filepath.Dir(s.historyFile), util.DirPerm) == nil {
		if f, err := os.OpenFile(s.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			s.line.WriteHistory(f)
			f.Close()
		}
	}
	s.line.Close()
}

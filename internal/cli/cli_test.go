// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docvault/internal/auth"
	"github.com/jeranaias/docvault/internal/files"
	"github.com/jeranaias/docvault/internal/security"
	"github.com/jeranaias/docvault/internal/workspace"
)

// =============================================================================
// PARSE TESTS (cli.go)
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantCmd Command
		check   func(*testing.T, Args)
	}{
		{name: "no args shows help", argv: nil, wantCmd: CmdHelp},
		{
			name:    "register with permissions",
			argv:    []string{"register", "alice", "--read", "--write"},
			wantCmd: CmdRegister,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, []string{"alice", "--read", "--write"}, a.Raw)
			},
		},
		{name: "login", argv: []string{"LOGIN", "bob"}, wantCmd: CmdLogin},
		{name: "lock alias", argv: []string{"lock", "list"}, wantCmd: CmdLockout},
		{name: "version flag", argv: []string{"--version"}, wantCmd: CmdVersion},
		{name: "help flag", argv: []string{"-h"}, wantCmd: CmdHelp},
		{
			name:    "global flags anywhere",
			argv:    []string{"--data-dir", "/tmp/dv", "lockout", "list", "--json", "-v", "--config=/etc/dv.toml"},
			wantCmd: CmdLockout,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "/tmp/dv", a.DataDir)
				assert.Equal(t, "/etc/dv.toml", a.ConfigPath)
				assert.True(t, a.JSON)
				assert.True(t, a.Verbose)
				assert.Equal(t, []string{"list"}, a.Raw)
			},
		},
		{
			name:    "unknown command",
			argv:    []string{"frobnicate"},
			wantCmd: CmdUnknown,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "frobnicate", a.Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := Parse(tt.argv)
			assert.Equal(t, tt.wantCmd, cmd)
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestPrintVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintVersion(&buf, true))

	var resp struct {
		Success bool        `json:"success"`
		Command string      `json:"command"`
		Data    VersionData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "version", resp.Command)
	assert.Equal(t, Version, resp.Data.Version)
}

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		boolNames []string
		validate  func(*testing.T, *ArgParser)
	}{
		{
			name: "flag with value",
			args: []string{"stroke", "pic.draw", "--size", "4"},
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "4", p.Flag("size"))
				assert.Equal(t, 2, p.PositionalCount())
			},
		},
		{
			name: "negative numbers are values",
			args: []string{"pic.draw", "1,2", "-3,4", "--size", "-2", "-"},
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, []string{"pic.draw", "1,2", "-3,4", "-"}, p.PositionalFrom(0))
				assert.Equal(t, "-2", p.Flag("size"))
			},
		},
		{
			name: "flag with equals",
			args: []string{"--tool=eraser", "pic.draw"},
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "eraser", p.Flag("tool"))
				assert.Equal(t, "pic.draw", p.Subcommand())
			},
		},
		{
			name:      "declared booleans do not swallow positionals",
			args:      []string{"--read", "alice", "--write"},
			boolNames: []string{"read", "write"},
			validate: func(t *testing.T, p *ArgParser) {
				assert.True(t, p.BoolFlag("read"))
				assert.True(t, p.BoolFlag("write"))
				assert.False(t, p.BoolFlag("delete"))
				assert.Equal(t, "alice", p.Positional(0))
			},
		},
		{
			name: "explicit false",
			args: []string{"--json=false"},
			validate: func(t *testing.T, p *ArgParser) {
				assert.False(t, p.BoolFlag("json"))
				assert.True(t, p.HasFlag("json"))
			},
		},
		{
			name: "double dash ends flags",
			args: []string{"set", "--", "-x"},
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, []string{"-x"}, p.PositionalFrom(1))
			},
		},
		{
			name: "out of range",
			args: []string{},
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "", p.Positional(3))
				assert.Empty(t, p.PositionalFrom(1))
				assert.Equal(t, "dflt", p.FlagOrDefault("missing", "dflt"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, NewArgParser(tt.args, tt.boolNames...))
		})
	}
}

// =============================================================================
// ERROR TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{errors.New("boom"), ExitGeneralError},
		{usageErrorf("", "bad"), ExitUsageError},
		{&auth.WrongPasswordError{Remaining: 2}, ExitAuthError},
		{&auth.LockedError{Username: "a"}, ExitAuthError},
		{&workspace.PermissionError{Username: "a", Action: security.ActionDelete}, ExitAuthError},
		{fmt.Errorf("login: %w", auth.ErrUserNotFound), ExitNotFoundError},
		{&files.Error{Op: "read", Name: "x", Err: files.ErrNotFound}, ExitNotFoundError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetExitCode(tt.err), "%v", tt.err)
	}
}

func TestDescribe(t *testing.T) {
	unlock := time.Date(2025, 1, 2, 10, 30, 0, 0, time.Local)

	assert.Equal(t, "Account is locked. Try again after 10:30:00.",
		Describe(&auth.LockedError{Username: "alice", UnlockAt: unlock}))
	assert.Contains(t, Describe(&auth.LockedError{Username: "alice"}), "docvault lockout unlock alice")
	assert.Equal(t, "Wrong password. 3 attempt(s) remaining before the account locks.",
		Describe(&auth.WrongPasswordError{Remaining: 3}))
	assert.Contains(t, Describe(fmt.Errorf("x: %w", auth.ErrUserNotFound)), "docvault register")
	assert.Equal(t, "You do not have delete permission.",
		Describe(&workspace.PermissionError{Username: "a", Action: security.ActionDelete}))
	assert.Equal(t, "plain", Describe(errors.New("plain")))
}

func TestFormatDurationShort(t *testing.T) {
	assert.Equal(t, "45s", formatDurationShort(45*time.Second))
	assert.Equal(t, "14m 05s", formatDurationShort(14*time.Minute+5*time.Second))
	assert.Equal(t, "2h 03m", formatDurationShort(2*time.Hour+3*time.Minute))
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing, usage text and version output for docvault.

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdHelp Command = iota
	CmdRegister
	CmdLogin
	CmdLockout
	CmdConfig
	CmdVersion
	CmdUnknown
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string // --config: load this file instead of ~/.docvault/config.toml
	DataDir    string // --data-dir: overrides data.dir
	JSON       bool   // Output in JSON format
	Verbose    bool
	Quiet      bool

	// Name is the command word as typed, kept for error messages.
	Name string

	// Raw args (remaining after the command word and global flags)
	Raw []string
}

const usageText = `docvault - password-protected document vault

Usage:
  docvault register <user> [--read] [--write] [--delete] [--all] [--perms LIST]
                                     Create an account (prompts for a password)
  docvault login <user>              Log in and open the document shell
  docvault lockout status <user>     Show failed attempts and lock state
  docvault lockout list              List locked accounts
  docvault lockout unlock <user>     Clear a lock and its failure count
  docvault config show               Print the effective configuration
  docvault config path               Show config and data locations
  docvault config init               Write a default config.toml
  docvault config get <key>          Print one setting (e.g. security.max_login_attempts)
  docvault config set <key> <value>  Change one setting and save config.toml
  docvault version                   Show version information
  docvault help                      Show this help

Global Flags:
  --config PATH     Use this config file (.toml or .json)
  --data-dir DIR    Override data.dir
  --json            Output in JSON format (lockout, config, version, register)
  -v, --verbose     Debug logging on stderr
  -q, --quiet       Errors only on stderr

Shell Commands (after login):
  ls                              List documents
  cat <name>                      Print a document (read)
  new <name> [text|draw|sheet]    Create a document (write)
  write <name> <text...>          Replace a text document (write)
  append <name> <text...>         Append a line to a text document (write)
  set <sheet> <cell> <value...>   Set a spreadsheet cell, e.g. set budget.sheet B3 42 (write)
  stroke <draw> x,y x,y ...       Add a stroke to a drawing (write)
  rm <name>                       Delete a document (delete)
  whoami                          Show the session and its permissions
  watch on|off                    Report changes made outside this session
  help, exit

Environment:
  DOCVAULT_HOME, DOCVAULT_DATA_DIR, DOCVAULT_MAX_LOGIN_ATTEMPTS,
  DOCVAULT_LOCK_MINUTES, DOCVAULT_MIN_PASSWORD_LENGTH,
  DOCVAULT_LOG_LEVEL, DOCVAULT_LOG_FORMAT, NO_COLOR
  A .env file in the working directory is read at startup.

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer, jsonMode bool) error {
	if jsonMode {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Write(w)
	}
	fmt.Fprintf(w, "docvault version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	return nil
}

// Parse parses command-line arguments (without the program name) and
// returns the command and args. Global flags may appear anywhere.
func Parse(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdHelp, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	parsedArgs.Name = cmd
	parsedArgs.Raw = remaining[1:]

	switch cmd {
	case "register", "signup":
		return CmdRegister, parsedArgs
	case "login":
		return CmdLogin, parsedArgs
	case "lockout", "lock":
		return CmdLockout, parsedArgs
	case "config":
		return CmdConfig, parsedArgs
	case "version", "--version":
		return CmdVersion, parsedArgs
	case "help", "-h", "--help":
		return CmdHelp, parsedArgs
	default:
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--config", "--data-dir":
			if i+1 < len(args) {
				i++
				if arg == "--config" {
					parsedArgs.ConfigPath = args[i]
				} else {
					parsedArgs.DataDir = args[i]
				}
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--config="):
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			case strings.HasPrefix(arg, "--data-dir="):
				parsedArgs.DataDir = strings.TrimPrefix(arg, "--data-dir=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsedArgs
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and execution for docvault.
//
// # Key Types
//
//   - Command: enumeration of the top-level commands
//   - Args: parsed global flags plus the remaining raw arguments
//   - App: the wired stores, lockout engine, auth service and file manager
//   - Shell: the interactive document shell opened by "login"
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	app, err := cli.NewApp(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return app.Run(cmd, args)
//
// # Commands Overview
//
//   - register: create an account with read/write/delete permissions
//   - login: authenticate and open the document shell
//   - lockout: inspect and clear account locks
//   - config: show, locate, initialise and edit the configuration
//   - version, help
//
// lockout, config and version support --json.
package cli

// docvault - a password-protected document vault for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/jeranaias/docvault/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	// A missing .env is normal; DOCVAULT_* may come from the environment.
	_ = godotenv.Load()

	cmd, args := cli.Parse(os.Args[1:])

	// Commands that need no configuration
	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return
	case cli.CmdVersion:
		exitOnError(args, cli.PrintVersion(os.Stdout, args.JSON))
		return
	}

	cfg, err := cli.LoadConfig(args)
	exitOnError(args, err)
	cli.SetColorMode(cfg.UI.Color)

	logger, err := cli.NewLogger(cfg, args, os.Stderr)
	exitOnError(args, err)
	slog.SetDefault(logger)

	app, err := cli.NewApp(cfg, logger)
	exitOnError(args, err)

	exitOnError(args, app.Run(cmd, args))
}

// exitOnError prints err and exits with its exit code. nil is a no-op.
func exitOnError(args cli.Args, err error) {
	if err == nil {
		return
	}
	if args.JSON {
		cli.DisplayError(os.Stdout, args.Name, err, true)
	} else {
		cli.DisplayError(os.Stderr, args.Name, err, false)
	}
	os.Exit(cli.GetExitCode(err))
}

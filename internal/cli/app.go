// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Wiring of configuration, stores and services for one invocation.

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jeranaias/docvault/internal/auth"
	"github.com/jeranaias/docvault/internal/config"
	"github.com/jeranaias/docvault/internal/files"
	"github.com/jeranaias/docvault/internal/logging"
	"github.com/jeranaias/docvault/internal/security"
	"github.com/jeranaias/docvault/internal/storage"
	"github.com/jeranaias/docvault/internal/users"
)

// =============================================================================
// CONFIG AND LOGGER FROM FLAGS
// =============================================================================

// LoadConfig loads the configuration named by --config, or the default one,
// then applies --data-dir.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if args.DataDir != "" {
		cfg.Data.Dir = args.DataDir
	}
	return cfg, nil
}

// NewLogger builds the stderr logger. -v forces debug and -q forces error.
func NewLogger(cfg *config.Config, args Args, w io.Writer) (*slog.Logger, error) {
	level := cfg.Logging.Level
	switch {
	case args.Verbose:
		level = "debug"
	case args.Quiet:
		level = "error"
	}
	return logging.New(logging.Options{Level: level, Format: cfg.Logging.Format, Output: w})
}

// =============================================================================
// APP
// =============================================================================

// App holds everything a command needs.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Credentials *users.CredentialStore
	Profiles    *users.ProfileStore
	Lockout     *security.LockoutEngine
	Auth        *auth.Service
	Files       *files.Manager

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	lines *readerSource
}

// NewApp opens the stores and document directory described by cfg. A nil
// logger discards.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	storeLogger := logger.With("component", "storage")
	creds := users.NewCredentialStore(cfg.CredentialsPath(), storage.WithLogger(storeLogger))
	profiles := users.NewProfileStore(cfg.ProfilesPath(), storage.WithLogger(storeLogger))

	lockout := security.NewLockoutEngine(profiles,
		security.WithMaxAttempts(cfg.Security.MaxLoginAttempts),
		security.WithLockDuration(cfg.LockDuration()),
		security.WithLogger(logger.With("component", "lockout")),
	)

	service := auth.New(creds, profiles, lockout,
		auth.WithMinPasswordLength(cfg.Security.MinPasswordLength),
		auth.WithThrottle(security.NewThrottle(cfg.Security.AttemptsPerSecond, cfg.Security.AttemptBurst)),
		auth.WithLogger(logger.With("component", "auth")),
	)

	fm, err := files.New(cfg.DocumentsPath(), files.WithLogger(logger.With("component", "files")))
	if err != nil {
		return nil, fmt.Errorf("open documents: %w", err)
	}

	return &App{
		Config:      cfg,
		Logger:      logger,
		Credentials: creds,
		Profiles:    profiles,
		Lockout:     lockout,
		Auth:        service,
		Files:       fm,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}, nil
}

// Run dispatches cmd. CmdHelp, CmdVersion and CmdUnknown do not need an App
// and are handled by the caller, but are accepted here too.
func (a *App) Run(cmd Command, args Args) error {
	switch cmd {
	case CmdRegister:
		return a.HandleRegister(args)
	case CmdLogin:
		return a.HandleLogin(args)
	case CmdLockout:
		return a.HandleLockout(args)
	case CmdConfig:
		return a.HandleConfig(args)
	case CmdVersion:
		return PrintVersion(a.Stdout, args.JSON)
	case CmdHelp:
		PrintUsage(a.Stdout)
		return nil
	default:
		return usageErrorf("  docvault help", "unknown command: %s", args.Name)
	}
}

// emit writes data as a JSON response in JSON mode, otherwise calls human.
func (a *App) emit(args Args, command string, data any, human func()) error {
	if args.JSON {
		return NewJSONResponse(command, data).Write(a.Stdout)
	}
	human()
	return nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads docvault's settings.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides and validation.
//
// # Key Types
//
//   - Config: all settings, passed explicitly to the components that need them
//   - DataConfig: where credentials, profiles and documents live
//   - SecurityConfig: lockout limits and password policy
//
// # Configuration Precedence
//
//   - Environment variables (DOCVAULT_*)
//   - ~/.docvault/config.toml
//   - ~/.docvault/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	creds := users.NewCredentialStore(cfg.CredentialsPath())
package config

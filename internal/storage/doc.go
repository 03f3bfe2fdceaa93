// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the self-healing JSON map files docvault keeps its
// credentials and user profiles in.
//
// A JSONStore holds one JSON object keyed by username. Loading never fails:
//
//   - a missing or blank file is (re)initialised as {}
//   - an unparsable file is copied to "<file>.bak.<unix seconds>" and replaced by {}
//   - records that do not decode are dropped after the same backup; the rest are kept
//   - a malformed timestamp decodes as zero and keeps its raw value on save
//   - any other read error yields an empty map and leaves the file alone
//
// Saves go through util.AtomicWriteFile and report their errors.
//
// # Key Types
//
//   - JSONStore: generic load / save / update over map[string]T
//   - Timestamp: "YYYY-MM-DD HH:MM:SS" local time, "" when zero
//
// # Usage
//
//	creds := storage.NewJSONStore[Record](filepath.Join(dataDir, "credentials.json"))
//	err := creds.Update(func(m map[string]Record) error {
//		m["alice"] = rec
//		return nil
//	})
package storage

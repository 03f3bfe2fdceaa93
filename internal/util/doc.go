// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the docvault packages.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync and rename
//   - BackupPath: the "<file>.bak.<epoch>" name used for corrupt stores
//
// Display:
//   - FormatSize: human readable byte counts (B, KB, MB, GB)
//   - PadRight, TruncateWidth, StringWidth: display-width aware column helpers
//
// # Usage
//
//	err := util.AtomicWriteFile(path, data, 0600)
//	fmt.Println(util.PadRight(name, 24), util.FormatSize(size))
package util

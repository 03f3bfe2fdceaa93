// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package files is docvault's flat document directory.
//
// Manager knows nothing about users or permissions. It validates names,
// never overwrites on Create and never creates on Edit. I/O failures are
// returned as *Error values instead of panicking.
//
// # Name Rules
//
// A name is rejected when it is empty or contains "..", "/" or "\". That is
// the only traversal defence. Absolute Windows paths, symlinks and reserved
// device names are not checked separately.
//
// # Usage
//
//	fm, err := files.New(filepath.Join(dataDir, "files"))
//	if err := fm.Create("notes.txt", "hello"); errors.Is(err, files.ErrAlreadyExists) {
//		err = fm.Edit("notes.txt", "hello")
//	}
//
// Watcher reports changes made to the directory by other programs.
package files

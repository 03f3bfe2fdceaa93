// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package files

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName is returned for names that fail ValidateName.
	ErrInvalidName = errors.New("invalid file name")

	// ErrAlreadyExists is returned by Create when the name is taken.
	ErrAlreadyExists = errors.New("file already exists")

	// ErrNotFound is returned when the named file does not exist.
	ErrNotFound = errors.New("file not found")
)

// Error describes a failed operation on one document.
type Error struct {
	Op   string
	Name string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

func opError(op, name string, err error) error {
	return &Error{Op: op, Name: name, Err: err}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package workspace is the logged-in user's view of the document store.
// Every operation checks the session's permissions with security.Can before
// touching the files.Manager underneath:
//
//	List            always allowed
//	Open            read
//	Create, Save,
//	SetCell, AddRow,
//	AddColumn, AddStroke,
//	ClearDrawing    write
//	Delete          delete
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jeranaias/docvault/internal/auth"
	"github.com/jeranaias/docvault/internal/documents"
	"github.com/jeranaias/docvault/internal/files"
	"github.com/jeranaias/docvault/internal/logging"
	"github.com/jeranaias/docvault/internal/security"
)

// ErrPermissionDenied is wrapped by PermissionError.
var ErrPermissionDenied = errors.New("permission denied")

// PermissionError names the action the session lacks.
type PermissionError struct {
	Username string
	Action   security.Action
}

// Error implements the error interface.
func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s may not %s documents", e.Username, e.Action)
}

// Unwrap lets errors.Is match ErrPermissionDenied.
func (e *PermissionError) Unwrap() error { return ErrPermissionDenied }

// Entry is one row of the document list.
type Entry struct {
	Name    string            `json:"name"`
	Kind    documents.Kind    `json:"kind"`
	Size    int64             `json:"size"`
	ModTime time.Time         `json:"modified"`
	Actions []security.Action `json:"actions"`
}

// =============================================================================
// WORKSPACE
// =============================================================================

// Workspace binds a session to a document manager.
type Workspace struct {
	session *auth.Session
	files   *files.Manager
	logger  *slog.Logger
}

// New returns a workspace for session. A nil logger discards.
func New(session *auth.Session, fm *files.Manager, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Workspace{
		session: session,
		files:   fm,
		logger:  logger.With("user", session.Username),
	}
}

// Session returns the bound session.
func (w *Workspace) Session() *auth.Session {
	return w.session
}

// List returns every document with the actions this session may take on it.
// Files that disappear mid-listing are skipped.
func (w *Workspace) List() []Entry {
	allowed := security.Actions(w.session.Permissions)
	names := w.files.List()
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		info, err := w.files.Stat(name)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    name,
			Kind:    documents.KindOf(name),
			Size:    info.Size,
			ModTime: info.ModTime,
			Actions: allowed,
		})
	}
	return entries
}

// Open returns the body of name.
func (w *Workspace) Open(name string) (string, error) {
	if err := w.require(security.ActionRead); err != nil {
		return "", err
	}
	return w.files.Read(name)
}

// Create makes a new document of kind with its default content. The name
// gets the kind's extension when needed; the final name is returned.
func (w *Workspace) Create(name string, kind documents.Kind) (string, error) {
	if err := w.require(security.ActionWrite); err != nil {
		return "", err
	}
	name = documents.WithExtension(name, kind)
	if err := w.files.Create(name, documents.DefaultContent(kind)); err != nil {
		return name, err
	}
	return name, nil
}

// Save replaces the body of an existing document.
func (w *Workspace) Save(name, content string) error {
	if err := w.require(security.ActionWrite); err != nil {
		return err
	}
	return w.files.Edit(name, content)
}

// Delete removes a document.
func (w *Workspace) Delete(name string) error {
	if err := w.require(security.ActionDelete); err != nil {
		return err
	}
	return w.files.Remove(name)
}

// SetCell writes one spreadsheet cell and saves the sheet.
func (w *Workspace) SetCell(name string, row, col int, value string) error {
	return w.editSheet(name, func(sheet *documents.Spreadsheet) error {
		return sheet.Set(row, col, value)
	})
}

// AddRow appends an empty row to a spreadsheet.
func (w *Workspace) AddRow(name string) error {
	return w.editSheet(name, func(sheet *documents.Spreadsheet) error {
		sheet.AddRow()
		return nil
	})
}

// AddColumn appends an empty column to a spreadsheet.
func (w *Workspace) AddColumn(name string) error {
	return w.editSheet(name, func(sheet *documents.Spreadsheet) error {
		sheet.AddColumn()
		return nil
	})
}

// AddStroke appends a stroke to a drawing and saves it.
func (w *Workspace) AddStroke(name string, points []documents.Point) error {
	return w.editDrawing(name, func(drawing *documents.Drawing) error {
		if !drawing.AddStroke(points) {
			return errors.New("a stroke needs at least two points")
		}
		return nil
	})
}

// ClearDrawing removes every stroke from a drawing.
func (w *Workspace) ClearDrawing(name string) error {
	return w.editDrawing(name, func(drawing *documents.Drawing) error {
		drawing.Clear()
		return nil
	})
}

// editSheet reads a spreadsheet, applies fn and saves it. Requires write.
func (w *Workspace) editSheet(name string, fn func(*documents.Spreadsheet) error) error {
	if err := w.require(security.ActionWrite); err != nil {
		return err
	}
	if documents.KindOf(name) != documents.KindSpreadsheet {
		return fmt.Errorf("%q is not a spreadsheet", name)
	}
	content, err := w.files.Read(name)
	if err != nil {
		return err
	}

	sheet := documents.ParseSpreadsheet(content)
	if err := fn(sheet); err != nil {
		return err
	}
	out, err := sheet.Marshal()
	if err != nil {
		return err
	}
	return w.files.Edit(name, out)
}

// editDrawing reads a drawing, applies fn and saves it. Requires write.
func (w *Workspace) editDrawing(name string, fn func(*documents.Drawing) error) error {
	if err := w.require(security.ActionWrite); err != nil {
		return err
	}
	if documents.KindOf(name) != documents.KindDrawing {
		return fmt.Errorf("%q is not a drawing", name)
	}
	content, err := w.files.Read(name)
	if err != nil {
		return err
	}

	drawing := documents.ParseDrawing(content)
	if err := fn(drawing); err != nil {
		return err
	}
	out, err := drawing.Marshal()
	if err != nil {
		return err
	}
	return w.files.Edit(name, out)
}

func (w *Workspace) require(action security.Action) error {
	if security.Can(w.session.Permissions, action) {
		return nil
	}
	w.logger.Warn("action denied", "action", string(action))
	return &PermissionError{Username: w.session.Username, Action: action}
}

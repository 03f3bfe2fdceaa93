// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package files

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/docvault/internal/logging"
	"github.com/jeranaias/docvault/internal/util"
)

// FilePerm is the mode of documents written by the manager.
const FilePerm = 0600

// tempPrefix marks util.AtomicWriteFile scratch files.
const tempPrefix = ".tmp-"

// Info is what the filesystem knows about a document.
type Info struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager stores documents as plain files in a single directory.
type Manager struct {
	dir    string
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for trace lines and swallowed list errors.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// New returns a manager for dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Manager, error) {
	m := &Manager{dir: dir, logger: logging.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	if err := os.MkdirAll(dir, util.DirPerm); err != nil {
		return nil, fmt.Errorf("create document directory: %w", err)
	}
	m.logger.Debug("document directory ready", "dir", dir)
	return m, nil
}

// Dir returns the document directory.
func (m *Manager) Dir() string {
	return m.dir
}

// ValidateName rejects empty names and names containing "..", "/" or "\".
func ValidateName(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// =============================================================================
// OPERATIONS
// =============================================================================

// List returns the sorted names of the files in the directory. Errors are
// logged and yield an empty list.
func (m *Manager) List() []string {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		m.logger.Error("failed to list documents", "dir", m.dir, "error", err)
		return []string{}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// Create writes a new file. It never overwrites.
func (m *Manager) Create(name, content string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	f, err := os.OpenFile(m.path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %q", ErrAlreadyExists, name)
		}
		return opError("create", name, err)
	}

	_, werr := f.WriteString(content)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		os.Remove(m.path(name))
		return opError("create", name, errors.Join(werr, cerr))
	}

	m.logger.Info("document created", "name", name, "bytes", len(content))
	return nil
}

// Read returns the whole file body.
func (m *Manager) Read(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	data, err := os.ReadFile(m.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return "", opError("read", name, err)
	}

	m.logger.Debug("document read", "name", name, "bytes", len(data))
	return string(data), nil
}

// Edit replaces the body of an existing file. It never creates.
func (m *Manager) Edit(name, content string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, err := m.statFile(name); err != nil {
		return m.statError("edit", name, err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(m.path(name), []byte(content), FilePerm); err != nil {
		return opError("edit", name, err)
	}

	m.logger.Info("document saved", "name", name, "bytes", len(content))
	return nil
}

// Remove deletes a file.
func (m *Manager) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, err := m.statFile(name); err != nil {
		return m.statError("remove", name, err)
	}

	if err := os.Remove(m.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return opError("remove", name, err)
	}

	m.logger.Info("document removed", "name", name)
	return nil
}

// Stat returns size and modification time.
func (m *Manager) Stat(name string) (Info, error) {
	if err := ValidateName(name); err != nil {
		return Info{}, err
	}
	fi, err := m.statFile(name)
	if err != nil {
		return Info{}, m.statError("stat", name, err)
	}
	return Info{Name: name, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// Exists reports whether name is a valid, existing file.
func (m *Manager) Exists(name string) bool {
	_, err := m.Stat(name)
	return err == nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Manager) path(name string) string {
	return filepath.Join(m.dir, name)
}

// statFile treats a directory as a missing file.
func (m *Manager) statFile(name string) (fs.FileInfo, error) {
	fi, err := os.Stat(m.path(name))
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fs.ErrNotExist
	}
	return fi, nil
}

func (m *Manager) statError(op, name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return opError(op, name, err)
}

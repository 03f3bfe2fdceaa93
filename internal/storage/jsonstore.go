// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/jeranaias/docvault/internal/logging"
	"github.com/jeranaias/docvault/internal/util"
)

// FilePerm is the mode of every store file. Stores hold password hashes.
const FilePerm = 0600

const maxBackupsPerSecond = 1000

// =============================================================================
// OPTIONS
// =============================================================================

// Option configures a JSONStore.
type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger sets the logger used for recovery and I/O warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the clock used to name backup files.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// =============================================================================
// JSON STORE
// =============================================================================

// JSONStore persists a map[string]T as a single indented JSON object.
// All methods are safe for concurrent use within one process.
type JSONStore[T any] struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewJSONStore returns a store backed by path. Nothing is touched on disk
// until the first Load or Save.
func NewJSONStore[T any](path string, opts ...Option) *JSONStore[T] {
	o := options{logger: logging.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &JSONStore[T]{
		path:   path,
		logger: o.logger.With("store", path),
		now:    o.now,
	}
}

// Path returns the backing file.
func (s *JSONStore[T]) Path() string {
	return s.path
}

// Load reads the whole map. It never fails; see the package doc for how
// missing and corrupt files are handled.
func (s *JSONStore[T]) Load() map[string]T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save replaces the file contents with m.
func (s *JSONStore[T]) Save(m map[string]T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(m)
}

// Update loads the map, applies fn and saves the result while holding the
// store lock. If fn returns an error nothing is written.
func (s *JSONStore[T]) Update(fn func(map[string]T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.loadLocked()
	if err := fn(m); err != nil {
		return err
	}
	return s.saveLocked(m)
}

// =============================================================================
// INTERNALS
// =============================================================================

func (s *JSONStore[T]) loadLocked() map[string]T {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.resetLocked()
			return map[string]T{}
		}
		s.logger.Error("failed to read store", "error", err)
		return map[string]T{}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		s.resetLocked()
		return map[string]T{}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.recoverCorruptLocked(data, err)
		return map[string]T{}
	}

	m := make(map[string]T, len(raw))
	var unreadable []string
	for key, value := range raw {
		var item T
		if err := json.Unmarshal(value, &item); err != nil {
			s.logger.Warn("dropping unreadable record", "key", key, "error", err)
			unreadable = append(unreadable, key)
			continue
		}
		m[key] = item
	}
	if len(unreadable) > 0 {
		slices.Sort(unreadable)
		s.salvageLocked(data, m, unreadable)
	}
	return m
}

// recoverCorruptLocked backs up an unparsable file and starts over. If the
// backup cannot be written the file is left in place, never overwritten.
func (s *JSONStore[T]) recoverCorruptLocked(data []byte, cause error) {
	backup, err := s.writeBackupLocked(data)
	if err != nil {
		s.logger.Error("store is corrupt and could not be backed up", "parse_error", cause, "error", err)
		return
	}
	s.logger.Warn("store was corrupt, backed up and reset", "backup", backup, "parse_error", cause)
	s.resetLocked()
}

// salvageLocked backs up a file with unreadable records and rewrites it
// with the records that decoded.
func (s *JSONStore[T]) salvageLocked(data []byte, m map[string]T, unreadable []string) {
	backup, err := s.writeBackupLocked(data)
	if err != nil {
		s.logger.Error("store has unreadable records and could not be backed up", "keys", unreadable, "error", err)
		return
	}
	s.logger.Warn("store had unreadable records, backed up and rewritten", "backup", backup, "keys", unreadable)
	if err := s.saveLocked(m); err != nil {
		s.logger.Error("failed to rewrite store", "error", err)
	}
}

// writeBackupLocked writes data to the first free "<file>.bak.<epoch>" name,
// adding ".1", ".2" and so on when earlier backups share the second.
func (s *JSONStore[T]) writeBackupLocked(data []byte) (string, error) {
	base := util.BackupPath(s.path, s.now())
	for i := 0; i < maxBackupsPerSecond; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s.%d", base, i)
		}
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePerm)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create backup: %w", err)
		}
		_, werr := f.Write(data)
		serr := f.Sync()
		if err := errors.Join(werr, serr, f.Close()); err != nil {
			os.Remove(name)
			return "", fmt.Errorf("write backup %s: %w", name, err)
		}
		return name, nil
	}
	return "", fmt.Errorf("no free backup name for %s", base)
}

func (s *JSONStore[T]) resetLocked() {
	if err := s.saveLocked(map[string]T{}); err != nil {
		s.logger.Error("failed to initialise store", "error", err)
	}
}

func (s *JSONStore[T]) saveLocked(m map[string]T) error {
	if m == nil {
		m = map[string]T{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(s.path, buf.Bytes(), FilePerm); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	return nil
}

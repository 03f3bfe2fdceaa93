// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(filepath.Join(t.TempDir(), "files"))
	require.NoError(t, err)
	return m
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"plain", "notes.txt", true},
		{"spaces", "my drawing.draw", true},
		{"unicode", "relatório.sheet", true},
		{"single dot prefix", ".hidden", true},
		{"empty", "", false},
		{"parent", "..", false},
		{"embedded dotdot", "a..b", false},
		{"slash", "a/b", false},
		{"traversal", "../etc/passwd", false},
		{"backslash", `a\b`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidName)
			}
		})
	}
}

func TestInvalidNameRejectedEverywhere(t *testing.T) {
	m := newTestManager(t)
	bad := "../escape.txt"

	assert.ErrorIs(t, m.Create(bad, "x"), ErrInvalidName)
	_, err := m.Read(bad)
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, m.Edit(bad, "x"), ErrInvalidName)
	assert.ErrorIs(t, m.Remove(bad), ErrInvalidName)
	_, err = m.Stat(bad)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = os.Stat(filepath.Join(filepath.Dir(m.Dir()), "escape.txt"))
	assert.True(t, os.IsNotExist(err), "nothing written outside the directory")
}

// =============================================================================
// CRUD
// =============================================================================

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	_, err := New(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLifecycle(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Create("a.txt", "hi"))
	assert.Equal(t, []string{"a.txt"}, m.List())

	got, err := m.Read("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	assert.ErrorIs(t, m.Create("a.txt", "again"), ErrAlreadyExists)
	got, _ = m.Read("a.txt")
	assert.Equal(t, "hi", got, "create must never overwrite")

	require.NoError(t, m.Edit("a.txt", "bye"))
	got, _ = m.Read("a.txt")
	assert.Equal(t, "bye", got)

	require.NoError(t, m.Remove("a.txt"))
	assert.Empty(t, m.List())

	_, err = m.Read("a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditNeverCreates(t *testing.T) {
	m := newTestManager(t)

	assert.ErrorIs(t, m.Edit("new.txt", "x"), ErrNotFound)
	assert.False(t, m.Exists("new.txt"))
	assert.Empty(t, m.List())
}

func TestRemoveMissing(t *testing.T) {
	m := newTestManager(t)
	assert.ErrorIs(t, m.Remove("ghost.txt"), ErrNotFound)
}

func TestCreateEmptyContent(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Create("empty.txt", ""))

	got, err := m.Read("empty.txt")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestListSortedAndSkipsDirectories(t *testing.T) {
	m := newTestManager(t)
	for _, name := range []string{"c.sheet", "a.txt", "b.draw"} {
		require.NoError(t, m.Create(name, ""))
	}
	require.NoError(t, os.Mkdir(filepath.Join(m.Dir(), "subdir"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(m.Dir(), ".tmp-123"), nil, 0600))

	assert.Equal(t, []string{"a.txt", "b.draw", "c.sheet"}, m.List())

	_, err := m.Read("subdir")
	assert.Error(t, err)
	assert.ErrorIs(t, m.Remove("subdir"), ErrNotFound)
}

func TestListMissingDirectory(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.RemoveAll(m.Dir()))

	got := m.List()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStat(t *testing.T) {
	m := newTestManager(t)
	before := time.Now().Add(-time.Second)
	require.NoError(t, m.Create("s.txt", "12345"))

	info, err := m.Stat("s.txt")
	require.NoError(t, err)
	assert.Equal(t, "s.txt", info.Name)
	assert.Equal(t, int64(5), info.Size)
	assert.True(t, info.ModTime.After(before))

	_, err = m.Stat("missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestErrorWrapsCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := opError("edit", "a.txt", cause)

	var fe *Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "edit", fe.Op)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `edit "a.txt": disk on fire`, err.Error())
}

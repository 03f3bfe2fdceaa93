// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// waitFor drains events until one matches or the deadline passes.
func waitFor(t *testing.T, w *Watcher, want Event) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %+v", want)
		}
	}
}

func TestWatcher_ReportsExternalChanges(t *testing.T) {
	m := newTestManager(t)
	w, err := NewWatcher(m, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(m.Dir(), "outside.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
	waitFor(t, w, Event{Name: "outside.txt", Kind: Changed})

	require.NoError(t, os.Remove(path))
	waitFor(t, w, Event{Name: "outside.txt", Kind: Removed})
}

func TestWatcher_CloseClosesEvents(t *testing.T) {
	m := newTestManager(t)
	w, err := NewWatcher(m, 0)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	require.False(t, ok)
}

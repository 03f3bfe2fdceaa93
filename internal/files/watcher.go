// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package files

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/docvault/internal/logging"
)

// DefaultDebounce coalesces bursts of events for the same file.
const DefaultDebounce = 200 * time.Millisecond

// ChangeKind says what happened to a document.
type ChangeKind string

const (
	// Changed covers creation and writes.
	Changed ChangeKind = "changed"

	// Removed covers deletion and renames away.
	Removed ChangeKind = "removed"
)

// Event is one debounced change to a document.
type Event struct {
	Name string
	Kind ChangeKind
}

// =============================================================================
// WATCHER
// =============================================================================

// Watcher reports document changes in a Manager's directory using fsnotify.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
	events   chan Event

	mu      sync.Mutex
	pending map[string]pendingChange

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type pendingChange struct {
	kind ChangeKind
	at   time.Time
}

// NewWatcher starts watching m's directory. Call Close to stop.
func NewWatcher(m *Manager, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(m.Dir()); err != nil {
		fsw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher:  fsw,
		debounce: debounce,
		logger:   m.logger,
		events:   make(chan Event, 64),
		pending:  make(map[string]pendingChange),
		ctx:      ctx,
		cancel:   cancel,
	}
	if w.logger == nil {
		w.logger = logging.Discard()
	}

	w.wg.Add(2)
	go w.processEvents()
	go w.processPending()
	return w, nil
}

// Events delivers debounced changes. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops watching and closes the Events channel.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	close(w.events)
	return err
}

// =============================================================================
// EVENT LOOP
// =============================================================================

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("document watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, tempPrefix) || ValidateName(name) != nil {
		return
	}

	var kind ChangeKind
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		kind = Removed
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		kind = Changed
	default:
		return
	}

	w.mu.Lock()
	w.pending[name] = pendingChange{kind: kind, at: time.Now()}
	w.mu.Unlock()
}

// processPending emits changes once they have been quiet for the debounce window.
func (w *Watcher) processPending() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			var ready []Event
			w.mu.Lock()
			for name, p := range w.pending {
				if now.Sub(p.at) >= w.debounce {
					ready = append(ready, Event{Name: name, Kind: p.kind})
					delete(w.pending, name)
				}
			}
			w.mu.Unlock()

			for _, ev := range ready {
				select {
				case w.events <- ev:
				case <-w.ctx.Done():
					return
				}
			}
		}
	}
}

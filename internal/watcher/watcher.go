// Package watcher monitors media directories and triggers library rescans
// when files or transcripts change.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/voxgrep/voxgrep/internal/library"
	"github.com/voxgrep/voxgrep/internal/transcript"
)

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
)

type Watcher interface {
	Watch(ctx context.Context, path string) error
	Stop() error
	OnChange(callback func(path string, event EventType))
}

// FSWatcher watches directories with fsnotify, firing the callback for
// media and transcript files. Events are debounced per path so a file
// being written in chunks produces one callback.
type FSWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu       sync.Mutex
	callback func(path string, event EventType)
	pending  map[string]*time.Timer
}

func NewFSWatcher(logger *slog.Logger) (*FSWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FSWatcher{
		watcher:  fw,
		logger:   logger,
		debounce: 2 * time.Second,
		pending:  make(map[string]*time.Timer),
	}, nil
}

func (w *FSWatcher) OnChange(callback func(path string, event EventType)) {
	w.mu.Lock()
	w.callback = callback
	w.mu.Unlock()
}

// Watch adds path to the watch set and blocks processing events until the
// context is cancelled.
func (w *FSWatcher) Watch(ctx context.Context, path string) error {
	if err := w.watcher.Add(path); err != nil {
		return err
	}
	w.logger.Info("watching directory", "path", path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *FSWatcher) Stop() error {
	w.mu.Lock()
	for _, t := range w.pending {
		t.Stop()
	}
	w.pending = make(map[string]*time.Timer)
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *FSWatcher) handleEvent(event fsnotify.Event) {
	if !isRelevantFile(event.Name) {
		return
	}

	var et EventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		et = EventCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		et = EventModify
	case event.Op&fsnotify.Remove == fsnotify.Remove,
		event.Op&fsnotify.Rename == fsnotify.Rename:
		et = EventDelete
	default:
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[event.Name]; ok {
		timer.Stop()
	}
	path := event.Name
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		cb := w.callback
		w.mu.Unlock()

		if cb != nil {
			cb(path, et)
		}
	})
}

// isRelevantFile reports whether a change to path should trigger a rescan:
// media files and the transcript sidecars that pair with them.
func isRelevantFile(path string) bool {
	if library.IsMediaFile(path) {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range transcript.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

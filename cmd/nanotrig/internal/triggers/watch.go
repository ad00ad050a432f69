// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package triggers

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lourdesurda/ZZAnalysis/pkg/logging"
)

// debounceDelay coalesces the event bursts editors produce on save.
const debounceDelay = 250 * time.Millisecond

// Watcher watches a trigger list file and invokes a callback when it
// changes.
//
// # Description
//
// Watch mode re-runs an analysis whenever the physicist edits the trigger
// list. Editors typically replace the file (write to temp, rename over),
// so the watcher monitors the parent directory and filters events for the
// list file itself.
//
// # Thread Safety
//
// Start should only be called once. The callback runs on the watcher
// goroutine; it must return before the next change can be delivered.
type Watcher struct {
	path     string
	log      *logging.Logger
	onChange func()
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for the trigger list at path. The callback
// fires after changes settle for debounceDelay.
func NewWatcher(path string, log *logging.Logger, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve trigger list path: %w", err)
	}

	return &Watcher{
		path:     abs,
		log:      log,
		onChange: onChange,
		watcher:  fsw,
	}, nil
}

// Start begins watching and blocks until the context is cancelled. Run it
// in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.watcher.Close()

	// Watch the directory: rename-over saves never touch the old inode.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.log.Debug("watching trigger list", "path", w.path)

	var debounce *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("trigger list changed", "op", event.Op.String())
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, w.onChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("trigger list watcher error", "error", err)

		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return ctx.Err()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename)
}

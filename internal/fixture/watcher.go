// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package fixture

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultReloadDebounce coalesces the burst of events an editor save makes.
const DefaultReloadDebounce = 200 * time.Millisecond

// =============================================================================
// SCRIPT WATCHER
// =============================================================================

// ScriptWatcher reloads a script file when it changes. A file that fails to
// parse is logged and the previous script stays in use.
type ScriptWatcher struct {
	path     string
	debounce time.Duration
	onLoad   func(*Script)
	logger   *zap.Logger

	watcher *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
}

// NewScriptWatcher watches path. The parent directory is watched so saves
// that replace the file by rename are seen too.
func NewScriptWatcher(path string, debounce time.Duration, onLoad func(*Script), logger *zap.Logger) (*ScriptWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultReloadDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &ScriptWatcher{
		path:     abs,
		debounce: debounce,
		onLoad:   onLoad,
		logger:   logger,
		watcher:  watcher,
	}, nil
}

// Run processes events until ctx is done, then closes the watcher.
func (sw *ScriptWatcher) Run(ctx context.Context) {
	defer sw.watcher.Close()
	defer sw.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != sw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				sw.schedule()
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warn("script watcher error", zap.Error(err))
		}
	}
}

// schedule (re)arms the debounce timer.
func (sw *ScriptWatcher) schedule() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.timer = time.AfterFunc(sw.debounce, sw.reload)
}

func (sw *ScriptWatcher) stopTimer() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.timer != nil {
		sw.timer.Stop()
	}
}

func (sw *ScriptWatcher) reload() {
	script, err := LoadScript(sw.path)
	if err != nil {
		sw.logger.Warn("script reload failed, keeping previous script",
			zap.String("path", sw.path), zap.Error(err))
		return
	}
	sw.logger.Info("script reloaded",
		zap.String("path", sw.path), zap.Int("entries", len(script.Entries)))
	sw.onLoad(script)
}

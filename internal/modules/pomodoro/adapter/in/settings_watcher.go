package in

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	pomodoroin "pomo/internal/modules/pomodoro/port/in"
)

const defaultSettingsDebounce = 200 * time.Millisecond

// SettingsWatcher reloads the timer config whenever the settings file is
// written. Editors that save by rename are covered because the parent
// directory is watched rather than the file itself.
type SettingsWatcher struct {
	usecase  pomodoroin.Usecase
	path     string
	debounce time.Duration
	logger   *zap.Logger
}

func NewSettingsWatcher(usecase pomodoroin.Usecase, path string, logger *zap.Logger) *SettingsWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsWatcher{
		usecase:  usecase,
		path:     filepath.Clean(path),
		debounce: defaultSettingsDebounce,
		logger:   logger,
	}
}

// WithDebounce overrides how long the watcher waits for writes to settle.
func (w *SettingsWatcher) WithDebounce(d time.Duration) *SettingsWatcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Run blocks until ctx is cancelled.
func (w *SettingsWatcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Debug("watching settings", zap.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("settings watcher error", zap.Error(err))
		case <-timer.C:
			status, err := w.usecase.ReloadSettings(ctx)
			if err != nil {
				w.logger.Warn("reload settings failed", zap.String("path", w.path), zap.Error(err))
				continue
			}
			w.logger.Info("settings reloaded",
				zap.Duration("work", status.WorkDuration),
				zap.Duration("break", status.BreakDuration),
				zap.Duration("long_break", status.LongBreakDuration),
				zap.Int("sessions_before_long_break", status.SessionsBeforeLongBreak))
		}
	}
}

package internal

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// watchConfig reloads the config file at path whenever it changes and
// applies its log level to level. Only the log level is hot; everything
// else needs a restart. It blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file itself so that
// editors which save by rename keep being tracked.
func watchConfig(ctx context.Context, path string, o Overrides, level *slog.LevelVar, logger *slog.Logger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("config reloader: started", slog.String("path", abs))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(reloadDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(reloadDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("config reloader: stopped")
			return nil

		case <-timerCh:
			reloadLevel(abs, o, level, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config reloader: error", slog.String("error", werr.Error()))
		}
	}
}

func reloadLevel(path string, o Overrides, level *slog.LevelVar, logger *slog.Logger) {
	cfg, found, err := LoadConfig(path, o)
	if err != nil {
		logger.Warn("config reloader: keeping previous settings", slog.String("error", err.Error()))
		return
	}
	if !found {
		return
	}
	if cfg.App.LogLevel == level.Level() {
		return
	}
	logger.Info("config reloader: log level changed",
		slog.String("from", level.Level().String()),
		slog.String("to", cfg.App.LogLevel.String()))
	level.Set(cfg.App.LogLevel)
}

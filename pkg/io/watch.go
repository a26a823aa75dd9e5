package io

import (
	"context"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/scalelist/pkg/node"
)

// Watch monitors the node file at path and calls onChange with the freshly
// imported inputs each time the file is written. It runs until ctx is
// cancelled.
//
// The parent directory is watched rather than the file itself so that editors
// which save by renaming a temporary file are picked up. If a reload fails
// (for example, invalid YAML), the error is logged and onChange is not called.
func Watch(ctx context.Context, path string, logger *log.Logger, onChange func(node.Inputs)) error {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	logger.Info("watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			in, err := ImportNode(target)
			if err != nil {
				logger.Error("reload failed, keeping previous inputs", "path", path, "err", err)
				continue
			}

			logger.Debug("reloaded", "path", path, "items", len(in.List))
			onChange(in)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "err", err)
		}
	}
}

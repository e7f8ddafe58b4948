package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DocumentWatcher monitors the document fixture for changes and
// triggers reloads. The containing directory is watched rather than
// the file itself so editors that replace-on-save still register.
type DocumentWatcher struct {
	docPath      string
	onChange     func()
	watcher      *fsnotify.Watcher
	stopChan     chan struct{}
	reloadChan   chan struct{}
	debounceTime time.Duration
}

// NewDocumentWatcher creates a watcher calling onChange after the
// document file changes.
func NewDocumentWatcher(docPath string, onChange func()) (*DocumentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(docPath)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve document path: %w", err)
	}

	return &DocumentWatcher{
		docPath:      absPath,
		onChange:     onChange,
		watcher:      watcher,
		stopChan:     make(chan struct{}),
		reloadChan:   make(chan struct{}, 1),
		debounceTime: time.Second,
	}, nil
}

// Start begins monitoring the document file.
func (dw *DocumentWatcher) Start(ctx context.Context) error {
	docDir := filepath.Dir(dw.docPath)
	if err := dw.watcher.Add(docDir); err != nil {
		return fmt.Errorf("failed to watch document directory %s: %w", docDir, err)
	}

	slog.Info("watching document", "path", dw.docPath)
	go dw.watchLoop(ctx)
	go dw.reloadLoop(ctx)
	return nil
}

// Stop stops the watcher.
func (dw *DocumentWatcher) Stop() {
	close(dw.stopChan)
	if err := dw.watcher.Close(); err != nil {
		slog.Error("error closing file watcher", "error", err)
	}
}

func (dw *DocumentWatcher) watchLoop(ctx context.Context) {
	docFile := filepath.Base(dw.docPath)
	for {
		select {
		case <-ctx.Done():
			return
		case <-dw.stopChan:
			return
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != docFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("document change detected", "op", event.Op.String())
			select {
			case dw.reloadChan <- struct{}{}:
			default:
			}
		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("file watcher error", "error", err)
		}
	}
}

// reloadLoop debounces rapid change bursts into one reload.
func (dw *DocumentWatcher) reloadLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-dw.stopChan:
			return
		case <-dw.reloadChan:
			timer := time.NewTimer(dw.debounceTime)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-dw.stopChan:
				timer.Stop()
				return
			case <-timer.C:
				// Collapse changes that raced in during the window.
				select {
				case <-dw.reloadChan:
				default:
				}
				dw.onChange()
			}
		}
	}
}

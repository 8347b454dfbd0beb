package source

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// eventChannelBuffer is the size of the watch event channel.
const eventChannelBuffer = 500

// WatchConfig configures catalog file watching.
type WatchConfig struct {
	// DebounceDelay is how long to wait for more changes before emitting.
	DebounceDelay string `yaml:"debounce_delay"`

	// FileExtensions lists file extensions to watch.
	FileExtensions []string `yaml:"file_extensions"`

	// ExcludeDirs lists directory names to skip.
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// DefaultWatchConfig returns default watch configuration.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		DebounceDelay:  "500ms",
		FileExtensions: []string{".json"},
		ExcludeDirs:    []string{".git"},
	}
}

// GetDebounceDelay returns the debounce delay as a duration.
func (c *WatchConfig) GetDebounceDelay() time.Duration {
	d, err := time.ParseDuration(c.DebounceDelay)
	if err != nil || c.DebounceDelay == "" {
		return 500 * time.Millisecond
	}
	return d
}

// WatchEvent is one catalog file change.
type WatchEvent struct {
	// Path is the file path relative to the watched directory.
	Path string

	// Operation is the type of change.
	Operation WatchOperation

	// AbsPath is the absolute file path.
	AbsPath string
}

// WatchOperation indicates the type of file operation.
type WatchOperation string

// WatchOpCreate, WatchOpModify and WatchOpDelete enumerate the watch
// operation types.
const (
	WatchOpCreate WatchOperation = "create"
	WatchOpModify WatchOperation = "modify"
	WatchOpDelete WatchOperation = "delete"
)

// Watcher watches a directory of catalog files and emits debounced change
// events.
type Watcher struct {
	config     WatchConfig
	watchDir   string
	watcher    *fsnotify.Watcher
	logger     *slog.Logger
	extensions map[string]bool
	excludes   map[string]bool

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	events chan WatchEvent
}

// NewWatcher creates a catalog file watcher for dir.
func NewWatcher(config WatchConfig, dir string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	extensions := map[string]bool{}
	if len(config.FileExtensions) == 0 {
		extensions[".json"] = true
	}
	for _, ext := range config.FileExtensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[ext] = true
	}

	excludes := map[string]bool{}
	for _, d := range config.ExcludeDirs {
		excludes[d] = true
	}

	return &Watcher{
		config:     config,
		watchDir:   dir,
		watcher:    fsw,
		logger:     logger,
		extensions: extensions,
		excludes:   excludes,
		pending:    map[string]fsnotify.Op{},
		events:     make(chan WatchEvent, eventChannelBuffer),
	}, nil
}

// Events returns the channel of watch events.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Start begins watching the directory for changes.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.watchDir, 0o755); err != nil {
		return err
	}
	if err := w.addWatchesRecursive(w.watchDir); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("catalog watcher started",
		"dir", w.watchDir,
		"debounce", w.config.GetDebounceDelay(),
		"extensions", w.config.FileExtensions)
	return nil
}

// Stop stops the watcher. The events channel is closed by processEvents
// when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if w.excludes[base] || (strings.HasPrefix(base, ".") && path != root) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.config.GetDebounceDelay())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	ext := strings.ToLower(filepath.Ext(path))
	if !w.extensions[ext] {
		// new directories need their own watch
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				w.handleNewDirectory(path)
			}
		}
		return
	}

	relPath, _ := filepath.Rel(w.watchDir, path)
	for excludeDir := range w.excludes {
		if strings.Contains(relPath, excludeDir+string(filepath.Separator)) {
			return
		}
	}

	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("catalog change detected", "path", relPath, "op", event.Op.String())
}

func (w *Watcher) handleNewDirectory(path string) {
	base := filepath.Base(path)
	if w.excludes[base] || strings.HasPrefix(base, ".") {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("failed to watch new directory", "path", path, "error", err)
	}
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = map[string]fsnotify.Op{}
	w.pendingMu.Unlock()

	for path, op := range toProcess {
		select {
		case <-ctx.Done():
			return
		default:
		}

		relPath, _ := filepath.Rel(w.watchDir, path)
		event := WatchEvent{Path: relPath, AbsPath: path}
		switch {
		case op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename):
			event.Operation = WatchOpDelete
		case op.Has(fsnotify.Create):
			event.Operation = WatchOpCreate
		default:
			event.Operation = WatchOpModify
		}

		select {
		case w.events <- event:
		default:
			w.logger.Warn("watch event dropped, channel full", "path", relPath)
		}
	}
}

// Package watch decodes activity documents from a directory tree and keeps
// decoding them as files change.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/semactivity/codec"
	"github.com/c360studio/semactivity/document"
)

// DefaultPattern selects the files decoded by default.
const DefaultPattern = "**/*.json"

// WatcherConfig configures the file watcher
type WatcherConfig struct {
	// Root is the root directory to watch
	Root string

	// Pattern is a doublestar glob, relative to Root, selecting document files
	Pattern string

	// DebounceDelay is how long to wait for more changes before processing
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// WatchEvent represents a file change event
type WatchEvent struct {
	// Path is the file path relative to Root
	Path string

	// Operation is the type of change
	Operation WatchOperation

	// Document is the decoded document (nil for deletes and failures)
	Document document.Typed

	// Error if decoding failed
	Error error
}

// WatchOperation indicates the type of file operation
type WatchOperation string

const (
	OpCreate WatchOperation = "create"
	OpModify WatchOperation = "modify"
	OpDelete WatchOperation = "delete"
)

// Watcher watches for document file changes and emits decode results
type Watcher struct {
	config  WatcherConfig
	codec   *codec.Codec
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op // path → most recent operation

	hashMu sync.RWMutex
	hashes map[string]string // relative path → content hash

	events chan WatchEvent
}

// NewWatcher creates a new file watcher decoding with c
func NewWatcher(c *codec.Codec, config WatcherConfig) (*Watcher, error) {
	if config.Pattern == "" {
		config.Pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(config.Pattern) {
		return nil, fmt.Errorf("invalid pattern: %s", config.Pattern)
	}
	if config.DebounceDelay == 0 {
		config.DebounceDelay = 100 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		config:  config,
		codec:   c,
		watcher: fsw,
		logger:  logger,
		pending: make(map[string]fsnotify.Op),
		hashes:  make(map[string]string),
		events:  make(chan WatchEvent, 100),
	}, nil
}

// Events returns the channel of watch events
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Start begins watching Root for changes
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.config.Root); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("File watcher started",
		slog.String("root", w.config.Root),
		slog.String("pattern", w.config.Pattern),
		slog.Duration("debounce", w.config.DebounceDelay))

	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Scan decodes every file matching the pattern and records its hash, so
// later events only fire for real content changes.
func (w *Watcher) Scan(ctx context.Context) ([]WatchEvent, error) {
	paths, err := Glob(w.config.Root, w.config.Pattern)
	if err != nil {
		return nil, err
	}
	out := make([]WatchEvent, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		event, _ := w.decode(path, OpCreate)
		out = append(out, event)
	}
	return out, nil
}

// Glob returns the files under root matching a doublestar pattern.
func Glob(root, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	return out, nil
}

// SetHash records the hash for a file
func (w *Watcher) SetHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

// GetHash returns the recorded hash for a file
func (w *Watcher) GetHash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// matches reports whether path is selected by the pattern.
func (w *Watcher) matches(path string) bool {
	ok, _ := doublestar.Match(w.config.Pattern, w.rel(path))
	return ok
}

func skipDir(path, root string) bool {
	base := filepath.Base(path)
	return path != root && strings.HasPrefix(base, ".")
}

// addWatchesRecursive adds watches to all directories
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skipDir(path, root) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				slog.String("path", path),
				slog.String("error", err.Error()))
		} else {
			w.logger.Debug("Watching directory", slog.String("path", path))
		}
		return nil
	})
}

// processEvents handles fsnotify events with debouncing
func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()
	defer close(w.events)

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
			w.logger.Error("Watcher error", slog.String("error", err.Error()))

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

// handleFSEvent processes a single fsnotify event
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
	}
	if !w.matches(path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("File change detected",
		slog.String("path", w.rel(path)),
		slog.String("op", event.Op.String()))
}

// handleNewDirectory adds a watch to a newly created directory
func (w *Watcher) handleNewDirectory(path string) {
	if skipDir(path, w.config.Root) {
		return
	}
	if err := w.addWatchesRecursive(path); err != nil {
		w.logger.Warn("Failed to watch new directory",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}

// flushPending processes accumulated changes
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range toProcess {
		select {
		case <-ctx.Done():
			return
		default:
		}

		relPath := w.rel(path)

		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			w.forget(relPath)
			w.sendEvent(WatchEvent{Path: relPath, Operation: OpDelete})
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			w.forget(relPath)
			w.sendEvent(WatchEvent{Path: relPath, Operation: OpDelete})
			continue
		}

		_, hadHash := w.GetHash(relPath)
		operation := OpModify
		if op.Has(fsnotify.Create) || !hadHash {
			operation = OpCreate
		}
		event, changed := w.decode(path, operation)
		if !changed {
			continue
		}
		w.sendEvent(event)
	}
}

// decode reads and decodes one file. changed is false when the content hash
// matches the last successfully decoded one.
func (w *Watcher) decode(path string, op WatchOperation) (WatchEvent, bool) {
	relPath := w.rel(path)
	event := WatchEvent{Path: relPath, Operation: op}

	data, err := os.ReadFile(path)
	if err != nil {
		event.Error = err
		return event, true
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	if old, ok := w.GetHash(relPath); ok && old == hash {
		return event, false
	}

	doc, err := w.codec.Decode(data, nil)
	if err != nil {
		event.Error = err
		return event, true
	}
	w.SetHash(relPath, hash)
	event.Document = doc
	return event, true
}

func (w *Watcher) forget(relPath string) {
	w.hashMu.Lock()
	delete(w.hashes, relPath)
	w.hashMu.Unlock()
}

// sendEvent sends an event to the output channel
func (w *Watcher) sendEvent(event WatchEvent) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event",
			slog.String("path", event.Path),
			slog.String("op", string(event.Operation)))
	default:
		w.logger.Warn("Event channel full, dropping event",
			slog.String("path", event.Path))
	}
}

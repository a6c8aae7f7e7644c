// Package watcher ingests text files from a directory into a project and
// keeps them current as files are created, modified or removed.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/logger"
	"github.com/custodia-labs/ragkit/internal/normalisers"
)

// DefaultDebounce is how long a file must be quiet before it is ingested.
// Editors usually emit several writes per save.
const DefaultDebounce = 300 * time.Millisecond

// DefaultExtensions are the file types ingested when none are configured.
var DefaultExtensions = []string{".txt", ".md"}

// Config controls a Watcher.
type Config struct {
	// Dir is the directory to watch. Subdirectories are not watched.
	Dir string

	// ProjectID receives the ingested documents.
	ProjectID string

	// ProviderID embeds the documents.
	ProviderID string

	// Extensions lists the file suffixes to ingest, including the dot.
	Extensions []string

	// Debounce delays ingestion until a file has been quiet this long.
	Debounce time.Duration

	// Extractor turns file content into text. Defaults to normalisers.Default().
	Extractor driven.NormaliserRegistry

	// InitialScan ingests matching files already present before watching.
	InitialScan bool

	// OnResult, if set, is called after every ingestion or removal.
	OnResult func(Result)
}

// Result reports what happened to one file.
type Result struct {
	Path       string
	DocumentID string
	ChunkCount int
	Removed    bool
	Err        error
}

// Watcher ingests files from a directory as they change.
type Watcher struct {
	cfg Config
	rag driving.RAGService

	mu   sync.Mutex
	docs map[string]string // path -> current document ID
}

// New creates a watcher that ingests through rag.
func New(rag driving.RAGService, cfg Config) *Watcher {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Extractor == nil {
		cfg.Extractor = normalisers.Default()
	}
	return &Watcher{
		cfg:  cfg,
		rag:  rag,
		docs: make(map[string]string),
	}
}

// Run watches the directory until ctx is done. It returns nil on
// cancellation and an error if the watch could not be set up.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.cfg.Dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, w.cfg.Dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}

	if w.cfg.InitialScan {
		if err := w.scan(ctx); err != nil {
			return err
		}
	}

	logger.Info("Watching %s for %s", w.cfg.Dir, strings.Join(w.cfg.Extensions, ", "))

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.cfg.Debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			path, removed, relevant := w.classify(event)
			if !relevant {
				continue
			}
			if removed {
				delete(pending, path)
				w.remove(ctx, path)
				continue
			}
			pending[path] = time.Now()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.cfg.Debounce {
					continue
				}
				delete(pending, path)
				w.ingest(ctx, path)
			}
		}
	}
}

// scan ingests every matching file already in the directory.
func (w *Watcher) scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.cfg.Dir, err)
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return nil
		}
		if e.IsDir() || !w.matches(e.Name()) {
			continue
		}
		w.ingest(ctx, filepath.Join(w.cfg.Dir, e.Name()))
	}
	return nil
}

// classify decides whether an event concerns an ingestible file and
// whether that file is gone. Chmod-only events, directories and hidden
// files are ignored.
func (w *Watcher) classify(event fsnotify.Event) (path string, removed, relevant bool) {
	path = event.Name
	if !w.matches(filepath.Base(path)) {
		return path, false, false
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return path, true, true
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return path, false, false
		}
		return path, false, true
	default:
		return path, false, false
	}
}

func (w *Watcher) matches(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range w.cfg.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// ingest (re)ingests a file. The previous version is removed only after
// the new one is stored, so a failed update keeps the old content searchable.
func (w *Watcher) ingest(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		w.report(Result{Path: path, Err: fmt.Errorf("read %s: %w", path, err)})
		return
	}
	text, err := w.cfg.Extractor.Extract(ctx, path, content)
	if err != nil {
		w.report(Result{Path: path, Err: err})
		return
	}

	result, err := w.rag.IngestDocument(ctx, domain.IngestRequest{
		ProjectID:  w.cfg.ProjectID,
		Name:       filepath.Base(path),
		Text:       text,
		ProviderID: w.cfg.ProviderID,
	})
	if err != nil {
		w.report(Result{Path: path, Err: err})
		return
	}

	w.mu.Lock()
	previous, had := w.docs[path]
	w.docs[path] = result.DocumentID
	w.mu.Unlock()

	if had {
		if err := w.rag.DeleteDocument(ctx, previous); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("failed to remove previous version of %s: %v", path, err)
		}
	}

	w.report(Result{Path: path, DocumentID: result.DocumentID, ChunkCount: result.ChunkCount})
}

// remove deletes the document ingested from path, if any.
func (w *Watcher) remove(ctx context.Context, path string) {
	w.mu.Lock()
	docID, ok := w.docs[path]
	delete(w.docs, path)
	w.mu.Unlock()

	if !ok {
		return
	}

	err := w.rag.DeleteDocument(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		err = nil
	}
	w.report(Result{Path: path, DocumentID: docID, Removed: true, Err: err})
}

func (w *Watcher) report(r Result) {
	if r.Err != nil {
		logger.Warn("%s: %v", r.Path, r.Err)
	} else {
		logger.Debug("%s: document %s (%d chunks, removed=%t)", r.Path, r.DocumentID, r.ChunkCount, r.Removed)
	}
	if w.cfg.OnResult != nil {
		w.cfg.OnResult(r)
	}
}

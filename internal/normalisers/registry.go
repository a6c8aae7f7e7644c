package normalisers

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/normalisers/html"
	"github.com/custodia-labs/ragkit/internal/normalisers/markdown"
	"github.com/custodia-labs/ragkit/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches files to the highest priority normaliser for their
// MIME type. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byMIME: make(map[string][]driven.Normaliser)}
}

// Default returns a registry with the plaintext, markdown and HTML
// normalisers registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	return r
}

// Register adds a normaliser for each MIME type it supports.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mimeType := range n.SupportedMIMETypes() {
		list := append(r.byMIME[mimeType], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mimeType] = list
	}
}

// For returns the preferred normaliser for a MIME type.
func (r *Registry) For(mimeType string) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byMIME[mimeType]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for mimeType := range r.byMIME {
		types = append(types, mimeType)
	}
	sort.Strings(types)
	return types
}

// Extract detects the MIME type of path and returns the text produced by
// the matching normaliser.
func (r *Registry) Extract(ctx context.Context, path string, content []byte) (string, error) {
	mimeType := DetectMIMEType(path)
	n, ok := r.For(mimeType)
	if !ok {
		return "", fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedType, filepath.Base(path), mimeType)
	}
	return n.Normalise(ctx, &domain.RawDocument{
		Path:     path,
		MIMEType: mimeType,
		Content:  content,
	})
}

var extMIMETypes = map[string]string{
	".txt": "text/plain", ".text": "text/plain", ".log": "text/plain", ".rst": "text/plain",
	".md": "text/markdown", ".markdown": "text/markdown", ".mdx": "text/markdown",
	".html": "text/html", ".htm": "text/html", ".xhtml": "application/xhtml+xml",
	".go": "text/x-go", ".py": "text/x-python", ".rs": "text/x-rust",
	".java": "text/x-java", ".c": "text/x-c", ".h": "text/x-c",
	".sh": "text/x-shellscript", ".bash": "text/x-shellscript", ".sql": "text/x-sql",
	".ts": "text/typescript", ".js": "text/javascript",
	".yaml": "text/yaml", ".yml": "text/yaml", ".toml": "text/toml",
	".csv": "text/csv", ".json": "application/json", ".xml": "application/xml",
}

// DetectMIMEType determines the MIME type from a file extension. Files
// without an extension are treated as plain text.
func DetectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "text/plain"
	}
	if t, ok := extMIMETypes[ext]; ok {
		return t
	}

	// Fallback to Go's mime package
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		if idx := strings.Index(mimeType, ";"); idx != -1 {
			mimeType = strings.TrimSpace(mimeType[:idx])
		}
		return mimeType
	}
	return "application/octet-stream"
}

package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// --- Mock implementations ---

type stubNormaliser struct {
	mimeTypes []string
	priority  int
	text      string
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mimeTypes }
func (s *stubNormaliser) Priority() int                { return s.priority }

func (s *stubNormaliser) Normalise(_ context.Context, _ *domain.RawDocument) (string, error) {
	return s.text, nil
}

func TestRegistry_ForPrefersHighestPriority(t *testing.T) {
	r := NewRegistry()
	low := &stubNormaliser{mimeTypes: []string{"text/plain"}, priority: 5, text: "low"}
	high := &stubNormaliser{mimeTypes: []string{"text/plain"}, priority: 90, text: "high"}

	r.Register(low)
	r.Register(high)

	n, ok := r.For("text/plain")
	require.True(t, ok)
	assert.Same(t, high, n)
}

func TestRegistry_ForUnknown(t *testing.T) {
	_, ok := NewRegistry().For("image/png")
	assert.False(t, ok)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{mimeTypes: []string{"text/b", "text/a"}})

	assert.Equal(t, []string{"text/a", "text/b"}, r.SupportedMIMETypes())
}

func TestDefault_Extract(t *testing.T) {
	r := Default()
	ctx := context.Background()

	tests := []struct {
		name     string
		path     string
		content  string
		expected string
	}{
		{"plain text", "notes.txt", "line one\r\nline two", "line one\nline two"},
		{"no extension", "README", "hello", "hello"},
		{"markdown", "guide.md", "# Title\n\nSome **bold** text.", "Title\n\nSome bold text."},
		{"html", "page.HTML", "<h1>Title</h1><p>Body</p>", "Title\nBody"},
		{"source file", "main.go", "package main\n", "package main\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := r.Extract(ctx, tt.path, []byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, text)
		})
	}
}

func TestDefault_ExtractUnsupported(t *testing.T) {
	_, err := Default().Extract(context.Background(), "archive.zz9", []byte{0x1f, 0x8b})

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestDefault_ExtractInvalidUTF8(t *testing.T) {
	_, err := Default().Extract(context.Background(), "data.txt", []byte{0xff, 0xfe, 0xfd})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"doc.md", "text/markdown"},
		{"DOC.MARKDOWN", "text/markdown"},
		{"index.htm", "text/html"},
		{"script.ts", "text/typescript"},
		{"notes", "text/plain"},
		{"/a/b/c.txt", "text/plain"},
		{"x.zz9", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectMIMEType(tt.path))
		})
	}
}

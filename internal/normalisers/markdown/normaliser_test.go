package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
	assert.Len(t, mimeTypes, 2)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		Path:     "/path/to/document.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Hello World\r\n\r\nThis is a test."),
	}

	text, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "Hello World\n\nThis is a test.", text)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_EmptyContent(t *testing.T) {
	text, err := New().Normalise(context.Background(), &domain.RawDocument{Path: "empty.md"})

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "headings",
			input:    "# Title\n## Section\nBody",
			expected: "Title\nSection\nBody",
		},
		{
			name:     "code block keeps content",
			input:    "```go\nfmt.Println(\"hi\")\n```\nAfter",
			expected: "fmt.Println(\"hi\")\nAfter",
		},
		{
			name:     "inline code",
			input:    "Use `go test` now",
			expected: "Use go test now",
		},
		{
			name:     "links and images",
			input:    "See [the docs](https://example.com) and ![diagram](a.png)",
			expected: "See the docs and diagram",
		},
		{
			name:     "emphasis keeps identifiers",
			input:    "This is **bold** and *italic* and snake_case_name",
			expected: "This is bold and italic and snake_case_name",
		},
		{
			name:     "blockquote",
			input:    "> quoted line",
			expected: "quoted line",
		},
		{
			name:     "lists",
			input:    "- one\n- two\n1. three",
			expected: "one\ntwo\nthree",
		},
		{
			name:     "horizontal rule",
			input:    "Above\n\n---\n\nBelow",
			expected: "Above\n\nBelow",
		},
		{
			name:     "front matter",
			input:    "---\ntitle: x\n---\nBody",
			expected: "Body",
		},
		{
			name:     "table separator",
			input:    "| a | b |\n|---|---|\n| 1 | 2 |",
			expected: "| a | b |\n| 1 | 2 |",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripMarkdown(tt.input))
		})
	}
}

func TestNormalise_ComplexMarkdown(t *testing.T) {
	content := `# Project README

A **fast** tool for [retrieval](https://example.com).

## Installation

` + "```bash\ngo install ./cmd/ragkit\n```" + `

## Features

- Chunking with overlap
- *Cosine* ranking

> Note: requires an embedding provider.
`
	raw := &domain.RawDocument{Path: "README.md", Content: []byte(content)}

	text, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Contains(t, text, "Project README")
	assert.Contains(t, text, "A fast tool for retrieval.")
	assert.Contains(t, text, "go install ./cmd/ragkit")
	assert.Contains(t, text, "Chunking with overlap")
	assert.Contains(t, text, "Cosine ranking")
	assert.Contains(t, text, "Note: requires an embedding provider.")
	assert.NotContains(t, text, "```")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "](")
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}

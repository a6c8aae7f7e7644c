package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// BuildContext renders retrieval matches as numbered source blocks for an
// augmented prompt:
//
//	[Source 1: notes.md]
//	chunk text
//
//	[Source 2: other.txt]
//	...
func BuildContext(matches []domain.ChunkMatch) string {
	if len(matches) == 0 {
		return ""
	}

	var b strings.Builder
	for i, m := range matches {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Source %d: %s]\n%s", i+1, m.DocumentName, m.Chunk.Content)
	}
	return b.String()
}

package ranking

import (
	"container/heap"
	"sort"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// better reports whether a ranks ahead of b.
func better(a, b domain.ScoredChunk) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ChunkID < b.ChunkID
}

// topK is a bounded min-heap holding the best k results seen so far.
// The worst retained result sits at the root.
type topK struct {
	k     int
	items []domain.ScoredChunk
}

func newTopK(k int) *topK {
	return &topK{k: k, items: make([]domain.ScoredChunk, 0, k)}
}

func (h *topK) Len() int           { return len(h.items) }
func (h *topK) Less(i, j int) bool { return better(h.items[j], h.items[i]) }
func (h *topK) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *topK) Push(x any)         { h.items = append(h.items, x.(domain.ScoredChunk)) }

func (h *topK) Pop() any {
	last := h.items[len(h.items)-1]
	h.items = h.items[:len(h.items)-1]
	return last
}

// offer keeps s if it belongs in the top k.
func (h *topK) offer(s domain.ScoredChunk) {
	if h.k <= 0 {
		return
	}
	if len(h.items) < h.k {
		heap.Push(h, s)
		return
	}
	if better(s, h.items[0]) {
		h.items[0] = s
		heap.Fix(h, 0)
	}
}

// sorted returns the retained results best first.
func (h *topK) sorted() []domain.ScoredChunk {
	out := make([]domain.ScoredChunk, len(h.items))
	copy(out, h.items)
	sort.Slice(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out
}

// cursor points at the next unread entry of one partition's sorted list.
type cursor struct {
	list []domain.ScoredChunk
	pos  int
}

// mergeHeap orders partition cursors by their current head, best first.
type mergeHeap []*cursor

func (m mergeHeap) Len() int { return len(m) }
func (m mergeHeap) Less(i, j int) bool {
	return better(m[i].list[m[i].pos], m[j].list[m[j].pos])
}
func (m mergeHeap) Swap(i, j int) { m[i], m[j] = m[j], m[i] }
func (m *mergeHeap) Push(x any)   { *m = append(*m, x.(*cursor)) }

func (m *mergeHeap) Pop() any {
	old := *m
	c := old[len(old)-1]
	*m = old[:len(old)-1]
	return c
}

// merge combines sorted partition lists into the global best k.
func merge(lists [][]domain.ScoredChunk, k int) []domain.ScoredChunk {
	m := make(mergeHeap, 0, len(lists))
	total := 0
	for _, l := range lists {
		if len(l) > 0 {
			m = append(m, &cursor{list: l})
			total += len(l)
		}
	}
	heap.Init(&m)

	out := make([]domain.ScoredChunk, 0, min(k, total))
	for len(out) < k && m.Len() > 0 {
		c := m[0]
		out = append(out, c.list[c.pos])
		c.pos++
		if c.pos == len(c.list) {
			heap.Pop(&m)
		} else {
			heap.Fix(&m, 0)
		}
	}
	return out
}

package ranking

import (
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// DefaultMinPartitionSize is the smallest candidate count worth giving its own goroutine.
const DefaultMinPartitionSize = 2048

// Ranker selects the top-k candidates by cosine similarity.
// The zero value is not usable; use New.
type Ranker struct {
	partitions       int
	minPartitionSize int
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithPartitions sets the maximum number of partitions scored in parallel.
func WithPartitions(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.partitions = n
		}
	}
}

// WithMinPartitionSize sets the minimum number of candidates per partition.
func WithMinPartitionSize(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.minPartitionSize = n
		}
	}
}

// New creates a Ranker. By default it uses one partition per available CPU.
func New(opts ...Option) *Ranker {
	r := &Ranker{
		partitions:       runtime.GOMAXPROCS(0),
		minPartitionSize: DefaultMinPartitionSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank returns the min(k, len(candidates)) candidates most similar to query.
// Any candidate whose dimension differs from the query fails the whole call
// with domain.ErrDimensionMismatch.
func (r *Ranker) Rank(query []float32, candidates []domain.ChunkVector, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 || len(candidates) == 0 {
		return []domain.ScoredChunk{}, nil
	}

	parts := r.partitionCount(len(candidates))
	if parts == 1 {
		return RankSequential(query, candidates, k)
	}

	qn := norm(query)
	size := (len(candidates) + parts - 1) / parts
	lists := make([][]domain.ScoredChunk, parts)

	var g errgroup.Group
	for p := 0; p < parts; p++ {
		lo := p * size
		hi := min(lo+size, len(candidates))
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			list, err := scorePartition(query, qn, candidates[lo:hi], k)
			if err != nil {
				return err
			}
			lists[p] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return merge(lists, k), nil
}

func (r *Ranker) partitionCount(n int) int {
	parts := min(r.partitions, n/r.minPartitionSize)
	return max(parts, 1)
}

// RankSequential ranks on the calling goroutine by scoring every candidate
// and sorting. It defines the reference ordering Rank must reproduce.
func RankSequential(query []float32, candidates []domain.ChunkVector, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 || len(candidates) == 0 {
		return []domain.ScoredChunk{}, nil
	}

	qn := norm(query)
	scored := make([]domain.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) != len(query) {
			return nil, mismatch(c, len(query))
		}
		scored = append(scored, domain.ScoredChunk{ChunkID: c.ChunkID, Score: cosine(query, c.Vector, qn)})
	}

	sort.Slice(scored, func(i, j int) bool { return better(scored[i], scored[j]) })
	return scored[:min(k, len(scored))], nil
}

func scorePartition(query []float32, qn float64, candidates []domain.ChunkVector, k int) ([]domain.ScoredChunk, error) {
	h := newTopK(min(k, len(candidates)))
	for _, c := range candidates {
		if len(c.Vector) != len(query) {
			return nil, mismatch(c, len(query))
		}
		h.offer(domain.ScoredChunk{ChunkID: c.ChunkID, Score: cosine(query, c.Vector, qn)})
	}
	return h.sorted(), nil
}

func mismatch(c domain.ChunkVector, want int) error {
	return fmt.Errorf("%w: chunk %s has dimension %d, query has %d",
		domain.ErrDimensionMismatch, c.ChunkID, len(c.Vector), want)
}

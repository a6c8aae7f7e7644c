// Package ranking scores chunk vectors against a query vector and selects
// the top-k by cosine similarity.
//
// Ranking is exact and brute force. Candidates are split into partitions
// scored in parallel; each partition keeps a bounded heap of its best k and
// the sorted partition lists are merged into the global top-k. The result is
// identical to RankSequential for any partitioning.
//
// Order is score descending with ties broken by ascending chunk id.
package ranking

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/eriperspective/agentflow/types"
)

// DefaultEmbedBatchSize is the number of documents embedded per request when
// adding documents to the in-memory store.
const DefaultEmbedBatchSize = 16

// InMemoryVectorStore is a prototyping-grade vector store that keeps embedded
// documents in memory and searches them by cosine similarity.
type InMemoryVectorStore struct {
	embedder  types.Embedder
	batchSize int

	mu      sync.RWMutex
	entries []storeEntry
}

type storeEntry struct {
	doc    *types.Document
	vector []float32
}

var _ types.VectorStore = (*InMemoryVectorStore)(nil)

// VectorStoreOption configures an [InMemoryVectorStore].
type VectorStoreOption func(*InMemoryVectorStore)

// WithEmbedBatchSize sets the number of documents embedded per request.
func WithEmbedBatchSize(size int) VectorStoreOption {
	return func(s *InMemoryVectorStore) {
		s.batchSize = size
	}
}

// NewInMemoryVectorStore creates a new [InMemoryVectorStore] using the given
// embedder.
func NewInMemoryVectorStore(embedder types.Embedder, opts ...VectorStoreOption) *InMemoryVectorStore {
	s := &InMemoryVectorStore{
		embedder:  embedder,
		batchSize: DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AddDocuments implements [types.VectorStore]. Batches are embedded
// concurrently; the stored order matches the input order.
func (s *InMemoryVectorStore) AddDocuments(ctx context.Context, docs []*types.Document) error {
	if len(docs) == 0 {
		return nil
	}

	vectors := make([][]float32, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(docs); start += s.batchSize {
		end := min(start+s.batchSize, len(docs))
		g.Go(func() error {
			texts := make([]string, end-start)
			for i, doc := range docs[start:end] {
				texts[i] = doc.Content
			}

			batchVectors, err := s.embedder.EmbedDocuments(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed documents %d..%d: %w", start, end, err)
			}
			copy(vectors[start:end], batchVectors)

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range docs {
		s.entries = append(s.entries, storeEntry{
			doc:    doc,
			vector: vectors[i],
		})
	}

	return nil
}

// Len returns the number of stored documents.
func (s *InMemoryVectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// SimilaritySearch implements [types.VectorStore].
func (s *InMemoryVectorStore) SimilaritySearch(ctx context.Context, query string, k int) ([]*types.ScoredDocument, error) {
	return s.SimilaritySearchWithFilter(ctx, query, k, nil)
}

// SimilaritySearchWithFilter implements [types.VectorStore]. Only documents
// whose metadata matches every entry of the filter are considered.
func (s *InMemoryVectorStore) SimilaritySearchWithFilter(ctx context.Context, query string, k int, filter map[string]any) ([]*types.ScoredDocument, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]*types.ScoredDocument, 0, len(s.entries))
	for _, entry := range s.entries {
		if !matchesFilter(entry.doc.Metadata, filter) {
			continue
		}
		scored = append(scored, &types.ScoredDocument{
			Document: *entry.doc,
			Score:    cosineSimilarity(queryVector, entry.vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}

	return scored, nil
}

// matchesFilter reports whether the metadata matches every filter entry.
func matchesFilter(metadata, filter map[string]any) bool {
	for key, want := range filter {
		if metadata[key] != want {
			return false
		}
	}

	return true
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector is zero or the lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

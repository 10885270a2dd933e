// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/eriperspective/agentflow/types"
)

// wordEmbedder embeds text as word-presence vectors over a fixed vocabulary,
// giving deterministic cosine scores.
type wordEmbedder struct {
	vocabulary []string
}

var _ types.Embedder = (*wordEmbedder)(nil)

func newWordEmbedder(vocabulary ...string) *wordEmbedder {
	return &wordEmbedder{vocabulary: vocabulary}
}

func (e *wordEmbedder) Name() string   { return "word-embedder" }
func (e *wordEmbedder) Dimension() int { return len(e.vocabulary) }

func (e *wordEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector := make([]float32, len(e.vocabulary))
	for i, word := range e.vocabulary {
		if strings.Contains(strings.ToLower(text), word) {
			vector[i] = 1
		}
	}
	return vector, nil
}

func (e *wordEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := e.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func testDocuments() []*types.Document {
	return []*types.Document{
		{
			ID:       "go-doc",
			Content:  "goroutines and channels make concurrency simple",
			Metadata: map[string]any{"topic": "go"},
		},
		{
			ID:       "http-doc",
			Content:  "http servers handle requests",
			Metadata: map[string]any{"topic": "web"},
		},
		{
			ID:       "mixed-doc",
			Content:  "http handlers can start goroutines",
			Metadata: map[string]any{"topic": "web"},
		},
	}
}

func newTestStore(t *testing.T) *InMemoryVectorStore {
	t.Helper()

	embedder := newWordEmbedder("goroutines", "channels", "concurrency", "http", "servers", "handlers")
	store := NewInMemoryVectorStore(embedder, WithEmbedBatchSize(2))
	if err := store.AddDocuments(t.Context(), testDocuments()); err != nil {
		t.Fatal(err)
	}

	return store
}

func TestInMemoryVectorStoreSimilaritySearch(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if got, want := store.Len(), 3; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}

	results, err := store.SimilaritySearch(t.Context(), "goroutines channels concurrency", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].ID != "go-doc" {
		t.Errorf("top result = %q, want go-doc", results[0].ID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("results not sorted by score: %v then %v", results[0].Score, results[1].Score)
	}
}

func TestInMemoryVectorStoreMetadataFilter(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	results, err := store.SimilaritySearchWithFilter(t.Context(), "goroutines", 3, map[string]any{"topic": "web"})
	if err != nil {
		t.Fatal(err)
	}
	for _, result := range results {
		if result.Metadata["topic"] != "web" {
			t.Errorf("filter leaked document %q", result.ID)
		}
	}
	if len(results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(results))
	}
}

func TestVectorRetriever(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	retriever := NewVectorRetriever(store,
		WithTopK(2),
		WithScoreThreshold(0.1),
	)

	results, err := retriever.Retrieve(t.Context(), "http servers")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("no documents retrieved")
	}
	if results[0].ID != "http-doc" {
		t.Errorf("top result = %q, want http-doc", results[0].ID)
	}

	formatted := FormatWithCitations(results)
	if !strings.Contains(formatted, "[1]") {
		t.Errorf("formatted output missing citation index:\n%s", formatted)
	}
}

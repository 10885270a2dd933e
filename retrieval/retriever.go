// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/eriperspective/agentflow/types"
)

// DefaultTopK is the default number of documents a [VectorRetriever] returns.
const DefaultTopK = 4

// VectorRetriever retrieves documents from a vector store.
type VectorRetriever struct {
	store          types.VectorStore
	topK           int
	filter         map[string]any
	scoreThreshold float64
}

var _ types.Retriever = (*VectorRetriever)(nil)

// RetrieverOption configures a [VectorRetriever].
type RetrieverOption func(*VectorRetriever)

// WithTopK sets the number of documents to retrieve.
func WithTopK(k int) RetrieverOption {
	return func(r *VectorRetriever) {
		r.topK = k
	}
}

// WithFilter restricts retrieval to documents whose metadata matches every
// entry of the filter.
func WithFilter(filter map[string]any) RetrieverOption {
	return func(r *VectorRetriever) {
		r.filter = filter
	}
}

// WithScoreThreshold drops documents scoring below the threshold.
func WithScoreThreshold(threshold float64) RetrieverOption {
	return func(r *VectorRetriever) {
		r.scoreThreshold = threshold
	}
}

// NewVectorRetriever creates a new [VectorRetriever] over the given store.
func NewVectorRetriever(store types.VectorStore, opts ...RetrieverOption) *VectorRetriever {
	r := &VectorRetriever{
		store: store,
		topK:  DefaultTopK,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Retrieve implements [types.Retriever].
func (r *VectorRetriever) Retrieve(ctx context.Context, query string) ([]*types.ScoredDocument, error) {
	var (
		docs []*types.ScoredDocument
		err  error
	)
	if len(r.filter) > 0 {
		docs, err = r.store.SimilaritySearchWithFilter(ctx, query, r.topK, r.filter)
	} else {
		docs, err = r.store.SimilaritySearch(ctx, query, r.topK)
	}
	if err != nil {
		return nil, err
	}

	if r.scoreThreshold > 0 {
		kept := docs[:0]
		for _, doc := range docs {
			if doc.Score >= r.scoreThreshold {
				kept = append(kept, doc)
			}
		}
		docs = kept
	}

	return docs, nil
}

// FormatWithCitations renders retrieved documents as a numbered context block
// for prompting, each document labeled with a bracketed citation index and
// its source metadata when present.
func FormatWithCitations(docs []*types.ScoredDocument) string {
	if len(docs) == 0 {
		return ""
	}

	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d]", i+1)
		if source, ok := doc.Metadata["source"].(string); ok && source != "" {
			fmt.Fprintf(&b, " (source: %s)", source)
		}
		b.WriteString("\n")
		b.WriteString(doc.Content)
	}

	return b.String()
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
)

// Document represents a piece of text with associated metadata, the unit of
// loading, splitting, embedding, and retrieval.
type Document struct {
	// ID uniquely identifies the document within a store.
	ID string `json:"id"`

	// Content is the text content of the document.
	Content string `json:"content"`

	// Metadata carries arbitrary key/value pairs, such as the source path
	// or the chunk index.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScoredDocument is a document with a relevance score attached by a search.
type ScoredDocument struct {
	Document

	// Score is the similarity score of the document for the query.
	// Higher is more relevant.
	Score float64 `json:"score"`
}

// DocumentLoader loads documents from some source.
type DocumentLoader interface {
	// Load loads all documents from the source.
	Load(ctx context.Context) ([]*Document, error)
}

// TextSplitter splits documents into smaller chunks.
type TextSplitter interface {
	// SplitDocuments splits each document into chunks, preserving metadata.
	SplitDocuments(docs []*Document) []*Document

	// SplitText splits raw text into chunks.
	SplitText(text string) []string
}

// VectorStore stores embedded documents and supports similarity search.
type VectorStore interface {
	// AddDocuments embeds and stores the given documents.
	AddDocuments(ctx context.Context, docs []*Document) error

	// SimilaritySearch returns the k most similar documents to the query.
	SimilaritySearch(ctx context.Context, query string, k int) ([]*ScoredDocument, error)

	// SimilaritySearchWithFilter returns the k most similar documents whose
	// metadata matches all entries of the filter.
	SimilaritySearchWithFilter(ctx context.Context, query string, k int, filter map[string]any) ([]*ScoredDocument, error)
}

// Retriever retrieves relevant documents for a query.
type Retriever interface {
	// Retrieve returns the documents relevant to the query.
	Retrieve(ctx context.Context, query string) ([]*ScoredDocument, error)
}

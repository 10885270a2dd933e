// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"iter"
)

// Model represents a generative AI model.
type Model interface {
	// Name returns the name of the LLM model.
	//
	// e.g. gemini-2.0-flash or claude-3-5-haiku-latest.
	Name() string

	// SupportedModels returns a list of supported models for the [ModelRegistry].
	SupportedModels() []string

	// GenerateContent generates one content from the given contents and tools.
	GenerateContent(ctx context.Context, request *LLMRequest) (*LLMResponse, error)

	// StreamGenerateContent generates one content from the given contents and tools with streaming call.
	StreamGenerateContent(ctx context.Context, request *LLMRequest) iter.Seq2[*LLMResponse, error]
}

// Embedder converts text into embedding vectors for similarity search.
type Embedder interface {
	// Name returns the name of the embedding model.
	Name() string

	// Dimension returns the length of the vectors this embedder produces,
	// or 0 when the provider decides.
	Dimension() int

	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds a batch of document texts. The result preserves
	// input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

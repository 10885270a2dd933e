// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/types"
)

const (
	// GeminiDefaultEmbeddingModel is the default embedding model for [GeminiEmbedder].
	GeminiDefaultEmbeddingModel = "text-embedding-004"

	// EnvGoogleAPIKey is the environment variable name for the Google AI API key.
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
)

// GeminiEmbedder embeds text with the Gemini embedding models.
type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
	dimension int
}

var _ types.Embedder = (*GeminiEmbedder)(nil)

// EmbedderOption configures an embedder.
type EmbedderOption func(*embedderConfig)

type embedderConfig struct {
	dimension int
}

// WithDimension requests embedding vectors of the given length from the
// provider. Zero leaves the choice to the provider.
func WithDimension(dimension int) EmbedderOption {
	return func(c *embedderConfig) {
		c.dimension = dimension
	}
}

// NewGeminiEmbedder creates a new [GeminiEmbedder].
func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string, opts ...EmbedderOption) (*GeminiEmbedder, error) {
	if modelName == "" {
		modelName = GeminiDefaultEmbeddingModel
	}

	if apiKey == "" {
		envAPIKey := os.Getenv(EnvGoogleAPIKey)
		if envAPIKey == "" {
			return nil, fmt.Errorf("either apiKey arg or %q environment variable must be set", EnvGoogleAPIKey)
		}
		apiKey = envAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	config := &embedderConfig{}
	for _, opt := range opts {
		opt(config)
	}

	return &GeminiEmbedder{
		client:    client,
		modelName: modelName,
		dimension: config.dimension,
	}, nil
}

// Name implements [types.Embedder].
func (e *GeminiEmbedder) Name() string {
	return e.modelName
}

// Dimension implements [types.Embedder].
func (e *GeminiEmbedder) Dimension() int {
	return e.dimension
}

// EmbedQuery implements [types.Embedder].
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embed(ctx, []string{text}, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}

	return vectors[0], nil
}

// EmbedDocuments implements [types.Embedder].
func (e *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	return e.embed(ctx, texts, "RETRIEVAL_DOCUMENT")
}

func (e *GeminiEmbedder) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	config := &genai.EmbedContentConfig{
		TaskType: taskType,
	}
	if e.dimension > 0 {
		config.OutputDimensionality = genai.Ptr(int32(e.dimension))
	}

	response, err := e.client.Models.EmbedContent(ctx, e.modelName, contents, config)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts with %s: %w", len(texts), e.modelName, err)
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed %d texts with %s: got %d embeddings", len(texts), e.modelName, len(response.Embeddings))
	}

	vectors := make([][]float32, len(response.Embeddings))
	for i, embedding := range response.Embeddings {
		vectors[i] = embedding.Values
	}

	return vectors, nil
}

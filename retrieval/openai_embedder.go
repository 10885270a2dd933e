// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/eriperspective/agentflow/types"
)

const (
	// OpenAIDefaultEmbeddingModel is the default embedding model for [OpenAIEmbedder].
	OpenAIDefaultEmbeddingModel = "text-embedding-3-small"

	// EnvOpenAIAPIKey is the environment variable name for the OpenAI API key.
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// OpenAIEmbedder embeds text with the OpenAI embedding models.
type OpenAIEmbedder struct {
	client    openai.Client
	modelName string
	dimension int
}

var _ types.Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder creates a new [OpenAIEmbedder].
func NewOpenAIEmbedder(apiKey, modelName string, opts ...EmbedderOption) (*OpenAIEmbedder, error) {
	if modelName == "" {
		modelName = OpenAIDefaultEmbeddingModel
	}

	if apiKey == "" {
		envAPIKey := os.Getenv(EnvOpenAIAPIKey)
		if envAPIKey == "" {
			return nil, fmt.Errorf("either apiKey arg or %q environment variable must be set", EnvOpenAIAPIKey)
		}
		apiKey = envAPIKey
	}

	config := &embedderConfig{}
	for _, opt := range opts {
		opt(config)
	}

	return &OpenAIEmbedder{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		modelName: modelName,
		dimension: config.dimension,
	}, nil
}

// Name implements [types.Embedder].
func (e *OpenAIEmbedder) Name() string {
	return e.modelName
}

// Dimension implements [types.Embedder].
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// EmbedQuery implements [types.Embedder].
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return vectors[0], nil
}

// EmbedDocuments implements [types.Embedder].
func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openai.EmbeddingModel(e.modelName),
	}
	if e.dimension > 0 {
		params.Dimensions = openai.Int(int64(e.dimension))
	}

	response, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts with %s: %w", len(texts), e.modelName, err)
	}
	if len(response.Data) != len(texts) {
		return nil, fmt.Errorf("embed %d texts with %s: got %d embeddings", len(texts), e.modelName, len(response.Data))
	}

	vectors := make([][]float32, len(response.Data))
	for i, data := range response.Data {
		vector := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vector[j] = float32(v)
		}
		vectors[i] = vector
	}

	return vectors, nil
}

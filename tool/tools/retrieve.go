// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/tool"
	"github.com/eriperspective/agentflow/types"
)

// RetrieveTool exposes a retriever as a tool so that the model can decide
// when to search the document store (agentic RAG).
//
// Each returned document carries its content and metadata so the model can
// cite sources.
type RetrieveTool struct {
	*tool.Tool

	retriever types.Retriever
}

var _ types.Tool = (*RetrieveTool)(nil)

// NewRetrieveTool creates a new [RetrieveTool] with the given name,
// description and retriever.
func NewRetrieveTool(name, description string, retriever types.Retriever) *RetrieveTool {
	return &RetrieveTool{
		Tool:      tool.NewTool(name, description, false),
		retriever: retriever,
	}
}

// GetDeclaration implements [types.Tool].
func (t *RetrieveTool) GetDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query": {
					Type:        genai.TypeString,
					Description: "The query to retrieve documents for.",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Run implements [types.Tool].
func (t *RetrieveTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	query, _ := args["query"].(string)
	docs, err := t.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		result := map[string]any{
			"content": doc.Content,
			"score":   doc.Score,
		}
		if doc.ID != "" {
			result["id"] = doc.ID
		}
		if len(doc.Metadata) > 0 {
			result["metadata"] = doc.Metadata
		}
		results = append(results, result)
	}

	return map[string]any{"documents": results}, nil
}

// ProcessLLMRequest implements [types.Tool].
func (t *RetrieveTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	request.AppendTools(t)
	return nil
}

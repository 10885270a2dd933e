// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/tool"
	"github.com/eriperspective/agentflow/types"
)

// LoadMemoryTool loads memories relevant to a query for the current user.
//
// Only the text parts of the matched memories are returned.
type LoadMemoryTool struct {
	*tool.Tool
}

var _ types.Tool = (*LoadMemoryTool)(nil)

// NewLoadMemoryTool creates a new [LoadMemoryTool].
func NewLoadMemoryTool() *LoadMemoryTool {
	return &LoadMemoryTool{
		Tool: tool.NewTool("load_memory", "Loads the memory for the current user based on a query.", false),
	}
}

// GetDeclaration implements [types.Tool].
func (t *LoadMemoryTool) GetDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query": {
					Type:        genai.TypeString,
					Description: "The query to load memories for.",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Run implements [types.Tool].
func (t *LoadMemoryTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	query, _ := args["query"].(string)
	response, err := toolCtx.SearchMemory(ctx, query)
	if err != nil {
		return nil, err
	}

	memories := make([]map[string]any, 0, len(response.Memories))
	for _, memory := range response.Memories {
		entry := map[string]any{
			"text": memoryText(memory, " "),
		}
		if memory.Author != "" {
			entry["author"] = memory.Author
		}
		if !memory.Timestamp.IsZero() {
			entry["timestamp"] = memory.Timestamp.Format("2006-01-02T15:04:05Z07:00")
		}
		memories = append(memories, entry)
	}

	return map[string]any{"memories": memories}, nil
}

// ProcessLLMRequest implements [types.Tool].
func (t *LoadMemoryTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	request.AppendTools(t)
	return nil
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/tool"
	"github.com/eriperspective/agentflow/types"
)

// GetUserChoiceTool presents options to the user and asks them to choose one.
//
// The tool is long-running: Run returns no result, and the user's choice is
// delivered later as a function response carrying the original function call
// ID. Summarization is skipped so the pending question reaches the user
// verbatim.
type GetUserChoiceTool struct {
	*tool.Tool
}

var _ types.Tool = (*GetUserChoiceTool)(nil)

// NewGetUserChoiceTool creates a new [GetUserChoiceTool].
func NewGetUserChoiceTool() *GetUserChoiceTool {
	return &GetUserChoiceTool{
		Tool: tool.NewTool("get_user_choice", "Provides the options to the user and asks them to choose one.", true),
	}
}

// GetDeclaration implements [types.Tool].
func (t *GetUserChoiceTool) GetDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"options": {
					Type:        genai.TypeArray,
					Description: "The options for the user to choose from.",
					Items:       &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"options"},
		},
	}
}

// Run implements [types.Tool].
func (t *GetUserChoiceTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	toolCtx.Actions().SkipSummarization = true
	return nil, nil
}

// ProcessLLMRequest implements [types.Tool].
func (t *GetUserChoiceTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	request.AppendTools(t)
	return nil
}

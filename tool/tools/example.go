// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"github.com/eriperspective/agentflow/example"
	"github.com/eriperspective/agentflow/tool"
	"github.com/eriperspective/agentflow/types"
)

// ExampleTool adds few-shot examples to the LLM request.
//
// Like [PreloadMemoryTool], it never surfaces as a callable function; it only
// appends the formatted examples to the instructions.
type ExampleTool struct {
	*tool.Tool

	provider types.ExampleProvider
}

var _ types.Tool = (*ExampleTool)(nil)

// NewExampleTool creates a new ExampleTool with the given example provider.
func NewExampleTool(provider types.ExampleProvider) *ExampleTool {
	return &ExampleTool{
		Tool:     tool.NewTool("example_tool", "example tool", false),
		provider: provider,
	}
}

// ProcessLLMRequest implements [types.Tool].
func (t *ExampleTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	userContent := toolCtx.UserContent()
	if userContent == nil || len(userContent.Parts) == 0 || userContent.Parts[0].Text == "" {
		return nil
	}

	if instructions, _ := example.BuildExampleInstruction(t.provider, userContent.Parts[0].Text); instructions != "" {
		request.AppendInstructions(instructions)
	}

	return nil
}

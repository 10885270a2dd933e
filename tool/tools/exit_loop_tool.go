// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/tool"
	"github.com/eriperspective/agentflow/types"
)

// ExitLoopTool exits the enclosing loop agent by escalating.
type ExitLoopTool struct {
	*tool.Tool
}

var _ types.Tool = (*ExitLoopTool)(nil)

// NewExitLoopTool creates a new [ExitLoopTool].
func NewExitLoopTool() *ExitLoopTool {
	return &ExitLoopTool{
		Tool: tool.NewTool("exit_loop", "Exits the loop. Call this function only when you are instructed to do so.", false),
	}
}

// GetDeclaration implements [types.Tool].
func (t *ExitLoopTool) GetDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
	}
}

// Run implements [types.Tool].
func (t *ExitLoopTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	toolCtx.Actions().Escalate = true
	return map[string]any{}, nil
}

// ProcessLLMRequest implements [types.Tool].
func (t *ExitLoopTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	request.AppendTools(t)
	return nil
}

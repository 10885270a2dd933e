// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"testing"
)

func TestExitLoopTool(t *testing.T) {
	t.Parallel()

	tool := NewExitLoopTool()
	toolCtx := newTestToolContext(t)

	if _, err := tool.Run(t.Context(), nil, toolCtx); err != nil {
		t.Fatal(err)
	}
	if !toolCtx.Actions().Escalate {
		t.Error("Escalate = false, want true")
	}
}

func TestGetUserChoiceTool(t *testing.T) {
	t.Parallel()

	tool := NewGetUserChoiceTool()
	if !tool.IsLongRunning() {
		t.Error("IsLongRunning() = false, want true")
	}

	toolCtx := newTestToolContext(t)
	result, err := tool.Run(t.Context(), map[string]any{"options": []any{"yes", "no"}}, toolCtx)
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Errorf("Run() = %v, want nil pending result", result)
	}
	if !toolCtx.Actions().SkipSummarization {
		t.Error("SkipSummarization = false, want true")
	}

	decl := tool.GetDeclaration()
	if decl.Parameters.Properties["options"] == nil {
		t.Error("declaration missing options parameter")
	}
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/session"
	"github.com/eriperspective/agentflow/types"
)

func newTestToolContext(tb testing.TB) *types.ToolContext {
	tb.Helper()

	sess := session.NewSession("test-app", "test-user", "test-session", nil, time.Now())
	ictx := types.NewInvocationContext(nil, sess, nil)

	return types.NewToolContext(ictx).WithEventActions(types.NewEventActions())
}

func TestNewFunctionTool(t *testing.T) {
	t.Parallel()

	fn := func(ctx context.Context, args map[string]any) (any, error) {
		return map[string]any{"echo": args["message"]}, nil
	}

	tool := NewFunctionTool(fn,
		WithName("echo"),
		WithDescription("Echoes the message back."),
		WithParameters(&genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"message": {Type: genai.TypeString},
			},
			Required: []string{"message"},
		}),
		WithParameterDescription("message", "The message to echo."),
	)

	if got, want := tool.Name(), "echo"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}

	decl := tool.GetDeclaration()
	if decl == nil {
		t.Fatal("GetDeclaration() = nil")
	}
	if got, want := decl.Parameters.Properties["message"].Description, "The message to echo."; got != want {
		t.Errorf("message description = %q, want %q", got, want)
	}

	result, err := tool.Run(t.Context(), map[string]any{"message": "hi"}, newTestToolContext(t))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"echo": "hi"}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewLongRunningFunctionTool(t *testing.T) {
	t.Parallel()

	tool := NewLongRunningFunctionTool(func(ctx context.Context, args map[string]any) (any, error) {
		return nil, nil
	}, WithName("start_job"))

	if !tool.IsLongRunning() {
		t.Error("IsLongRunning() = false, want true")
	}
}

func TestFunctionToolRegistersDeclaration(t *testing.T) {
	t.Parallel()

	tool := NewFunctionTool(func(ctx context.Context, args map[string]any) (any, error) {
		return nil, nil
	}, WithName("noop"))

	request := types.NewLLMRequest(nil)
	if err := tool.ProcessLLMRequest(t.Context(), newTestToolContext(t), request); err != nil {
		t.Fatal(err)
	}

	if _, ok := request.ToolMap["noop"]; !ok {
		t.Error("tool not registered in tool map")
	}
	if len(request.Config.Tools) != 1 || len(request.Config.Tools[0].FunctionDeclarations) != 1 {
		t.Fatalf("declaration not appended to request config: %+v", request.Config.Tools)
	}
}

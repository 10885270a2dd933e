// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/agent"
	"github.com/eriperspective/agentflow/flow/llmflow"
	"github.com/eriperspective/agentflow/session"
	"github.com/eriperspective/agentflow/tool/tools"
	"github.com/eriperspective/agentflow/types"
)

func newToolTestContext(t *testing.T, opts ...agent.LLMAgentOption) *types.InvocationContext {
	t.Helper()

	calc, err := agent.NewLLMAgent(t.Context(), "calc", opts...)
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}
	sess := session.NewSession("test-app", "test-user", "test-session", nil, time.Now())

	return &types.InvocationContext{
		Agent:   calc,
		Session: sess,
	}
}

func functionCallEvent(calls ...*genai.FunctionCall) *types.Event {
	parts := make([]*genai.Part, len(calls))
	for i, call := range calls {
		parts[i] = &genai.Part{FunctionCall: call}
	}
	return types.NewEvent().
		WithAuthor("calc").
		WithContent(&genai.Content{Role: "model", Parts: parts})
}

func TestPopulateAndRemoveClientFunctionCallID(t *testing.T) {
	ctx := t.Context()

	event := functionCallEvent(
		&genai.FunctionCall{Name: "add"},
		&genai.FunctionCall{Name: "sub", ID: "server-id"},
	)
	llmflow.PopulateClientFunctionCallID(ctx, event)

	funcCalls := event.GetFunctionCalls()
	if !strings.HasPrefix(funcCalls[0].ID, llmflow.FunctionCallIDPrefix) {
		t.Errorf("missing client ID prefix: %q", funcCalls[0].ID)
	}
	if funcCalls[1].ID != "server-id" {
		t.Errorf("server-assigned ID was overwritten: %q", funcCalls[1].ID)
	}

	llmflow.RemoveClientFunctionCallID(event.Content)
	if funcCalls[0].ID != "" {
		t.Errorf("client ID not removed: %q", funcCalls[0].ID)
	}
	if funcCalls[1].ID != "server-id" {
		t.Errorf("server-assigned ID was removed: %q", funcCalls[1].ID)
	}
}

func TestGetLongRunningFunctionCalls(t *testing.T) {
	ctx := t.Context()

	askUser := tools.NewLongRunningFunctionTool(func(ctx context.Context, args map[string]any) (any, error) {
		return nil, nil
	}, tools.WithName("ask_user"))
	add := tools.NewFunctionTool(func(ctx context.Context, args map[string]any) (any, error) {
		return nil, nil
	}, tools.WithName("add"))

	toolMap := map[string]types.Tool{
		askUser.Name(): askUser,
		add.Name():     add,
	}
	funcCalls := []*genai.FunctionCall{
		{Name: "ask_user", ID: "call-1"},
		{Name: "add", ID: "call-2"},
		{Name: "unknown", ID: "call-3"},
	}

	ids := llmflow.GetLongRunningFunctionCalls(ctx, funcCalls, toolMap)
	if !ids.Has("call-1") {
		t.Error("long-running call not detected")
	}
	if ids.Has("call-2") || ids.Has("call-3") {
		t.Error("non-long-running calls detected as long-running")
	}
}

func TestHandleFunctionCalls(t *testing.T) {
	ctx := t.Context()
	ictx := newToolTestContext(t)

	add := tools.NewFunctionTool(func(ctx context.Context, args map[string]any) (any, error) {
		return map[string]any{"sum": args["a"].(float64) + args["b"].(float64)}, nil
	}, tools.WithName("add"))
	greet := tools.NewFunctionTool(func(ctx context.Context, args map[string]any) (any, error) {
		// Plain values get wrapped under a "result" key for the model.
		return "hello", nil
	}, tools.WithName("greet"))

	toolMap := map[string]types.Tool{
		add.Name():   add,
		greet.Name(): greet,
	}
	event := functionCallEvent(
		&genai.FunctionCall{Name: "add", ID: "call-1", Args: map[string]any{"a": float64(1), "b": float64(2)}},
		&genai.FunctionCall{Name: "greet", ID: "call-2"},
	)

	responseEvent, err := llmflow.HandleFunctionCalls(ctx, ictx, event, toolMap, nil)
	if err != nil {
		t.Fatalf("HandleFunctionCalls: %v", err)
	}
	if responseEvent == nil {
		t.Fatal("no response event")
	}
	if responseEvent.Author != "calc" {
		t.Errorf("author = %q, want calc", responseEvent.Author)
	}

	funcResponses := responseEvent.GetFunctionResponses()
	if len(funcResponses) != 2 {
		t.Fatalf("got %d function responses, want 2", len(funcResponses))
	}

	// Responses keep the model's call order.
	if funcResponses[0].Name != "add" || funcResponses[0].ID != "call-1" {
		t.Errorf("first response = %s/%s, want add/call-1", funcResponses[0].Name, funcResponses[0].ID)
	}
	if diff := cmp.Diff(map[string]any{"sum": float64(3)}, funcResponses[0].Response); diff != "" {
		t.Errorf("add response mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"result": "hello"}, funcResponses[1].Response); diff != "" {
		t.Errorf("greet response mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleFunctionCallsToolError(t *testing.T) {
	ctx := t.Context()
	ictx := newToolTestContext(t)

	flaky := tools.NewFunctionTool(func(ctx context.Context, args map[string]any) (any, error) {
		return nil, errors.New("upstream timeout")
	}, tools.WithName("flaky"))

	toolMap := map[string]types.Tool{flaky.Name(): flaky}
	event := functionCallEvent(&genai.FunctionCall{Name: "flaky", ID: "call-1"})

	responseEvent, err := llmflow.HandleFunctionCalls(ctx, ictx, event, toolMap, nil)
	if err != nil {
		t.Fatalf("HandleFunctionCalls: %v", err)
	}

	funcResponses := responseEvent.GetFunctionResponses()
	if len(funcResponses) != 1 {
		t.Fatalf("got %d function responses, want 1", len(funcResponses))
	}
	errMsg, ok := funcResponses[0].Response["error"].(string)
	if !ok || !strings.Contains(errMsg, "upstream timeout") {
		t.Errorf("error payload = %v, want upstream timeout", funcResponses[0].Response)
	}
}

func TestHandleFunctionCallsUnknownTool(t *testing.T) {
	ctx := t.Context()
	ictx := newToolTestContext(t)

	event := functionCallEvent(&genai.FunctionCall{Name: "missing", ID: "call-1"})

	_, err := llmflow.HandleFunctionCalls(ctx, ictx, event, map[string]types.Tool{}, nil)
	var notFound *types.ToolNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want ToolNotFoundError", err)
	}
}

func TestHandleFunctionCallsCallbacks(t *testing.T) {
	ctx := t.Context()

	add := tools.NewFunctionTool(func(ctx context.Context, args map[string]any) (any, error) {
		return map[string]any{"sum": float64(3)}, nil
	}, tools.WithName("add"))

	ictx := newToolTestContext(t,
		agent.WithBeforeToolCallback(func(tool types.Tool, args map[string]any, toolCtx *types.ToolContext) (map[string]any, error) {
			if tool.Name() == "blocked" {
				return map[string]any{"error": "tool disabled"}, nil
			}
			return nil, nil
		}),
		agent.WithAfterToolCallback(func(tool types.Tool, args map[string]any, toolCtx *types.ToolContext, toolResponse map[string]any) (map[string]any, error) {
			toolResponse["audited"] = true
			return toolResponse, nil
		}),
	)

	toolMap := map[string]types.Tool{add.Name(): add}
	event := functionCallEvent(&genai.FunctionCall{Name: "add", ID: "call-1"})

	responseEvent, err := llmflow.HandleFunctionCalls(ctx, ictx, event, toolMap, nil)
	if err != nil {
		t.Fatalf("HandleFunctionCalls: %v", err)
	}

	funcResponses := responseEvent.GetFunctionResponses()
	want := map[string]any{"sum": float64(3), "audited": true}
	if diff := cmp.Diff(want, funcResponses[0].Response); diff != "" {
		t.Errorf("rewritten response mismatch (-want +got):\n%s", diff)
	}
}

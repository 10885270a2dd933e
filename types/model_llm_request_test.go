// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"strings"
	"testing"

	"google.golang.org/genai"
)

// stubTool is a declaration-only tool for request assembly tests.
type stubTool struct {
	name        string
	declaration *genai.FunctionDeclaration
}

var _ Tool = (*stubTool)(nil)

func (t *stubTool) Name() string        { return t.name }
func (t *stubTool) Description() string { return "" }
func (t *stubTool) IsLongRunning() bool { return false }

func (t *stubTool) GetDeclaration() *genai.FunctionDeclaration {
	return t.declaration
}

func (t *stubTool) Run(ctx context.Context, args map[string]any, toolCtx *ToolContext) (any, error) {
	return nil, nil
}

func (t *stubTool) ProcessLLMRequest(ctx context.Context, toolCtx *ToolContext, request *LLMRequest) error {
	request.AppendTools(t)
	return nil
}

func declared(name string) *stubTool {
	return &stubTool{
		name:        name,
		declaration: &genai.FunctionDeclaration{Name: name},
	}
}

func TestLLMRequestAppendTools(t *testing.T) {
	request := NewLLMRequest(nil)

	request.AppendTools(declared("search"))
	request.AppendTools(declared("report"), &stubTool{name: "instructions_only"})

	if len(request.ToolMap) != 3 {
		t.Errorf("ToolMap has %d entries, want 3", len(request.ToolMap))
	}

	// All declarations land in one function-calling toolset.
	if len(request.Config.Tools) != 1 {
		t.Fatalf("got %d tool entries, want 1", len(request.Config.Tools))
	}
	declarations := request.Config.Tools[0].FunctionDeclarations
	if len(declarations) != 2 {
		t.Fatalf("got %d declarations, want 2", len(declarations))
	}
	if declarations[0].Name != "search" || declarations[1].Name != "report" {
		t.Errorf("declarations = %s, %s; want search, report", declarations[0].Name, declarations[1].Name)
	}
}

func TestLLMRequestAppendInstructions(t *testing.T) {
	request := NewLLMRequest(nil)

	request.AppendInstructions("You are a support agent.")
	request.AppendInstructions("Always answer politely.")

	var texts []string
	for _, part := range request.Config.SystemInstruction.Parts {
		texts = append(texts, part.Text)
	}
	joined := strings.Join(texts, "")
	if !strings.Contains(joined, "You are a support agent.") || !strings.Contains(joined, "Always answer politely.") {
		t.Errorf("system instruction missing appended text: %q", joined)
	}
}

func TestEventIsFinalResponse(t *testing.T) {
	textEvent := NewEvent().WithContent(genai.NewContentFromText("done", "model"))
	if !textEvent.IsFinalResponse() {
		t.Error("plain text event should be final")
	}

	callEvent := NewEvent().WithContent(&genai.Content{
		Role:  "model",
		Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{Name: "search"}}},
	})
	if callEvent.IsFinalResponse() {
		t.Error("function call event should not be final")
	}

	partialEvent := NewEvent().WithContent(genai.NewContentFromText("do", "model"))
	partialEvent.Partial = true
	if partialEvent.IsFinalResponse() {
		t.Error("partial event should not be final")
	}

	longRunning := NewEvent().WithContent(&genai.Content{
		Role:  "model",
		Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{Name: "ask_user", ID: "call-1"}}},
	}).WithLongRunningToolIDs("call-1")
	if !longRunning.IsFinalResponse() {
		t.Error("long-running call event should be final for the client")
	}
}

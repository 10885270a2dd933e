// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow_test

import (
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/agent"
	"github.com/eriperspective/agentflow/flow/llmflow"
	"github.com/eriperspective/agentflow/session"
	"github.com/eriperspective/agentflow/types"
)

// collectProcessorEvents drains a processor run, failing the test on error.
func collectProcessorEvents(t *testing.T, ictx *types.InvocationContext, processor types.LLMRequestProcessor, request *types.LLMRequest) []*types.Event {
	t.Helper()

	var events []*types.Event
	for event, err := range processor.Run(t.Context(), ictx, request) {
		if err != nil {
			t.Fatalf("processor returned error: %v", err)
		}
		if event != nil {
			events = append(events, event)
		}
	}
	return events
}

func textEvent(author, role, text string) *types.Event {
	return types.NewEvent().
		WithAuthor(author).
		WithContent(genai.NewContentFromText(text, genai.Role(role)))
}

func TestContentLLMRequestProcessorRun(t *testing.T) {
	ctx := t.Context()

	helper, err := agent.NewLLMAgent(ctx, "helper")
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	sess := session.NewSession("test-app", "test-user", "test-session", nil, time.Now())
	sess.AddEvent(
		textEvent("user", "user", "Hello"),
		textEvent("helper", "model", "Hi, how can I help?"),
		// Skipped: a single empty text part carries nothing for the model.
		types.NewEvent().WithAuthor("helper").WithContent(&genai.Content{
			Role:  "model",
			Parts: []*genai.Part{{Text: ""}},
		}),
		textEvent("researcher", "model", "The answer is 42."),
	)

	ictx := &types.InvocationContext{
		Agent:   helper,
		Session: sess,
	}

	request := &types.LLMRequest{}
	collectProcessorEvents(t, ictx, &llmflow.ContentLLMRequestProcessor{}, request)

	if len(request.Contents) != 3 {
		t.Fatalf("got %d contents, want 3", len(request.Contents))
	}
	if got := request.Contents[0].Parts[0].Text; got != "Hello" {
		t.Errorf("first content = %q, want %q", got, "Hello")
	}

	// The other agent's reply is rewritten as user context.
	foreign := request.Contents[2]
	if foreign.Role != "user" {
		t.Errorf("foreign content role = %q, want user", foreign.Role)
	}
	if got := foreign.Parts[0].Text; got != "For context:" {
		t.Errorf("foreign content preamble = %q", got)
	}
	if got := foreign.Parts[1].Text; !strings.Contains(got, "[researcher] said: The answer is 42.") {
		t.Errorf("foreign content body = %q", got)
	}
}

func TestContentLLMRequestProcessorHistoryWindow(t *testing.T) {
	ctx := t.Context()

	helper, err := agent.NewLLMAgent(ctx, "helper", agent.WithHistoryWindow(2))
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	sess := session.NewSession("test-app", "test-user", "test-session", nil, time.Now())
	sess.AddEvent(
		textEvent("user", "user", "first"),
		textEvent("helper", "model", "second"),
		textEvent("user", "user", "third"),
		textEvent("helper", "model", "fourth"),
	)

	ictx := &types.InvocationContext{
		Agent:   helper,
		Session: sess,
	}

	request := &types.LLMRequest{}
	collectProcessorEvents(t, ictx, &llmflow.ContentLLMRequestProcessor{}, request)

	if len(request.Contents) != 2 {
		t.Fatalf("got %d contents, want 2", len(request.Contents))
	}
	if got := request.Contents[0].Parts[0].Text; got != "third" {
		t.Errorf("window starts at %q, want %q", got, "third")
	}
	if got := request.Contents[1].Parts[0].Text; got != "fourth" {
		t.Errorf("window ends at %q, want %q", got, "fourth")
	}
}

func TestContentLLMRequestProcessorIncludeContentsNone(t *testing.T) {
	ctx := t.Context()

	helper, err := agent.NewLLMAgent(ctx, "helper", agent.WithIncludeContents(types.IncludeContentsNone))
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	sess := session.NewSession("test-app", "test-user", "test-session", nil, time.Now())
	sess.AddEvent(textEvent("user", "user", "Hello"))

	ictx := &types.InvocationContext{
		Agent:   helper,
		Session: sess,
	}

	request := &types.LLMRequest{}
	collectProcessorEvents(t, ictx, &llmflow.ContentLLMRequestProcessor{}, request)

	if len(request.Contents) != 0 {
		t.Errorf("got %d contents, want none", len(request.Contents))
	}
}

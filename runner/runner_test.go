// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package runner_test

import (
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/agent"
	"github.com/eriperspective/agentflow/memory"
	"github.com/eriperspective/agentflow/runner"
	"github.com/eriperspective/agentflow/types"
)

// newGreeterAgent returns an agent that replies with a fixed message through
// a before-agent callback, so no model is involved.
func newGreeterAgent(reply string) types.Agent {
	return agent.NewSequentialAgent("greeter",
		types.WithBeforeAgentCallbacks(func(cctx *types.CallbackContext) (*genai.Content, error) {
			return genai.NewContentFromText(reply, genai.RoleModel), nil
		}),
	)
}

func TestRunnerRun(t *testing.T) {
	ctx := t.Context()

	r := runner.NewRunner("test-app", newGreeterAgent("hello there"))
	defer r.Close()

	if _, err := r.SessionService().CreateSession(ctx, "test-app", "user-1", "session-1", nil); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	message := genai.NewContentFromText("hi", genai.RoleUser)
	var events []*types.Event
	for event, err := range r.Run(ctx, "user-1", "session-1", message) {
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		events = append(events, event)
	}

	if len(events) != 1 {
		t.Fatalf("yielded %d events, want 1", len(events))
	}
	if got, want := events[0].Author, "greeter"; got != want {
		t.Errorf("event author = %q, want %q", got, want)
	}
	if got := events[0].Content.Parts[0].Text; got != "hello there" {
		t.Errorf("event text = %q, want %q", got, "hello there")
	}

	// The user message and the agent reply are both persisted.
	sess, err := r.SessionService().GetSession(ctx, "test-app", "user-1", "session-1", nil)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	persisted := sess.Events()
	if len(persisted) != 2 {
		t.Fatalf("session has %d events, want 2", len(persisted))
	}
	if got, want := persisted[0].Author, "user"; got != want {
		t.Errorf("first persisted author = %q, want %q", got, want)
	}
	if got, want := persisted[1].Author, "greeter"; got != want {
		t.Errorf("second persisted author = %q, want %q", got, want)
	}
}

func TestRunnerRunDefaultsRunConfig(t *testing.T) {
	ctx := t.Context()

	var seen *types.RunConfig
	greeter := agent.NewSequentialAgent("greeter",
		types.WithBeforeAgentCallbacks(func(cctx *types.CallbackContext) (*genai.Content, error) {
			seen = cctx.InvocationContext.RunConfig
			return genai.NewContentFromText("ok", genai.RoleModel), nil
		}),
	)

	r := runner.NewRunner("test-app", greeter)
	defer r.Close()

	if _, err := r.SessionService().CreateSession(ctx, "test-app", "user-1", "session-1", nil); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	for _, err := range r.Run(ctx, "user-1", "session-1", genai.NewContentFromText("hi", genai.RoleUser)) {
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	}

	if seen == nil {
		t.Fatal("invocation ran without a run config")
	}
	if got, want := seen.MaxLLMCalls, types.DefaultMaxLLMCalls; got != want {
		t.Errorf("MaxLLMCalls = %d, want %d", got, want)
	}

	// A caller-provided run config still wins over the default.
	seen = nil
	for _, err := range r.Run(ctx, "user-1", "session-1", genai.NewContentFromText("hi", genai.RoleUser),
		types.WithRunConfig(&types.RunConfig{MaxLLMCalls: 3})) {
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
	if seen == nil || seen.MaxLLMCalls != 3 {
		t.Errorf("caller run config not applied: %+v", seen)
	}
}

func TestRunnerRunUnknownSession(t *testing.T) {
	ctx := t.Context()

	r := runner.NewRunner("test-app", newGreeterAgent("unused"))
	defer r.Close()

	var gotErr error
	for _, err := range r.Run(ctx, "user-1", "no-such-session", genai.NewContentFromText("hi", genai.RoleUser)) {
		if err != nil {
			gotErr = err
			break
		}
	}
	if gotErr == nil {
		t.Fatal("expected an error for an unknown session")
	}
	if !strings.Contains(gotErr.Error(), "no-such-session") {
		t.Errorf("error %q does not name the session", gotErr)
	}
}

func TestRunnerCommitSessionToMemory(t *testing.T) {
	ctx := t.Context()

	memoryService := memory.NewInMemoryService()
	r := runner.NewRunner("test-app", newGreeterAgent("your order shipped yesterday"),
		runner.WithMemoryService(memoryService),
	)
	defer r.Close()

	if _, err := r.SessionService().CreateSession(ctx, "test-app", "user-1", "session-1", nil); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	for _, err := range r.Run(ctx, "user-1", "session-1", genai.NewContentFromText("where is my order?", genai.RoleUser)) {
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	}

	if err := r.CommitSessionToMemory(ctx, "user-1", "session-1"); err != nil {
		t.Fatalf("CommitSessionToMemory: %v", err)
	}

	resp, err := memoryService.SearchMemory(ctx, "test-app", "user-1", "order")
	if err != nil {
		t.Fatalf("SearchMemory: %v", err)
	}
	if len(resp.Memories) == 0 {
		t.Fatal("expected at least one memory for query \"order\"")
	}
}

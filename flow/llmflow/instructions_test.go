// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow_test

import (
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/agent"
	"github.com/eriperspective/agentflow/artifact"
	"github.com/eriperspective/agentflow/flow/llmflow"
	"github.com/eriperspective/agentflow/session"
	"github.com/eriperspective/agentflow/types"
)

func systemInstructionText(t *testing.T, request *types.LLMRequest) string {
	t.Helper()

	if request.Config == nil || request.Config.SystemInstruction == nil {
		t.Fatal("no system instruction on the request")
	}
	var texts []string
	for _, part := range request.Config.SystemInstruction.Parts {
		texts = append(texts, part.Text)
	}
	return strings.Join(texts, "\n\n")
}

func TestInstructionsLLMRequestProcessorStateTemplating(t *testing.T) {
	ctx := t.Context()

	helper, err := agent.NewLLMAgent(ctx, "helper",
		agent.WithInstruction[string]("You assist {customer_name}, plan {plan?}. Literal {not a var} stays."),
	)
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	sess := session.NewSession("test-app", "test-user", "test-session", map[string]any{
		"customer_name": "Ada",
	}, time.Now())

	ictx := &types.InvocationContext{
		Agent:   helper,
		Session: sess,
	}

	request := &types.LLMRequest{}
	collectProcessorEvents(t, ictx, &llmflow.InstructionsLLMRequestProcessor{}, request)

	got := systemInstructionText(t, request)
	if !strings.Contains(got, "You assist Ada, plan .") {
		t.Errorf("state values not injected: %q", got)
	}
	if !strings.Contains(got, "Literal {not a var} stays.") {
		t.Errorf("non-identifier placeholder was rewritten: %q", got)
	}
}

func TestInstructionsLLMRequestProcessorUnresolvedPlaceholder(t *testing.T) {
	ctx := t.Context()

	helper, err := agent.NewLLMAgent(ctx, "helper",
		agent.WithInstruction[string]("Track order {order_id}."),
	)
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	sess := session.NewSession("test-app", "test-user", "test-session", nil, time.Now())
	ictx := &types.InvocationContext{
		Agent:   helper,
		Session: sess,
	}

	request := &types.LLMRequest{}
	collectProcessorEvents(t, ictx, &llmflow.InstructionsLLMRequestProcessor{}, request)

	// A required variable with no state value stays in the prompt untouched.
	if got := systemInstructionText(t, request); !strings.Contains(got, "{order_id}") {
		t.Errorf("unresolved placeholder dropped: %q", got)
	}
}

func TestInstructionsLLMRequestProcessorArtifactTemplating(t *testing.T) {
	ctx := t.Context()

	helper, err := agent.NewLLMAgent(ctx, "helper",
		agent.WithInstruction[string]("Follow the policy: {artifact.policy}"),
	)
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	sess := session.NewSession("test-app", "test-user", "test-session", nil, time.Now())
	artifacts := artifact.NewInMemoryService()
	for _, text := range []string{"Be terse.", "Be thorough."} {
		if _, err := artifacts.SaveArtifact(ctx, "test-app", "test-user", "test-session", "policy", genai.NewPartFromText(text)); err != nil {
			t.Fatalf("SaveArtifact: %v", err)
		}
	}

	ictx := &types.InvocationContext{
		Agent:           helper,
		Session:         sess,
		ArtifactService: artifacts,
	}

	request := &types.LLMRequest{}
	collectProcessorEvents(t, ictx, &llmflow.InstructionsLLMRequestProcessor{}, request)

	// The latest saved version wins.
	if got := systemInstructionText(t, request); !strings.Contains(got, "Follow the policy: Be thorough.") {
		t.Errorf("artifact text not injected: %q", got)
	}
}

func TestInstructionsLLMRequestProcessorMissingArtifact(t *testing.T) {
	ctx := t.Context()

	helper, err := agent.NewLLMAgent(ctx, "helper",
		agent.WithInstruction[string]("Follow the policy: {artifact.policy}"),
	)
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	sess := session.NewSession("test-app", "test-user", "test-session", nil, time.Now())
	ictx := &types.InvocationContext{
		Agent:           helper,
		Session:         sess,
		ArtifactService: artifact.NewInMemoryService(),
	}

	request := &types.LLMRequest{}
	collectProcessorEvents(t, ictx, &llmflow.InstructionsLLMRequestProcessor{}, request)

	// An artifact that was never saved leaves the placeholder untouched.
	if got := systemInstructionText(t, request); !strings.Contains(got, "{artifact.policy}") {
		t.Errorf("missing artifact placeholder dropped: %q", got)
	}
}

func TestInstructionsLLMRequestProcessorInstructionProvider(t *testing.T) {
	ctx := t.Context()

	helper, err := agent.NewLLMAgent(ctx, "helper",
		agent.WithInstruction[types.InstructionProvider](func(rctx *types.ReadOnlyContext) string {
			return "You serve session " + rctx.InvocationContextID() + "."
		}),
	)
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	sess := session.NewSession("test-app", "test-user", "test-session", nil, time.Now())
	ictx := &types.InvocationContext{
		Agent:        helper,
		Session:      sess,
		InvocationID: "e-123",
	}

	request := &types.LLMRequest{}
	collectProcessorEvents(t, ictx, &llmflow.InstructionsLLMRequestProcessor{}, request)

	if got := systemInstructionText(t, request); !strings.Contains(got, "You serve session e-123.") {
		t.Errorf("provider instruction missing: %q", got)
	}
}

func TestIdentityLLMRequestProcessorRun(t *testing.T) {
	ctx := t.Context()

	helper, err := agent.NewLLMAgent(ctx, "helper", agent.WithDescription("Answers billing questions."))
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	sess := session.NewSession("test-app", "test-user", "test-session", nil, time.Now())
	ictx := &types.InvocationContext{
		Agent:   helper,
		Session: sess,
	}

	request := &types.LLMRequest{}
	collectProcessorEvents(t, ictx, &llmflow.IdentityLLMRequestProcessor{}, request)

	got := systemInstructionText(t, request)
	if !strings.Contains(got, `Your internal name is "helper".`) {
		t.Errorf("identity instruction missing: %q", got)
	}
	if !strings.Contains(got, "Answers billing questions.") {
		t.Errorf("description missing: %q", got)
	}
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package agent_test

import (
	"context"
	"testing"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/agent"
	"github.com/eriperspective/agentflow/model"
	"github.com/eriperspective/agentflow/types"
)

func TestNewLLMAgent(t *testing.T) {
	ctx := t.Context()

	sub, err := agent.NewLLMAgent(ctx, "researcher",
		agent.WithDescription("Researches a topic."),
	)
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	root, err := agent.NewLLMAgent(ctx, "coordinator",
		agent.WithInstruction[string]("Coordinate the work."),
		agent.WithSubAgents(sub),
	)
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	if got := root.CanonicalInstructions(nil); got != "Coordinate the work." {
		t.Errorf("CanonicalInstructions = %q", got)
	}

	if sub.ParentAgent() != types.Agent(root) {
		t.Error("sub-agent parent not bound to root")
	}
	if sub.RootAgent() != types.Agent(root) {
		t.Error("RootAgent of sub-agent is not root")
	}

	found := root.FindAgent("researcher")
	if found == nil || found.Name() != "researcher" {
		t.Errorf("FindAgent(researcher) = %v", found)
	}
	if _, ok := found.AsLLMAgent(); !ok {
		t.Error("found agent lost its LLM agent identity")
	}
}

func TestNewLLMAgentOutputSchemaValidation(t *testing.T) {
	ctx := t.Context()

	schema := &genai.Schema{Type: genai.TypeObject}

	// Output schema with sub-agents is rejected.
	sub, err := agent.NewLLMAgent(ctx, "sub")
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}
	if _, err := agent.NewLLMAgent(ctx, "structured",
		agent.WithOutputSchema(schema),
		agent.WithSubAgents(sub),
	); err == nil {
		t.Error("expected error for output schema with sub agents")
	}

	// Output schema alone forces transfer off.
	a, err := agent.NewLLMAgent(ctx, "structured",
		agent.WithOutputSchema(schema),
	)
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}
	if !a.DisallowTransferToParent() || !a.DisallowTransferToPeers() {
		t.Error("output schema should disable agent transfer")
	}
}

func TestLLMAgentCanonicalModel(t *testing.T) {
	ctx := t.Context()

	if err := model.RegisterLLM(`^stub-model$`, func(ctx context.Context, apiKey, modelName string) (types.Model, error) {
		return model.NewBaseLLM(modelName), nil
	}); err != nil {
		t.Fatalf("RegisterLLM: %v", err)
	}

	named, err := agent.NewLLMAgent(ctx, "namer", agent.WithModelString("stub-model"))
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}
	resolved, err := named.CanonicalModel(ctx)
	if err != nil {
		t.Fatalf("CanonicalModel: %v", err)
	}
	if got := resolved.Name(); got != "stub-model" {
		t.Errorf("resolved model = %q, want stub-model", got)
	}

	// Sub-agents without a model of their own inherit from the ancestor.
	child, err := agent.NewLLMAgent(ctx, "child")
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}
	if _, err := agent.NewLLMAgent(ctx, "parent",
		agent.WithModel(model.NewBaseLLM("parent-model")),
		agent.WithSubAgents(child),
	); err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}
	inherited, err := child.CanonicalModel(ctx)
	if err != nil {
		t.Fatalf("CanonicalModel: %v", err)
	}
	if got := inherited.Name(); got != "parent-model" {
		t.Errorf("inherited model = %q, want parent-model", got)
	}

	// No model anywhere in the tree is an error.
	orphan, err := agent.NewLLMAgent(ctx, "orphan")
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}
	if _, err := orphan.CanonicalModel(ctx); err == nil {
		t.Error("expected error when no model is set anywhere")
	}
}

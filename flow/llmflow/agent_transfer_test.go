// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow_test

import (
	"strings"
	"testing"
	"time"

	"github.com/eriperspective/agentflow/agent"
	"github.com/eriperspective/agentflow/flow/llmflow"
	"github.com/eriperspective/agentflow/session"
	"github.com/eriperspective/agentflow/types"
)

func TestAgentTransferLLMRequestProcessorRun(t *testing.T) {
	ctx := t.Context()

	billing, err := agent.NewLLMAgent(ctx, "billing", agent.WithDescription("Handles billing questions."))
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}
	shipping, err := agent.NewLLMAgent(ctx, "shipping", agent.WithDescription("Handles shipping questions."))
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}
	supervisor, err := agent.NewLLMAgent(ctx, "supervisor",
		agent.WithDescription("Routes customer questions."),
		agent.WithSubAgents(billing, shipping),
	)
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	sess := session.NewSession("test-app", "test-user", "test-session", nil, time.Now())
	ictx := &types.InvocationContext{
		Agent:   supervisor,
		Session: sess,
	}

	request := &types.LLMRequest{}
	collectProcessorEvents(t, ictx, &llmflow.AgentTransferLLMRequestProcessor{}, request)

	instructions := systemInstructionText(t, request)
	for _, want := range []string{"Agent name: billing", "Agent name: shipping", llmflow.TransferToAgentFunctionName} {
		if !strings.Contains(instructions, want) {
			t.Errorf("transfer instructions missing %q:\n%s", want, instructions)
		}
	}

	transferTool, ok := request.ToolMap[llmflow.TransferToAgentFunctionName]
	if !ok {
		t.Fatal("transfer_to_agent tool not registered on the request")
	}
	declaration := transferTool.GetDeclaration()
	if declaration == nil || declaration.Parameters.Properties["agent_name"] == nil {
		t.Error("transfer tool declaration missing agent_name parameter")
	}
}

func TestAgentTransferLLMRequestProcessorNoTargets(t *testing.T) {
	ctx := t.Context()

	solo, err := agent.NewLLMAgent(ctx, "solo")
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	sess := session.NewSession("test-app", "test-user", "test-session", nil, time.Now())
	ictx := &types.InvocationContext{
		Agent:   solo,
		Session: sess,
	}

	request := &types.LLMRequest{}
	collectProcessorEvents(t, ictx, &llmflow.AgentTransferLLMRequestProcessor{}, request)

	if request.Config != nil && request.Config.SystemInstruction != nil {
		t.Error("expected no instructions for an agent without transfer targets")
	}
	if len(request.ToolMap) != 0 {
		t.Error("expected no tools for an agent without transfer targets")
	}
}

func TestTransferToAgentToolRun(t *testing.T) {
	ctx := t.Context()

	billing, err := agent.NewLLMAgent(ctx, "billing")
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}
	supervisor, err := agent.NewLLMAgent(ctx, "supervisor", agent.WithSubAgents(billing))
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}

	sess := session.NewSession("test-app", "test-user", "test-session", nil, time.Now())
	ictx := &types.InvocationContext{
		Agent:   supervisor,
		Session: sess,
	}

	// Registering runs through the processor, same as a real request build.
	request := &types.LLMRequest{}
	collectProcessorEvents(t, ictx, &llmflow.AgentTransferLLMRequestProcessor{}, request)

	transferTool := request.ToolMap[llmflow.TransferToAgentFunctionName]
	if transferTool == nil {
		t.Fatal("transfer_to_agent tool not registered")
	}

	toolCtx := types.NewToolContext(ictx)
	if _, err := transferTool.Run(ctx, map[string]any{"agent_name": "billing"}, toolCtx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := toolCtx.Actions().TransferToAgent; got != "billing" {
		t.Errorf("TransferToAgent = %q, want billing", got)
	}

	if _, err := transferTool.Run(ctx, map[string]any{"agent_name": 42}, toolCtx); err == nil {
		t.Error("expected an error for a non-string agent_name")
	}
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/types"
)

// TransferToAgentFunctionName is the function name the model calls to hand the
// conversation to another agent.
const TransferToAgentFunctionName = "transfer_to_agent"

// AgentTransferLLMRequestProcessor makes the current agent's transfer targets
// available to the model via the transfer_to_agent function.
type AgentTransferLLMRequestProcessor struct{}

var _ types.LLMRequestProcessor = (*AgentTransferLLMRequestProcessor)(nil)

// Run implements [types.LLMRequestProcessor].
func (rp *AgentTransferLLMRequestProcessor) Run(ctx context.Context, ictx *types.InvocationContext, request *types.LLMRequest) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		llmAgent, ok := ictx.Agent.AsLLMAgent()
		if !ok {
			return
		}

		transferTargets := rp.getTransferTargets(llmAgent)
		if len(transferTargets) == 0 {
			return
		}

		request.AppendInstructions(
			rp.buildTargetAgentsInstructions(llmAgent, transferTargets),
		)

		toolCtx := types.NewToolContext(ictx)
		transferTool := &transferToAgentTool{}
		if err := transferTool.ProcessLLMRequest(ctx, toolCtx, request); err != nil {
			yield(nil, err)
			return
		}
	}
}

func (rp *AgentTransferLLMRequestProcessor) buildTargetAgentsInfo(targetAgent types.Agent) string {
	return fmt.Sprintf(`
Agent name: %s
Agent description: %s
`, targetAgent.Name(), targetAgent.Description())
}

func (rp *AgentTransferLLMRequestProcessor) buildTargetAgentsInstructions(llmAgent types.LLMAgent, targetAgents []types.Agent) string {
	targetAgentsInfos := make([]string, len(targetAgents))
	for i, targetAgent := range targetAgents {
		targetAgentsInfos[i] = rp.buildTargetAgentsInfo(targetAgent)
	}

	sysInst := `
You have a list of other agents to transfer to:

` +
		strings.Join(targetAgentsInfos, "\n") + `

If you are the best to answer the question according to your description, you
can answer it.

If another agent is better for answering the question according to its
description, call ` + TransferToAgentFunctionName + ` function to transfer the
question to that agent. When transferring, do not generate any text other than
the function call.
`

	if llmAgent.ParentAgent() != nil {
		sysInst += `
Your parent agent is ` + llmAgent.ParentAgent().Name() + `. If neither the other agents nor
you are best for answering the question according to the descriptions, transfer
to your parent agent. If you don't have parent agent, try answer by yourself.
`
	}

	return sysInst
}

func (rp *AgentTransferLLMRequestProcessor) getTransferTargets(llmAgent types.LLMAgent) []types.Agent {
	agents := llmAgent.SubAgents()

	parent := llmAgent.ParentAgent()
	if parent == nil {
		return agents
	}
	if _, ok := parent.AsLLMAgent(); !ok {
		return agents
	}

	if !llmAgent.DisallowTransferToParent() {
		agents = append(agents, parent)
	}

	if !llmAgent.DisallowTransferToPeers() {
		for _, subAgent := range parent.SubAgents() {
			if subAgent.Name() != llmAgent.Name() {
				agents = append([]types.Agent{subAgent}, agents...)
			}
		}
	}

	return agents
}

// transferToAgentTool is the built-in tool backing the transfer_to_agent function.
type transferToAgentTool struct{}

var _ types.Tool = (*transferToAgentTool)(nil)

// Name implements [types.Tool].
func (t *transferToAgentTool) Name() string {
	return TransferToAgentFunctionName
}

// Description implements [types.Tool].
func (t *transferToAgentTool) Description() string {
	return "Transfer the question to another agent."
}

// IsLongRunning implements [types.Tool].
func (t *transferToAgentTool) IsLongRunning() bool {
	return false
}

// GetDeclaration implements [types.Tool].
func (t *transferToAgentTool) GetDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        TransferToAgentFunctionName,
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"agent_name": {
					Type:        genai.TypeString,
					Description: "The name of the agent to transfer the question to.",
				},
			},
			Required: []string{"agent_name"},
		},
	}
}

// Run implements [types.Tool].
func (t *transferToAgentTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	agentName, ok := args["agent_name"].(string)
	if !ok {
		return nil, fmt.Errorf("agent_name must be a string: %v", args["agent_name"])
	}
	toolCtx.Actions().TransferToAgent = agentName
	return map[string]any{}, nil
}

// ProcessLLMRequest implements [types.Tool].
func (t *transferToAgentTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	request.AppendTools(t)
	return nil
}

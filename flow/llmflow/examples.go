// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"iter"

	"github.com/eriperspective/agentflow/example"
	"github.com/eriperspective/agentflow/internal/xiter"
	"github.com/eriperspective/agentflow/types"
)

// ExamplesLLMRequestProcessor appends the agent's few-shot examples to the
// system instruction.
type ExamplesLLMRequestProcessor struct{}

var _ types.LLMRequestProcessor = (*ExamplesLLMRequestProcessor)(nil)

// Run implements [types.LLMRequestProcessor].
func (p *ExamplesLLMRequestProcessor) Run(ctx context.Context, ictx *types.InvocationContext, request *types.LLMRequest) iter.Seq2[*types.Event, error] {
	llmAgent, ok := ictx.Agent.AsLLMAgent()
	if !ok {
		return xiter.Empty[types.Event]()
	}

	provider := llmAgent.Examples()
	if provider == nil {
		return xiter.Empty[types.Event]()
	}

	query := ""
	if ictx.UserContent != nil && len(ictx.UserContent.Parts) > 0 {
		query = ictx.UserContent.Parts[0].Text
	}

	instruction, err := example.BuildExampleInstruction(provider, query)
	if err != nil {
		return xiter.Error[types.Event](err)
	}
	if instruction != "" {
		request.AppendInstructions(instruction)
	}
	return xiter.Empty[types.Event]()
}

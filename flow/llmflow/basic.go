// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"iter"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/types"
)

// BasicLLMRequestProcessor seeds the request with the agent's model name,
// generation config and output schema.
type BasicLLMRequestProcessor struct{}

var _ types.LLMRequestProcessor = (*BasicLLMRequestProcessor)(nil)

// Run implements [types.LLMRequestProcessor].
func (p *BasicLLMRequestProcessor) Run(ctx context.Context, ictx *types.InvocationContext, request *types.LLMRequest) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		llmAgent, ok := ictx.Agent.AsLLMAgent()
		if !ok {
			return
		}

		model, err := llmAgent.CanonicalModel(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		request.Model = model.Name()

		config := llmAgent.GenerateContentConfig()
		if config == nil {
			config = &genai.GenerateContentConfig{}
		}
		request.Config = config

		if outputSchema := llmAgent.OutputSchema(); outputSchema != nil {
			request.SetOutputSchema(outputSchema)
		}
	}
}

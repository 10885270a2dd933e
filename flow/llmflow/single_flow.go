// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"github.com/eriperspective/agentflow/types"
)

// SingleFlow is the LLM flow that handles tool calls.
//
// A single flow only considers an agent itself and its tools.
// No sub-agents are allowed for single flow.
type SingleFlow struct {
	*LLMFlow
}

var _ types.Flow = (*SingleFlow)(nil)

// NewSingleFlow creates a new [SingleFlow] with the default [types.LLMRequestProcessor] and [types.LLMResponseProcessor].
func NewSingleFlow() *SingleFlow {
	flow := &SingleFlow{
		LLMFlow: NewLLMFlow(),
	}
	flow.LLMFlow.WithRequestProcessors(SingleRequestProcessor()...)
	flow.LLMFlow.WithResponseProcessors(SingleResponseProcessor()...)

	return flow
}

// SingleRequestProcessor returns the default [types.LLMRequestProcessor] for [SingleFlow].
func SingleRequestProcessor() []types.LLMRequestProcessor {
	return []types.LLMRequestProcessor{
		&BasicLLMRequestProcessor{},
		&InstructionsLLMRequestProcessor{},
		&IdentityLLMRequestProcessor{},
		&ExamplesLLMRequestProcessor{},
		&ContentLLMRequestProcessor{},
		// Some implementations of NL Planning mark planning contents as thoughts
		// in the post processor. Since these need to be unmarked, NL Planning
		// should be after contents.
		&NLPlanningRequestProcessor{},
	}
}

// SingleResponseProcessor returns the default [types.LLMResponseProcessor] for [SingleFlow].
func SingleResponseProcessor() []types.LLMResponseProcessor {
	return []types.LLMResponseProcessor{
		&NLPlanningResponseProcessor{},
	}
}

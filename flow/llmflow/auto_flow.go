// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"github.com/eriperspective/agentflow/types"
)

// AutoFlow is [SingleFlow] with agent transfer capability.
//
// Agent transfer is allowed in the following direction:
//
//  1. from parent to sub-agent;
//  2. from sub-agent to parent;
//  3. from sub-agent to its peer agents;
//
// For peer-agent transfers, it's only enabled when all below conditions are met:
//
//   - The parent agent is also of AutoFlow;
//   - `DisallowTransferToPeers` option of this agent is false (default).
type AutoFlow struct {
	*LLMFlow
}

var _ types.Flow = (*AutoFlow)(nil)

// NewAutoFlow creates a new [AutoFlow] with the default [types.LLMRequestProcessor] and [types.LLMResponseProcessor].
func NewAutoFlow() *AutoFlow {
	flow := &AutoFlow{
		LLMFlow: NewLLMFlow(),
	}
	flow.LLMFlow.WithRequestProcessors(AutoRequestProcessor()...)
	flow.LLMFlow.WithResponseProcessors(AutoResponseProcessor()...)

	return flow
}

// AutoRequestProcessor returns the default [types.LLMRequestProcessor] for [AutoFlow].
func AutoRequestProcessor() []types.LLMRequestProcessor {
	processors := SingleRequestProcessor()
	return append(processors, &AgentTransferLLMRequestProcessor{})
}

// AutoResponseProcessor returns the default [types.LLMResponseProcessor] for [AutoFlow].
func AutoResponseProcessor() []types.LLMResponseProcessor {
	return SingleResponseProcessor()
}

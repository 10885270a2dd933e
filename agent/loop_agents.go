// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"iter"

	"github.com/eriperspective/agentflow/types"
)

// LoopAgent runs its sub-agents repeatedly until a sub-agent escalates or the
// iteration limit is reached.
type LoopAgent struct {
	base *types.BaseAgent

	// The maximum number of iterations to run the loop agent.
	//
	// If zero, the loop agent runs until a sub-agent escalates.
	maxIterations int
}

var _ types.Agent = (*LoopAgent)(nil)

// NewLoopAgent creates a new loop agent with the given name and options.
func NewLoopAgent(name string, opts ...types.Option) *LoopAgent {
	a := &LoopAgent{
		base:          types.NewBaseAgent(name, opts...),
		maxIterations: 10,
	}
	bindSubAgents(a, a.base.SubAgents())

	return a
}

// WithMaxIterations sets the maximum number of iterations.
func (a *LoopAgent) WithMaxIterations(maxIterations int) *LoopAgent {
	a.maxIterations = maxIterations
	return a
}

// AsLLMAgent implements [types.Agent].
func (a *LoopAgent) AsLLMAgent() (types.LLMAgent, bool) {
	return nil, false
}

// Name implements [types.Agent].
func (a *LoopAgent) Name() string {
	return a.base.Name()
}

// Description implements [types.Agent].
func (a *LoopAgent) Description() string {
	return a.base.Description()
}

// ParentAgent implements [types.Agent].
func (a *LoopAgent) ParentAgent() types.Agent {
	return a.base.ParentAgent()
}

// SubAgents implements [types.Agent].
func (a *LoopAgent) SubAgents() []types.Agent {
	return a.base.SubAgents()
}

// BeforeAgentCallbacks implements [types.Agent].
func (a *LoopAgent) BeforeAgentCallbacks() []types.AgentCallback {
	return a.base.BeforeAgentCallbacks()
}

// AfterAgentCallbacks implements [types.Agent].
func (a *LoopAgent) AfterAgentCallbacks() []types.AgentCallback {
	return a.base.AfterAgentCallbacks()
}

// SetParentAgent records the parent agent when this agent joins an agent tree.
func (a *LoopAgent) SetParentAgent(parent types.Agent) {
	a.base.SetParentAgent(parent)
}

// Execute implements [types.Agent].
func (a *LoopAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for timesLooped := 0; a.maxIterations == 0 || timesLooped < a.maxIterations; timesLooped++ {
			for _, subAgent := range a.base.SubAgents() {
				for event, err := range subAgent.Run(ctx, ictx) {
					if err != nil {
						yield(nil, err)
						return
					}
					if !yield(event, nil) {
						return
					}

					if event.Actions.Escalate {
						return
					}
				}
			}
		}
	}
}

// Run implements [types.Agent].
func (a *LoopAgent) Run(ctx context.Context, parentContext *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return types.RunAgent(ctx, parentContext, a)
}

// RootAgent implements [types.Agent].
func (a *LoopAgent) RootAgent() types.Agent {
	return types.RootAgentOf(a)
}

// FindAgent implements [types.Agent].
func (a *LoopAgent) FindAgent(name string) types.Agent {
	return types.FindAgentIn(a, name)
}

// FindSubAgent implements [types.Agent].
func (a *LoopAgent) FindSubAgent(name string) types.Agent {
	return types.FindSubAgentIn(a, name)
}

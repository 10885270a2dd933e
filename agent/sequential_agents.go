// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"iter"

	"github.com/eriperspective/agentflow/types"
)

// SequentialAgent is a shell agent that runs its sub-agents in sequence.
//
// Each sub-agent sees the events of the sub-agents that ran before it, so a
// chain of agents can build on each other's output, typically through output
// keys in session state.
type SequentialAgent struct {
	base *types.BaseAgent
}

var _ types.Agent = (*SequentialAgent)(nil)

// NewSequentialAgent creates a new sequential agent with the given name and options.
func NewSequentialAgent(name string, opts ...types.Option) *SequentialAgent {
	a := &SequentialAgent{
		base: types.NewBaseAgent(name, opts...),
	}
	bindSubAgents(a, a.base.SubAgents())

	return a
}

// AsLLMAgent implements [types.Agent].
func (a *SequentialAgent) AsLLMAgent() (types.LLMAgent, bool) {
	return nil, false
}

// Name implements [types.Agent].
func (a *SequentialAgent) Name() string {
	return a.base.Name()
}

// Description implements [types.Agent].
func (a *SequentialAgent) Description() string {
	return a.base.Description()
}

// ParentAgent implements [types.Agent].
func (a *SequentialAgent) ParentAgent() types.Agent {
	return a.base.ParentAgent()
}

// SubAgents implements [types.Agent].
func (a *SequentialAgent) SubAgents() []types.Agent {
	return a.base.SubAgents()
}

// BeforeAgentCallbacks implements [types.Agent].
func (a *SequentialAgent) BeforeAgentCallbacks() []types.AgentCallback {
	return a.base.BeforeAgentCallbacks()
}

// AfterAgentCallbacks implements [types.Agent].
func (a *SequentialAgent) AfterAgentCallbacks() []types.AgentCallback {
	return a.base.AfterAgentCallbacks()
}

// SetParentAgent records the parent agent when this agent joins an agent tree.
func (a *SequentialAgent) SetParentAgent(parent types.Agent) {
	a.base.SetParentAgent(parent)
}

// Execute implements [types.Agent].
func (a *SequentialAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for _, subAgent := range a.base.SubAgents() {
			for event, err := range subAgent.Run(ctx, ictx) {
				if !yield(event, err) {
					return
				}
			}
			if ictx.EndInvocation {
				return
			}
		}
	}
}

// Run implements [types.Agent].
func (a *SequentialAgent) Run(ctx context.Context, parentContext *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return types.RunAgent(ctx, parentContext, a)
}

// RootAgent implements [types.Agent].
func (a *SequentialAgent) RootAgent() types.Agent {
	return types.RootAgentOf(a)
}

// FindAgent implements [types.Agent].
func (a *SequentialAgent) FindAgent(name string) types.Agent {
	return types.FindAgentIn(a, name)
}

// FindSubAgent implements [types.Agent].
func (a *SequentialAgent) FindSubAgent(name string) types.Agent {
	return types.FindSubAgentIn(a, name)
}

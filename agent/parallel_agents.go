// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"iter"
	"sync"

	"github.com/eriperspective/agentflow/types"
)

// ParallelAgent is a shell agent that runs its sub-agents in parallel in an
// isolated manner.
//
// This approach is beneficial for scenarios requiring multiple perspectives or
// attempts on a single task, such as:
//
//   - Running different algorithms simultaneously.
//   - Generating multiple responses for review by a subsequent evaluation agent.
//
// Each sub-agent runs on its own branch, so peers do not see each other's
// conversation.
type ParallelAgent struct {
	base *types.BaseAgent
}

var _ types.Agent = (*ParallelAgent)(nil)

// NewParallelAgent creates a new parallel agent with the given name and sub-agents.
func NewParallelAgent(name string, agents ...types.Agent) *ParallelAgent {
	a := &ParallelAgent{
		base: types.NewBaseAgent(name, types.WithSubAgents(agents...)),
	}
	bindSubAgents(a, a.base.SubAgents())

	return a
}

// AsLLMAgent implements [types.Agent].
func (a *ParallelAgent) AsLLMAgent() (types.LLMAgent, bool) {
	return nil, false
}

// Name implements [types.Agent].
func (a *ParallelAgent) Name() string {
	return a.base.Name()
}

// Description implements [types.Agent].
func (a *ParallelAgent) Description() string {
	return a.base.Description()
}

// ParentAgent implements [types.Agent].
func (a *ParallelAgent) ParentAgent() types.Agent {
	return a.base.ParentAgent()
}

// SubAgents implements [types.Agent].
func (a *ParallelAgent) SubAgents() []types.Agent {
	return a.base.SubAgents()
}

// BeforeAgentCallbacks implements [types.Agent].
func (a *ParallelAgent) BeforeAgentCallbacks() []types.AgentCallback {
	return a.base.BeforeAgentCallbacks()
}

// AfterAgentCallbacks implements [types.Agent].
func (a *ParallelAgent) AfterAgentCallbacks() []types.AgentCallback {
	return a.base.AfterAgentCallbacks()
}

// SetParentAgent records the parent agent when this agent joins an agent tree.
func (a *ParallelAgent) SetParentAgent(parent types.Agent) {
	a.base.SetParentAgent(parent)
}

// Execute implements [types.Agent].
func (a *ParallelAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	agentRuns := make([]iter.Seq2[*types.Event, error], len(a.base.SubAgents()))
	for i, subAgent := range a.base.SubAgents() {
		// Each sub-agent gets an isolated context with its own branch.
		subContext := *ictx
		subContext.Branch = a.branchForSubAgent(ictx)
		agentRuns[i] = subAgent.Run(ctx, &subContext)
	}

	return func(yield func(*types.Event, error) bool) {
		for event, err := range MergeAgentRun(ctx, agentRuns) {
			if !yield(event, err) {
				return
			}
		}
	}
}

func (a *ParallelAgent) branchForSubAgent(ictx *types.InvocationContext) string {
	if ictx.Branch != "" {
		return ictx.Branch + "." + a.Name()
	}
	return a.Name()
}

// Run implements [types.Agent].
func (a *ParallelAgent) Run(ctx context.Context, parentContext *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return types.RunAgent(ctx, parentContext, a)
}

// RootAgent implements [types.Agent].
func (a *ParallelAgent) RootAgent() types.Agent {
	return types.RootAgentOf(a)
}

// FindAgent implements [types.Agent].
func (a *ParallelAgent) FindAgent(name string) types.Agent {
	return types.FindAgentIn(a, name)
}

// FindSubAgent implements [types.Agent].
func (a *ParallelAgent) FindSubAgent(name string) types.Agent {
	return types.FindSubAgentIn(a, name)
}

// eventResult holds an event result from an agent with metadata.
type eventResult struct {
	event *types.Event
	err   error
}

// MergeAgentRun merges the agent run event generators.
//
// Each agent won't move on until its generated event is processed by the
// upstream runner.
func MergeAgentRun(ctx context.Context, agentRuns []iter.Seq2[*types.Event, error]) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		if len(agentRuns) == 0 {
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		eventCh := make(chan eventResult)
		wg := new(sync.WaitGroup)

		for _, agentRun := range agentRuns {
			wg.Add(1)
			go func(run iter.Seq2[*types.Event, error]) {
				defer wg.Done()
				for event, err := range run {
					select {
					case eventCh <- eventResult{event: event, err: err}:
					case <-ctx.Done():
						return
					}
				}
			}(agentRun)
		}

		go func() {
			wg.Wait()
			close(eventCh)
		}()

		for result := range eventCh {
			if !yield(result.event, result.err) {
				// Consumer stopped, context cancellation stops the agents.
				return
			}
		}
	}
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/eriperspective/agentflow/internal/xiter"
)

// BaseAgent represents the base agent.
//
// Concrete agents embed a BaseAgent for configuration and tree plumbing, and
// implement Execute with their own logic. Run, RootAgent, and FindAgent must
// dispatch through the concrete agent, so embedding agents implement them as
// one-liners over [RunAgent], [RootAgentOf], and [FindAgentIn].
type BaseAgent struct {
	*Config
}

var _ Agent = (*BaseAgent)(nil)

// NewBaseAgent creates a new agent configuration with the given name.
func NewBaseAgent(name string, opts ...Option) *BaseAgent {
	base := &BaseAgent{
		Config: NewConfig(name),
	}
	for _, opt := range opts {
		opt.apply(base.Config)
	}

	for _, subAgent := range base.subAgents {
		if subAgent.ParentAgent() != nil {
			panic(fmt.Errorf("agent %s already has a parent agent, current parent: %s, trying to add: %s", subAgent.Name(), subAgent.ParentAgent().Name(), base.Name()))
		}
	}

	return base
}

// AsLLMAgent implements [Agent].
func (a *BaseAgent) AsLLMAgent() (LLMAgent, bool) {
	return nil, false
}

// Name implements [Agent].
func (a *BaseAgent) Name() string {
	return a.Config.Name
}

// Description implements [Agent].
func (a *BaseAgent) Description() string {
	return a.Config.Description
}

// ParentAgent implements [Agent].
func (a *BaseAgent) ParentAgent() Agent {
	return a.parentAgent
}

// SubAgents implements [Agent].
func (a *BaseAgent) SubAgents() []Agent {
	return a.subAgents
}

// BeforeAgentCallbacks implements [Agent].
func (a *BaseAgent) BeforeAgentCallbacks() []AgentCallback {
	return a.beforeAgentCallbacks
}

// AfterAgentCallbacks implements [Agent].
func (a *BaseAgent) AfterAgentCallbacks() []AgentCallback {
	return a.afterAgentCallbacks
}

// Run implements [Agent].
func (a *BaseAgent) Run(ctx context.Context, parentContext *InvocationContext) iter.Seq2[*Event, error] {
	return RunAgent(ctx, parentContext, a)
}

// Execute implements [Agent].
func (a *BaseAgent) Execute(ctx context.Context, ictx *InvocationContext) iter.Seq2[*Event, error] {
	return xiter.Error[Event](NotImplementedError("Execute for BaseAgent is not implemented"))
}

// RootAgent implements [Agent].
func (a *BaseAgent) RootAgent() Agent {
	return RootAgentOf(a)
}

// FindAgent implements [Agent].
func (a *BaseAgent) FindAgent(name string) Agent {
	return FindAgentIn(a, name)
}

// FindSubAgent finds the agent with the given name in this agent's descendants.
func (a *BaseAgent) FindSubAgent(name string) Agent {
	for _, subAgent := range a.subAgents {
		if result := subAgent.FindAgent(name); result != nil {
			return result
		}
	}
	return nil
}

// RunAgent is the entry point shared by all agents: it wraps the agent's
// Execute with the before and after agent callbacks.
//
// Dispatch goes through the agent argument, so an agent embedding [BaseAgent]
// runs its own Execute.
func RunAgent(ctx context.Context, parentContext *InvocationContext, agent Agent) iter.Seq2[*Event, error] {
	return func(yield func(*Event, error) bool) {
		ictx := createInvocationContext(parentContext, agent)

		beforeEvent, err := handleAgentCallbacks(ctx, ictx, agent, agent.BeforeAgentCallbacks(), true)
		if err != nil {
			yield(nil, err)
			return
		}
		if beforeEvent != nil {
			if !yield(beforeEvent, nil) {
				return
			}
			if ictx.EndInvocation {
				return
			}
		}

		for event, err := range agent.Execute(ctx, ictx) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(event, nil) {
				return
			}
		}

		if ictx.EndInvocation {
			return
		}

		afterEvent, err := handleAgentCallbacks(ctx, ictx, agent, agent.AfterAgentCallbacks(), false)
		if err != nil {
			yield(nil, err)
			return
		}
		if afterEvent != nil {
			if !yield(afterEvent, nil) {
				return
			}
		}
	}
}

// RootAgentOf walks the parent chain from agent to the root of the agent tree.
func RootAgentOf(agent Agent) Agent {
	rootAgent := agent
	for {
		parentAgent := rootAgent.ParentAgent()
		if parentAgent == nil {
			break
		}
		rootAgent = parentAgent
	}

	return rootAgent
}

// FindAgentIn finds the agent with the given name in agent and its descendants.
func FindAgentIn(agent Agent, name string) Agent {
	if name == agent.Name() {
		return agent
	}
	return FindSubAgentIn(agent, name)
}

// FindSubAgentIn finds the agent with the given name in agent's descendants.
func FindSubAgentIn(agent Agent, name string) Agent {
	for _, subAgent := range agent.SubAgents() {
		if result := subAgent.FindAgent(name); result != nil {
			return result
		}
	}
	return nil
}

// createInvocationContext prepares the invocation context for the agent run.
func createInvocationContext(parentContext *InvocationContext, agent Agent) *InvocationContext {
	parentContext.Agent = agent
	if parentContext.Branch != "" {
		parentContext.Branch += "." + agent.Name()
	}
	return parentContext
}

// handleAgentCallbacks runs the given agent callbacks until one produces content.
func handleAgentCallbacks(ctx context.Context, ictx *InvocationContext, agent Agent, callbacks []AgentCallback, before bool) (*Event, error) {
	if len(callbacks) == 0 {
		return nil, nil
	}

	logger := slog.Default()
	if l, ok := agent.(interface{ Logger() *slog.Logger }); ok {
		logger = l.Logger()
	}

	callbackCtx := NewCallbackContext(ictx)
	for _, callback := range callbacks {
		content, err := callback(callbackCtx)
		if err != nil {
			logger.ErrorContext(ctx, "agent callback error",
				slog.String("agent", agent.Name()),
				slog.Bool("before", before),
				slog.Any("error", err),
			)
			return nil, err
		}
		if content != nil {
			event := NewEvent().
				WithInvocationID(ictx.InvocationID).
				WithAuthor(agent.Name()).
				WithBranch(ictx.Branch).
				WithContent(content).
				WithActions(callbackCtx.EventActions())
			if before {
				ictx.EndInvocation = true
			}
			return event, nil
		}
	}

	if callbackCtx.State().HasDelta() {
		event := NewEvent().
			WithInvocationID(ictx.InvocationID).
			WithAuthor(agent.Name()).
			WithBranch(ictx.Branch).
			WithActions(callbackCtx.EventActions())
		return event, nil
	}

	return nil, nil
}

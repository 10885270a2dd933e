// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"iter"

	"google.golang.org/genai"
)

// AgentCallback represents a callback function that can be invoked before or after an agent runs.
type AgentCallback func(cctx *CallbackContext) (*genai.Content, error)

// Agent represents all agents in AgentFlow.
type Agent interface {
	// Name returns the agent's name.
	//
	// Agent name must be a valid identifier and unique within the agent tree.
	// Agent name cannot be "user", since it's reserved for end-user's input.
	Name() string

	// Description returns the description about the agent's capability.
	//
	// The model uses this to determine whether to delegate control to the agent.
	// One-line description is enough and preferred.
	Description() string

	// ParentAgent is the parent agent of this agent.
	//
	// Note that an agent can ONLY be added as sub-agent once.
	//
	// If you want to add one agent twice as sub-agent, consider to create two agent
	// instances with identical config, but with different name and add them to the
	// agent tree.
	ParentAgent() Agent

	// SubAgents returns the sub-agents of this agent.
	SubAgents() []Agent

	// BeforeAgentCallbacks returns the list of [AgentCallback] to be invoked before the agent run.
	//
	// When a list of callbacks is provided, the callbacks will be called in the
	// order they are listed until a callback does not return nil.
	BeforeAgentCallbacks() []AgentCallback

	// AfterAgentCallbacks returns the list of [AgentCallback] to be invoked after the agent run.
	//
	// When a list of callbacks is provided, the callbacks will be called in the
	// order they are listed until a callback does not return nil.
	AfterAgentCallbacks() []AgentCallback

	// Execute is the core logic to run this agent via text-based conversation.
	Execute(ctx context.Context, ictx *InvocationContext) iter.Seq2[*Event, error]

	// Run is the entry method to run an agent via text-based conversation.
	Run(ctx context.Context, parentContext *InvocationContext) iter.Seq2[*Event, error]

	// RootAgent gets the root agent of this agent.
	RootAgent() Agent

	// FindAgent finds the agent with the given name in this agent and its descendants.
	FindAgent(name string) Agent

	// FindSubAgent finds the agent with the given name in this agent's descendants.
	FindSubAgent(name string) Agent

	// AsLLMAgent reports whether this agent is an [LLMAgent].
	AsLLMAgent() (LLMAgent, bool)
}

// InstructionProvider is a function that provides instructions based on context.
type InstructionProvider func(rctx *ReadOnlyContext) string

// BeforeModelCallback is called before sending a request to the model.
type BeforeModelCallback func(cctx *CallbackContext, request *LLMRequest) (*LLMResponse, error)

// AfterModelCallback is called after receiving a response from the model.
type AfterModelCallback func(cctx *CallbackContext, response *LLMResponse) (*LLMResponse, error)

// BeforeToolCallback is called before executing a tool.
type BeforeToolCallback func(tool Tool, args map[string]any, toolCtx *ToolContext) (map[string]any, error)

// AfterToolCallback is called after executing a tool.
type AfterToolCallback func(tool Tool, args map[string]any, toolCtx *ToolContext, toolResponse map[string]any) (map[string]any, error)

// IncludeContents whether to include contents in the model request.
type IncludeContents string

const (
	IncludeContentsDefault IncludeContents = "default"
	IncludeContentsNone    IncludeContents = "none"
)

// LLMAgent is an interface for agents that are specifically designed to work with LLMs (Large Language Models).
type LLMAgent interface {
	Agent

	// CanonicalModel returns the resolved model field as [Model].
	CanonicalModel(ctx context.Context) (Model, error)

	// CanonicalInstructions returns the resolved instruction field to construct instruction for this agent.
	CanonicalInstructions(rctx *ReadOnlyContext) string

	// CanonicalGlobalInstruction returns the resolved instruction field to construct global instruction.
	CanonicalGlobalInstruction(rctx *ReadOnlyContext) (string, bool)

	// CanonicalTool returns the resolved tools field as a list of [Tool] based on the context.
	CanonicalTool(rctx *ReadOnlyContext) []Tool

	// GenerateContentConfig returns the [*genai.GenerateContentConfig] for the agent.
	GenerateContentConfig() *genai.GenerateContentConfig

	// DisallowTransferToParent reports whether the agent disallows LLM-controlled transferring to the parent agent.
	DisallowTransferToParent() bool

	// DisallowTransferToPeers reports whether the agent disallows LLM-controlled transferring to the peer agents.
	DisallowTransferToPeers() bool

	// IncludeContents returns the mode of include contents in the model request.
	IncludeContents() IncludeContents

	// HistoryWindow returns the maximum number of conversation turns to keep in
	// the model request. Zero means the full history.
	HistoryWindow() int

	// InputSchema returns the structured input.
	InputSchema() *genai.Schema

	// OutputSchema returns the structured output.
	OutputSchema() *genai.Schema

	// OutputKey returns the key in session state to store the output of the agent.
	OutputKey() string

	// Planner returns the planner that instructs the agent to make a plan and execute it step by step.
	Planner() Planner

	// Examples returns the few-shot example provider for the agent.
	Examples() ExampleProvider

	// BeforeModelCallbacks returns the list of [BeforeModelCallback].
	BeforeModelCallbacks() []BeforeModelCallback

	// AfterModelCallbacks returns the list of [AfterModelCallback].
	AfterModelCallbacks() []AfterModelCallback

	// BeforeToolCallbacks returns the list of [BeforeToolCallback].
	BeforeToolCallbacks() []BeforeToolCallback

	// AfterToolCallbacks returns the list of [AfterToolCallback].
	AfterToolCallbacks() []AfterToolCallback
}

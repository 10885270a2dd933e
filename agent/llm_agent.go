// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/bytedance/sonic"
	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/flow/llmflow"
	"github.com/eriperspective/agentflow/model"
	"github.com/eriperspective/agentflow/types"
)

// LLMAgent represents an agent powered by a Large Language Model.
type LLMAgent struct {
	base *types.BaseAgent

	baseOpts []types.Option

	// The model to use for the agent.
	//
	// When not set, the agent will inherit the model from its ancestor.
	model any // string | [types.Model]

	// Instructions for the LLM model, guiding the agent's behavior.
	instruction any // string | [types.InstructionProvider]

	// Instructions for all the agents in the entire agent tree.
	//
	// globalInstruction ONLY takes effect in the root agent.
	//
	// For example: use globalInstruction to make all agents have a stable
	// identity or personality.
	globalInstruction any // string | [types.InstructionProvider]

	// Tools available to this agent.
	tools []types.Tool

	// Toolsets available to this agent, resolved per request.
	toolsets []types.Toolset

	// generateContentConfig is the additional content generation configuration.
	//
	// Not all fields are usable: tools must be configured via tools, and
	// thinking_config via the planner.
	//
	// For example: use this config to adjust model temperature, configure
	// safety settings, etc.
	generateContentConfig *genai.GenerateContentConfig

	// Disallows LLM-controlled transferring to the parent agent.
	disallowTransferToParent bool

	// Disallows LLM-controlled transferring to the peer agents.
	disallowTransferToPeers bool

	// includeContents whether to include contents in the model request.
	//
	// When set to IncludeContentsNone, the model request will not include any
	// contents, such as user messages and tool results.
	includeContents types.IncludeContents

	// historyWindow caps the number of conversation contents sent to the
	// model. Zero sends the full history.
	historyWindow int

	// The input schema when the agent is used as a tool.
	inputSchema *genai.Schema

	// The output schema when the agent replies.
	//
	// NOTE: when this is set, the agent can ONLY reply and CANNOT use any
	// tools, such as function tools, RAGs, agent transfer, etc.
	outputSchema *genai.Schema

	// The key in session state to store the output of the agent.
	//
	// Typical use cases:
	//   - Extracts the agent reply for later use, such as in tools, callbacks, etc.
	//   - Connects agents to coordinate with each other.
	outputKey string

	// Instructs the agent to make a plan and execute it step by step.
	planner types.Planner

	// Few-shot examples appended to the system instruction.
	examples types.ExampleProvider

	beforeModelCallbacks []types.BeforeModelCallback
	afterModelCallbacks  []types.AfterModelCallback
	beforeToolCallbacks  []types.BeforeToolCallback
	afterToolCallbacks   []types.AfterToolCallback
}

var (
	_ types.Agent    = (*LLMAgent)(nil)
	_ types.LLMAgent = (*LLMAgent)(nil)
)

// LLMAgentOption configures an [LLMAgent].
type LLMAgentOption func(*LLMAgent)

// WithModelString sets the model by its registered name.
func WithModelString(model string) LLMAgentOption {
	return func(a *LLMAgent) {
		a.model = model
	}
}

// WithModel sets the model to use.
func WithModel(model types.Model) LLMAgentOption {
	return func(a *LLMAgent) {
		a.model = model
	}
}

// WithInstruction sets the instruction for the agent.
func WithInstruction[T string | types.InstructionProvider](instruction T) LLMAgentOption {
	return func(a *LLMAgent) {
		a.instruction = instruction
	}
}

// WithGlobalInstruction sets the global instruction for the agent tree.
func WithGlobalInstruction[T string | types.InstructionProvider](instruction T) LLMAgentOption {
	return func(a *LLMAgent) {
		a.globalInstruction = instruction
	}
}

// WithTools adds the [types.Tool] for the agent.
func WithTools(tools ...types.Tool) LLMAgentOption {
	return func(a *LLMAgent) {
		a.tools = append(a.tools, tools...)
	}
}

// WithToolsets adds the [types.Toolset] for the agent.
func WithToolsets(toolsets ...types.Toolset) LLMAgentOption {
	return func(a *LLMAgent) {
		a.toolsets = append(a.toolsets, toolsets...)
	}
}

// WithGenerateContentConfig sets the [genai.GenerateContentConfig] for the agent.
func WithGenerateContentConfig(config *genai.GenerateContentConfig) LLMAgentOption {
	return func(a *LLMAgent) {
		a.generateContentConfig = config
	}
}

// WithDisallowTransferToParent prevents transferring control to the parent.
func WithDisallowTransferToParent(disallow bool) LLMAgentOption {
	return func(a *LLMAgent) {
		a.disallowTransferToParent = disallow
	}
}

// WithDisallowTransferToPeers prevents transferring control to peers.
func WithDisallowTransferToPeers(disallow bool) LLMAgentOption {
	return func(a *LLMAgent) {
		a.disallowTransferToPeers = disallow
	}
}

// WithIncludeContents sets the [types.IncludeContents] mode for the agent.
func WithIncludeContents(includeContents types.IncludeContents) LLMAgentOption {
	return func(a *LLMAgent) {
		a.includeContents = includeContents
	}
}

// WithHistoryWindow caps the number of conversation contents sent to the model.
func WithHistoryWindow(window int) LLMAgentOption {
	return func(a *LLMAgent) {
		a.historyWindow = window
	}
}

// WithInputSchema sets the input schema for structured input.
func WithInputSchema(schema *genai.Schema) LLMAgentOption {
	return func(a *LLMAgent) {
		a.inputSchema = schema
	}
}

// WithOutputSchema sets the output schema for structured output.
func WithOutputSchema(schema *genai.Schema) LLMAgentOption {
	return func(a *LLMAgent) {
		a.outputSchema = schema
	}
}

// WithOutputKey sets the session state key where the agent output is stored.
func WithOutputKey(key string) LLMAgentOption {
	return func(a *LLMAgent) {
		a.outputKey = key
	}
}

// WithPlanner sets the planner for the agent.
func WithPlanner(planner types.Planner) LLMAgentOption {
	return func(a *LLMAgent) {
		a.planner = planner
	}
}

// WithExamples sets the few-shot example provider for the agent.
func WithExamples(examples types.ExampleProvider) LLMAgentOption {
	return func(a *LLMAgent) {
		a.examples = examples
	}
}

// WithBeforeModelCallback adds a callback to run before sending a request to the model.
func WithBeforeModelCallback(callback types.BeforeModelCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.beforeModelCallbacks = append(a.beforeModelCallbacks, callback)
	}
}

// WithAfterModelCallback adds a callback to run after receiving a response from the model.
func WithAfterModelCallback(callback types.AfterModelCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.afterModelCallbacks = append(a.afterModelCallbacks, callback)
	}
}

// WithBeforeToolCallback adds a callback to run before executing a tool.
func WithBeforeToolCallback(callback types.BeforeToolCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.beforeToolCallbacks = append(a.beforeToolCallbacks, callback)
	}
}

// WithAfterToolCallback adds a callback to run after executing a tool.
func WithAfterToolCallback(callback types.AfterToolCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.afterToolCallbacks = append(a.afterToolCallbacks, callback)
	}
}

// WithDescription sets the description for the agent.
func WithDescription(description string) LLMAgentOption {
	return func(a *LLMAgent) {
		a.baseOpts = append(a.baseOpts, types.WithDescription(description))
	}
}

// WithSubAgents adds sub-agents for the agent.
func WithSubAgents(agents ...types.Agent) LLMAgentOption {
	return func(a *LLMAgent) {
		a.baseOpts = append(a.baseOpts, types.WithSubAgents(agents...))
	}
}

// WithBeforeAgentCallbacks adds callbacks to run before the agent run.
func WithBeforeAgentCallbacks(callbacks ...types.AgentCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.baseOpts = append(a.baseOpts, types.WithBeforeAgentCallbacks(callbacks...))
	}
}

// WithAfterAgentCallbacks adds callbacks to run after the agent run.
func WithAfterAgentCallbacks(callbacks ...types.AgentCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.baseOpts = append(a.baseOpts, types.WithAfterAgentCallbacks(callbacks...))
	}
}

// WithLogger sets the logger for the agent.
func WithLogger(logger *slog.Logger) LLMAgentOption {
	return func(a *LLMAgent) {
		a.baseOpts = append(a.baseOpts, types.WithLogger(logger))
	}
}

// NewLLMAgent creates a new [LLMAgent] with the given name and options.
func NewLLMAgent(ctx context.Context, name string, opts ...LLMAgentOption) (*LLMAgent, error) {
	agent := &LLMAgent{}
	for _, opt := range opts {
		opt(agent)
	}
	agent.base = types.NewBaseAgent(name, agent.baseOpts...)
	bindSubAgents(agent, agent.base.SubAgents())

	if err := agent.validateConfig(ctx); err != nil {
		return nil, fmt.Errorf("invalid agent configuration: %w", err)
	}

	return agent, nil
}

// AsLLMAgent implements [types.Agent].
func (a *LLMAgent) AsLLMAgent() (types.LLMAgent, bool) {
	return a, true
}

// Name implements [types.Agent].
func (a *LLMAgent) Name() string {
	return a.base.Name()
}

// Description implements [types.Agent].
func (a *LLMAgent) Description() string {
	return a.base.Description()
}

// ParentAgent implements [types.Agent].
func (a *LLMAgent) ParentAgent() types.Agent {
	return a.base.ParentAgent()
}

// SubAgents implements [types.Agent].
func (a *LLMAgent) SubAgents() []types.Agent {
	return a.base.SubAgents()
}

// BeforeAgentCallbacks implements [types.Agent].
func (a *LLMAgent) BeforeAgentCallbacks() []types.AgentCallback {
	return a.base.BeforeAgentCallbacks()
}

// AfterAgentCallbacks implements [types.Agent].
func (a *LLMAgent) AfterAgentCallbacks() []types.AgentCallback {
	return a.base.AfterAgentCallbacks()
}

// Logger returns the logger for the agent.
func (a *LLMAgent) Logger() *slog.Logger {
	return a.base.Logger()
}

// SetParentAgent records the parent agent when this agent joins an agent tree.
func (a *LLMAgent) SetParentAgent(parent types.Agent) {
	a.base.SetParentAgent(parent)
}

// CanonicalModel returns the resolved model field as [types.Model].
//
// When the agent has no model of its own, the model is inherited from the
// nearest LLM ancestor.
func (a *LLMAgent) CanonicalModel(ctx context.Context) (types.Model, error) {
	switch m := a.model.(type) {
	case types.Model:
		return m, nil
	case string:
		// Creators fall back to environment API keys when none is given.
		return model.GetRegistry().NewLLM(ctx, "", m)
	}

	ancestorAgent := a.base.ParentAgent()
	for ancestorAgent != nil {
		if llmAgent, ok := ancestorAgent.AsLLMAgent(); ok {
			return llmAgent.CanonicalModel(ctx)
		}
		ancestorAgent = ancestorAgent.ParentAgent()
	}

	return nil, fmt.Errorf("no model found for agent %s", a.Name())
}

// CanonicalInstructions returns the resolved instruction field for this agent.
func (a *LLMAgent) CanonicalInstructions(rctx *types.ReadOnlyContext) string {
	switch inst := a.instruction.(type) {
	case string:
		return inst
	case types.InstructionProvider:
		return inst(rctx)
	default:
		return ""
	}
}

// CanonicalGlobalInstruction returns the resolved global instruction and
// whether it came from a provider, in which case state injection is bypassed.
func (a *LLMAgent) CanonicalGlobalInstruction(rctx *types.ReadOnlyContext) (string, bool) {
	switch ginst := a.globalInstruction.(type) {
	case string:
		return ginst, false
	case types.InstructionProvider:
		return ginst(rctx), true
	default:
		return "", false
	}
}

// CanonicalTool returns the resolved tools field as a list of [types.Tool] based on the context.
func (a *LLMAgent) CanonicalTool(rctx *types.ReadOnlyContext) []types.Tool {
	resolvedTools := []types.Tool{}
	resolvedTools = append(resolvedTools, a.tools...)
	for _, toolset := range a.toolsets {
		resolvedTools = append(resolvedTools, toolset.GetTools(rctx)...)
	}
	return resolvedTools
}

// GenerateContentConfig implements [types.LLMAgent].
func (a *LLMAgent) GenerateContentConfig() *genai.GenerateContentConfig {
	return a.generateContentConfig
}

// DisallowTransferToParent implements [types.LLMAgent].
func (a *LLMAgent) DisallowTransferToParent() bool {
	return a.disallowTransferToParent
}

// DisallowTransferToPeers implements [types.LLMAgent].
func (a *LLMAgent) DisallowTransferToPeers() bool {
	return a.disallowTransferToPeers
}

// IncludeContents implements [types.LLMAgent].
func (a *LLMAgent) IncludeContents() types.IncludeContents {
	return a.includeContents
}

// HistoryWindow implements [types.LLMAgent].
func (a *LLMAgent) HistoryWindow() int {
	return a.historyWindow
}

// InputSchema implements [types.LLMAgent].
func (a *LLMAgent) InputSchema() *genai.Schema {
	return a.inputSchema
}

// OutputSchema implements [types.LLMAgent].
func (a *LLMAgent) OutputSchema() *genai.Schema {
	return a.outputSchema
}

// OutputKey implements [types.LLMAgent].
func (a *LLMAgent) OutputKey() string {
	return a.outputKey
}

// Planner implements [types.LLMAgent].
func (a *LLMAgent) Planner() types.Planner {
	return a.planner
}

// Examples implements [types.LLMAgent].
func (a *LLMAgent) Examples() types.ExampleProvider {
	return a.examples
}

// BeforeModelCallbacks implements [types.LLMAgent].
func (a *LLMAgent) BeforeModelCallbacks() []types.BeforeModelCallback {
	return a.beforeModelCallbacks
}

// AfterModelCallbacks implements [types.LLMAgent].
func (a *LLMAgent) AfterModelCallbacks() []types.AfterModelCallback {
	return a.afterModelCallbacks
}

// BeforeToolCallbacks implements [types.LLMAgent].
func (a *LLMAgent) BeforeToolCallbacks() []types.BeforeToolCallback {
	return a.beforeToolCallbacks
}

// AfterToolCallbacks implements [types.LLMAgent].
func (a *LLMAgent) AfterToolCallbacks() []types.AfterToolCallback {
	return a.afterToolCallbacks
}

func (a *LLMAgent) llmFlow() types.Flow {
	if a.disallowTransferToParent && a.disallowTransferToPeers && len(a.base.SubAgents()) == 0 {
		return llmflow.NewSingleFlow()
	}
	return llmflow.NewAutoFlow()
}

// saveOutputToState saves the model output to state if needed.
func (a *LLMAgent) saveOutputToState(event *types.Event) error {
	if a.outputKey == "" || !event.IsFinalResponse() || event.Content == nil || len(event.Content.Parts) == 0 {
		return nil
	}

	texts := make([]string, 0, len(event.Content.Parts))
	for _, part := range event.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	text := strings.Join(texts, "")
	var result any = text
	if a.outputSchema != nil {
		var structured map[string]any
		if err := sonic.ConfigFastest.UnmarshalFromString(text, &structured); err != nil {
			return fmt.Errorf("output of agent %s does not match the output schema: %w", a.Name(), err)
		}
		result = structured
	}
	event.Actions.StateDelta[a.outputKey] = result

	return nil
}

// Execute implements [types.Agent].
func (a *LLMAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for event, err := range a.llmFlow().Run(ctx, ictx) {
			if err != nil {
				yield(nil, err)
				return
			}
			if err := a.saveOutputToState(event); err != nil {
				yield(nil, err)
				return
			}

			if !yield(event, nil) {
				return
			}
		}
	}
}

// Run implements [types.Agent].
func (a *LLMAgent) Run(ctx context.Context, parentContext *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return types.RunAgent(ctx, parentContext, a)
}

// RootAgent implements [types.Agent].
func (a *LLMAgent) RootAgent() types.Agent {
	return types.RootAgentOf(a)
}

// FindAgent implements [types.Agent].
func (a *LLMAgent) FindAgent(name string) types.Agent {
	return types.FindAgentIn(a, name)
}

// FindSubAgent implements [types.Agent].
func (a *LLMAgent) FindSubAgent(name string) types.Agent {
	return types.FindSubAgentIn(a, name)
}

// validateConfig validates the agent configuration.
func (a *LLMAgent) validateConfig(ctx context.Context) error {
	if a.outputSchema == nil {
		return nil
	}

	// Output schema cannot coexist with agent transfer configurations.
	if !a.disallowTransferToParent || !a.disallowTransferToPeers {
		a.base.Logger().WarnContext(ctx, "output schema cannot co-exist with agent transfer configurations, disabling transfer",
			slog.String("agent", a.Name()),
			slog.Bool("disallowTransferToParent", a.disallowTransferToParent),
			slog.Bool("disallowTransferToPeers", a.disallowTransferToPeers),
		)
		a.disallowTransferToParent = true
		a.disallowTransferToPeers = true
	}

	if len(a.tools) > 0 || len(a.toolsets) > 0 {
		return errors.New("invalid config: if output schema is set, tools must be empty")
	}

	if len(a.base.SubAgents()) > 0 {
		return errors.New("invalid config: if output schema is set, sub agents must be empty to disable agent transfer")
	}

	return nil
}

// bindSubAgents records parent as the parent agent of each sub-agent.
func bindSubAgents(parent types.Agent, subAgents []types.Agent) {
	for _, subAgent := range subAgents {
		if sa, ok := subAgent.(interface{ SetParentAgent(types.Agent) }); ok {
			sa.SetParentAgent(parent)
		}
	}
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"sync"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// UsageAccumulator aggregates token usage across the model calls of an
// invocation.
type UsageAccumulator struct {
	mu sync.Mutex

	promptTokens     int64
	candidatesTokens int64
	totalTokens      int64
}

// Add accumulates the usage metadata from a single model response.
func (u *UsageAccumulator) Add(usage *genai.GenerateContentResponseUsageMetadata) {
	if usage == nil {
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.promptTokens += int64(usage.PromptTokenCount)
	u.candidatesTokens += int64(usage.CandidatesTokenCount)
	u.totalTokens += int64(usage.TotalTokenCount)
}

// PromptTokens returns the accumulated prompt token count.
func (u *UsageAccumulator) PromptTokens() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.promptTokens
}

// CandidatesTokens returns the accumulated candidates token count.
func (u *UsageAccumulator) CandidatesTokens() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.candidatesTokens
}

// TotalTokens returns the accumulated total token count.
func (u *UsageAccumulator) TotalTokens() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.totalTokens
}

// InvocationCostManager represents a container to keep track of the cost of invocation.
//
// While we don't expect the metrics captured here to be a direct
// representative of monetary cost incurred in executing the current
// invocation, they in some ways have an indirect effect.
type InvocationCostManager struct {
	// A counter that keeps track of number of llm calls made.
	llmCalls int

	// Aggregated token usage across all llm calls.
	usage UsageAccumulator
}

// IncrementAndEnforceLLMCallsLimit increments llmCalls and enforces the limit.
func (mgr *InvocationCostManager) IncrementAndEnforceLLMCallsLimit(runConfig *RunConfig) error {
	mgr.llmCalls++
	if runConfig != nil {
		if runConfig.MaxLLMCalls > 0 && mgr.llmCalls > runConfig.MaxLLMCalls {
			return NewLLMCallsLimitExceededError("max number of llm calls limit of %d exceeded", runConfig.MaxLLMCalls)
		}
	}
	return nil
}

// LLMCalls returns the number of llm calls made so far.
func (mgr *InvocationCostManager) LLMCalls() int {
	return mgr.llmCalls
}

// Usage returns the aggregated token usage of this invocation.
func (mgr *InvocationCostManager) Usage() *UsageAccumulator {
	return &mgr.usage
}

// InvocationContext represents the data of a single invocation of an agent.
//
// An invocation:
//
//   - Starts with a user message and ends with a final response.
//   - Can contain one or multiple agent calls.
//   - Is handled by the runner.
//
// An invocation runs an agent until it does not request to transfer to another
// agent.
//
// An agent call:
//
//   - Is handled by agent.Run().
//   - Ends when agent.Run() ends.
//
// An LLM agent call can contain one or multiple steps.
//
// An LLM agent runs steps in a loop until:
//
//   - A final response is generated.
//   - The agent transfers to another agent.
//   - EndInvocation is set to true by any callbacks or tools.
//
// A step:
//
//   - Calls the LLM only once and yields its response.
//   - Calls the tools and yields their responses if requested.
//
// The summarization of the function response is considered another step, since
// it is another llm call.
//
//	┌─────────────────────── invocation ──────────────────────────┐
//	┌──────────── llm_agent_call_1 ────────────┐ ┌─ agent_call_2 ─┐
//	┌──── step_1 ────────┐ ┌───── step_2 ──────┐
//	[call_llm] [call_tool] [call_llm] [transfer]
type InvocationContext struct {
	ArtifactService ArtifactService
	SessionService  SessionService
	MemoryService   MemoryService

	// InvocationID is the id of this invocation context. Readonly.
	InvocationID string

	// The branch of the invocation context.
	//
	// The format is like agent_1.agent_2.agent_3, where agent_1 is the parent of
	// agent_2, and agent_2 is the parent of agent_3.
	//
	// Branch is used when multiple sub-agents shouldn't see their peer agents'
	// conversation history.
	Branch string

	// The current agent of this invocation context. Readonly.
	Agent Agent

	// The user content that started this invocation. Readonly.
	UserContent *genai.Content

	// The current session of this invocation context. Readonly.
	Session Session

	// Whether to end this invocation.
	//
	// Set to true in callbacks or tools to terminate this invocation.
	EndInvocation bool

	// Configurations for agents under this invocation.
	RunConfig *RunConfig

	// A container to keep track of different kinds of costs incurred as a part
	// of this invocation.
	invocationCostManager *InvocationCostManager
}

// InvocationContextOption is a function that modifies the [InvocationContext].
type InvocationContextOption func(*InvocationContext)

func WithArtifactService(svc ArtifactService) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.ArtifactService = svc
	}
}

func WithMemoryService(svc MemoryService) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.MemoryService = svc
	}
}

func WithBranch(branch string) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.Branch = branch
	}
}

func WithUserContent(content *genai.Content) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.UserContent = content
	}
}

func WithInvocationID(id string) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.InvocationID = id
	}
}

func WithRunConfig(runConfig *RunConfig) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.RunConfig = runConfig
	}
}

// NewInvocationContext creates a new [InvocationContext].
func NewInvocationContext(agent Agent, session Session, sessionSvc SessionService, opts ...InvocationContextOption) *InvocationContext {
	ictx := &InvocationContext{
		Agent:                 agent,
		invocationCostManager: &InvocationCostManager{},
		Session:               session,
		SessionService:        sessionSvc,
	}
	for _, opt := range opts {
		opt(ictx)
	}

	return ictx
}

// IncrementLLMCallCount tracks number of llm calls made.
func (ictx *InvocationContext) IncrementLLMCallCount() error {
	return ictx.invocationCostManager.IncrementAndEnforceLLMCallsLimit(ictx.RunConfig)
}

// TrackUsage accumulates the token usage of a model response.
func (ictx *InvocationContext) TrackUsage(usage *genai.GenerateContentResponseUsageMetadata) {
	ictx.invocationCostManager.Usage().Add(usage)
}

// CostManager returns the cost manager of this invocation.
func (ictx *InvocationContext) CostManager() *InvocationCostManager {
	return ictx.invocationCostManager
}

func (ictx *InvocationContext) AppName() string {
	return ictx.Session.AppName()
}

func (ictx *InvocationContext) UserID() string {
	return ictx.Session.UserID()
}

// NewInvocationContextID generates a new invocation context ID.
func NewInvocationContextID() string {
	return `e-` + uuid.NewString()
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package types provides the core interfaces and contracts shared by all
// AgentFlow components.
//
// The package is the central vocabulary of the toolkit: it defines how agents,
// models, tools, sessions, memory and retrieval services interact with each
// other, without committing to any concrete implementation.
//
// # Agents
//
// The Agent interface defines the contract for all agent types:
//
//	type Agent interface {
//		Name() string
//		Description() string
//		ParentAgent() Agent
//		SubAgents() []Agent
//		Execute(ctx context.Context, ictx *InvocationContext) iter.Seq2[*Event, error]
//		Run(ctx context.Context, ictx *InvocationContext) iter.Seq2[*Event, error]
//		// ... hierarchy navigation and callbacks
//	}
//
// All agent implementations (LLMAgent, SequentialAgent, ParallelAgent,
// LoopAgent) implement this interface, enabling polymorphic usage and
// hierarchical composition.
//
// # Models
//
// The Model interface is the unified LLM abstraction:
//
//	type Model interface {
//		Name() string
//		SupportedModels() []string
//		GenerateContent(ctx context.Context, request *LLMRequest) (*LLMResponse, error)
//		StreamGenerateContent(ctx context.Context, request *LLMRequest) iter.Seq2[*LLMResponse, error]
//	}
//
// It supports multiple providers (Google Gemini, Anthropic Claude, OpenAI GPT)
// with consistent request/response types built on google.golang.org/genai
// content structures.
//
// # Events
//
// Events represent every interaction in the system. An event wraps an
// LLMResponse together with the author, the invocation it belongs to, and the
// actions the agent took (state deltas, agent transfer, escalation). Sessions
// are ordered event logs; appending an event commits its state delta.
//
// # State
//
// Session state is a delta-aware dictionary with three prefix tiers:
//
//	// App-level state (shared across all users)
//	state.SetApp("config", "production")
//
//	// User-level state (shared across the user's sessions)
//	state.SetUser("preferences", prefs)
//
//	// Temporary state (never persisted)
//	state.SetTemp("context", "current_topic")
//
// # Iterators
//
// AgentFlow uses Go 1.23+ iterators for event streaming:
//
//	for event, err := range agent.Run(ctx, ictx) {
//		if err != nil {
//			// handle error
//		}
//		// process event
//	}
package types

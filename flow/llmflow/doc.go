// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package llmflow provides the pipeline that drives LLM interactions with
// configurable request and response processors.
//
// The llmflow package implements the processing loop that handles LLM
// requests and responses through a series of configurable processors. It is
// the foundation for agent workflows: instruction assembly, conversation
// history construction, few-shot examples, planning, function calling, and
// agent transfers are all processors in the pipeline.
//
// # Architecture Overview
//
// LLM requests and responses flow through a series of processors:
//
//	┌─────────────┐    ┌──────────────────┐    ┌─────────────┐    ┌───────────────────┐
//	│   Request   │───▶│ Request          │───▶│     LLM     │───▶│ Response          │
//	│             │    │ Processors       │    │    Call     │    │ Processors        │
//	└─────────────┘    └──────────────────┘    └─────────────┘    └───────────────────┘
//
// The loop repeats while the model keeps requesting tools: each step builds a
// request, calls the model, executes the requested functions, and feeds the
// responses back until the model produces a final response or the invocation
// ends.
//
// # Core Components
//
//   - LLMFlow: orchestrates the request/call/response loop
//   - Request processors: mutate the [types.LLMRequest] before the model call
//   - Response processors: transform the [types.LLMResponse] after the call
//   - Predefined pipelines: [SingleFlow] and [AutoFlow]
//
// # Predefined Pipelines
//
// [SingleFlow] handles an agent and its tools, with no sub-agents:
//
//	flow := llmflow.NewSingleFlow()
//
// [AutoFlow] is [SingleFlow] plus agent transfer. The model is told about the
// agent tree and may call transfer_to_agent to hand the conversation to a
// parent, peer, or sub-agent:
//
//	flow := llmflow.NewAutoFlow()
//
// # Custom Pipelines
//
// Compose a custom pipeline from the individual processors:
//
//	flow := llmflow.NewLLMFlow().
//		WithRequestProcessors(
//			&llmflow.BasicLLMRequestProcessor{},
//			&llmflow.InstructionsLLMRequestProcessor{},
//			&llmflow.ContentLLMRequestProcessor{},
//		).
//		WithResponseProcessors(
//			&llmflow.NLPlanningResponseProcessor{},
//		)
//
// # Function Calling
//
// When the model responds with function calls, [HandleFunctionCalls] executes
// the named tools concurrently and merges their responses into a single
// function response event. Tool execution failures become error responses the
// model can observe; long-running tools may defer their response to a later
// turn.
//
// # Streaming
//
// With [types.StreamingModeSSE] in the run config, partial model responses are
// yielded as they arrive, followed by the complete aggregated response.
package llmflow

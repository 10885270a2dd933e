// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package flow groups the LLM processing pipelines.
//
// The flow packages implement the request/response pipelines that sit between
// agents and models:
//
//   - [github.com/eriperspective/agentflow/flow/llmflow]: the processor
//     pipeline and the [SingleFlow] and [AutoFlow] configurations used by LLM
//     agents.
//
// Agents do not call models directly. An agent picks a flow, and the flow
// assembles the request from the session, calls the model, executes tools,
// and yields the resulting events.
package flow

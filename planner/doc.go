// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package planner provides strategic planning capabilities for guiding agent execution.
//
// The planner package implements the types.Planner interface to let agents generate
// structured plans for complex queries before taking any action.
//
// # Planning Strategies
//
// The package provides two planner implementations:
//
//   - BuiltInPlanner: leverages the model's native thinking features
//   - PlanReActPlanner: structured planning/reasoning/action framework with explicit tags
//
// # Built-In Planning
//
// BuiltInPlanner forwards a thinking configuration to the model and relies on its
// internal reasoning capabilities:
//
//	planner := planner.NewBuiltInPlanner(&genai.ThinkingConfig{
//		IncludeThoughts: true,
//	})
//
//	agent := agent.NewLLMAgent(ctx, "strategic_agent",
//		agent.WithPlanner(planner),
//		agent.WithModelString("gemini-2.0-flash"),
//	)
//
// # Plan-Re-Act Planning
//
// PlanReActPlanner constrains the model with a planning instruction instead. The model
// is asked to produce a plan first, then interleave tool calls with reasoning, and end
// with a final answer, each section labeled with a tag:
//
//	/*PLANNING*/
//	1. Search for current weather data in Paris
//	2. Summarize any weather alerts
//
//	/*ACTION*/
//	(tool calls)
//
//	/*REASONING*/
//	The search returned current conditions; alerts still missing.
//
//	/*FINAL_ANSWER*/
//	Paris is currently 18C and cloudy with no active alerts.
//
// When processing the response, text sections carrying planning, reasoning, action or
// replanning tags are marked as thoughts, and the final answer is split out as the
// user-visible text.
package planner

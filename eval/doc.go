// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package eval provides a small evaluation harness for agents.
//
// An evaluation run takes a set of [Case] values, sends each case's user
// message to the agent against a fresh session, and scores the outcome with
// [Matcher] implementations:
//
//   - [ExactMatcher] compares the final response to the reference response.
//   - [ContainsMatcher] checks the final response for a substring.
//   - [TrajectoryMatcher] compares the tool calls the agent made against the
//     expected trajectory.
//
// # Usage
//
//	evaluator := eval.NewEvaluator("support-app", agent,
//		eval.WithMatchers(eval.NewContainsMatcher(), eval.NewTrajectoryMatcher()),
//	)
//
//	report, err := evaluator.Evaluate(ctx, []*eval.Case{
//		eval.NewCase("order-status", "Where is my order #42?").
//			WithExpectedResponse("shipped").
//			WithExpectedTrajectory(eval.ToolCall{Name: "lookup_order"}),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Print(report.Summary())
//
// Cases run in parallel up to [DefaultMaxConcurrency]; a failing case is
// recorded in the report rather than aborting the run.
package eval

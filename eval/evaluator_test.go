// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package eval_test

import (
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/agent"
	"github.com/eriperspective/agentflow/eval"
	"github.com/eriperspective/agentflow/types"
)

// newEchoAgent replies to every message with a fixed text through a
// before-agent callback, so no model is involved.
func newEchoAgent(reply string) types.Agent {
	return agent.NewSequentialAgent("echo",
		types.WithBeforeAgentCallbacks(func(cctx *types.CallbackContext) (*genai.Content, error) {
			return genai.NewContentFromText(reply, genai.RoleModel), nil
		}),
	)
}

func TestEvaluatorEvaluate(t *testing.T) {
	evaluator := eval.NewEvaluator("eval-app", newEchoAgent("The weather in Paris is sunny."),
		eval.WithMatchers(eval.NewContainsMatcher()),
		eval.WithMaxConcurrency(2),
	)

	report, err := evaluator.Evaluate(t.Context(), []*eval.Case{
		eval.NewCase("mentions-city", "What is the weather in Paris?").
			WithExpectedResponse("Paris"),
		eval.NewCase("mentions-rain", "Is it raining in Paris?").
			WithExpectedResponse("raining"),
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if report.Passed != 1 || report.Failed != 1 {
		t.Errorf("passed/failed = %d/%d, want 1/1", report.Passed, report.Failed)
	}
	if report.Score != 0.5 {
		t.Errorf("Score = %v, want 0.5", report.Score)
	}

	if got, want := report.Results[0].CaseName, "mentions-city"; got != want {
		t.Errorf("first result is %q, want %q", got, want)
	}
	if !report.Results[0].Pass {
		t.Error("mentions-city should pass")
	}
	if report.Results[1].Pass {
		t.Error("mentions-rain should fail")
	}
	if got := report.Results[1].Outcome.Response; got != "The weather in Paris is sunny." {
		t.Errorf("recorded response = %q", got)
	}

	summary := report.Summary()
	if !strings.Contains(summary, "PASS mentions-city") || !strings.Contains(summary, "FAIL mentions-rain") {
		t.Errorf("summary missing case lines:\n%s", summary)
	}
}

func TestEvaluatorTrajectory(t *testing.T) {
	// The callback emits a tool call instead of text, so the run's trajectory
	// has exactly one entry.
	caller := agent.NewSequentialAgent("caller",
		types.WithBeforeAgentCallbacks(func(cctx *types.CallbackContext) (*genai.Content, error) {
			return &genai.Content{
				Role: genai.RoleModel,
				Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{
						Name: "lookup_order",
						Args: map[string]any{"order_id": "42"},
					}},
				},
			}, nil
		}),
	)

	evaluator := eval.NewEvaluator("eval-app", caller,
		eval.WithMatchers(eval.NewTrajectoryMatcher()),
	)

	report, err := evaluator.Evaluate(t.Context(), []*eval.Case{
		eval.NewCase("calls-lookup", "Where is my order #42?").
			WithExpectedTrajectory(eval.ToolCall{
				Name: "lookup_order",
				Args: map[string]any{"order_id": "42"},
			}),
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if report.Passed != 1 {
		t.Fatalf("Passed = %d, want 1:\n%s", report.Passed, report.Summary())
	}
}

func TestEvaluatorNoCases(t *testing.T) {
	evaluator := eval.NewEvaluator("eval-app", newEchoAgent("unused"))
	if _, err := evaluator.Evaluate(t.Context(), nil); err == nil {
		t.Fatal("expected an error for an empty case list")
	}
}

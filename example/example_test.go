// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package example_test

import (
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/example"
	"github.com/eriperspective/agentflow/types"
)

func TestBuildExampleInstruction(t *testing.T) {
	provider := example.NewStaticProvider(
		&types.Example{
			Input: genai.NewContentFromText("What is the weather in Paris?", "user"),
			Output: []*genai.Content{
				{
					Role: "model",
					Parts: []*genai.Part{
						{FunctionCall: &genai.FunctionCall{
							Name: "get_weather",
							Args: map[string]any{"city": "Paris"},
						}},
					},
				},
				{
					Role: "user",
					Parts: []*genai.Part{
						{FunctionResponse: &genai.FunctionResponse{
							Name:     "get_weather",
							Response: map[string]any{"forecast": "sunny"},
						}},
					},
				},
				genai.NewContentFromText("It is sunny in Paris.", "model"),
			},
		},
	)

	instruction, err := example.BuildExampleInstruction(provider, "weather in Paris")
	if err != nil {
		t.Fatalf("BuildExampleInstruction: %v", err)
	}

	for _, want := range []string{
		"EXAMPLE 1:",
		"What is the weather in Paris?",
		"get_weather(city='Paris')",
		`"forecast"`,
		"It is sunny in Paris.",
	} {
		if !strings.Contains(instruction, want) {
			t.Errorf("instruction missing %q:\n%s", want, instruction)
		}
	}
	if !strings.HasPrefix(instruction, example.ExamplesIntro) {
		t.Error("instruction does not start with the examples intro")
	}
}

func TestBuildExampleInstructionNoExamples(t *testing.T) {
	instruction, err := example.BuildExampleInstruction(example.NewStaticProvider(), "anything")
	if err != nil {
		t.Fatalf("BuildExampleInstruction: %v", err)
	}
	if instruction != "" {
		t.Errorf("expected empty instruction, got %q", instruction)
	}
}

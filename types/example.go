// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"google.golang.org/genai"
)

// Example represents a few-shot example with an input and its expected outputs.
type Example struct {
	// The input content of the example.
	Input *genai.Content

	// The expected output contents of the example.
	Output []*genai.Content
}

// ExampleProvider provides few-shot examples for a given query.
type ExampleProvider interface {
	// GetExamples returns the examples relevant to the query.
	GetExamples(query string) []*Example
}

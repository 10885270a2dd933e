// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

// DefaultMaxLLMCalls is the default limit on the total number of llm calls.
const DefaultMaxLLMCalls = 500

// StreamingMode is the streaming mode.
type StreamingMode int

const (
	StreamingModeNone StreamingMode = iota
	StreamingModeSSE
)

// String returns a string representation of the StreamingMode.
func (mode StreamingMode) String() string {
	switch mode {
	case StreamingModeNone:
		return "None"
	case StreamingModeSSE:
		return "sse"
	}
	return ""
}

// RunConfig represents configs for runtime behavior of agents.
type RunConfig struct {
	// Whether or not to save the input blobs as artifacts.
	SaveInputBlobsAsArtifacts bool

	// Streaming mode.
	StreamingMode StreamingMode

	// A limit on the total number of llm calls for a given run.
	MaxLLMCalls int
}

// NewRunConfig returns a [RunConfig] with the default llm call limit.
func NewRunConfig() *RunConfig {
	return &RunConfig{
		MaxLLMCalls: DefaultMaxLLMCalls,
	}
}

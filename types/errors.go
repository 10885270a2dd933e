// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

import "fmt"

// NotImplementedError is the error type for unimplemented behaviour.
type NotImplementedError string

// Error returns a string representation of the [NotImplementedError].
func (e NotImplementedError) Error() string {
	return string(e)
}

// LLMCallsLimitExceededError represents error thrown when the number of LLM calls exceed the limit.
type LLMCallsLimitExceededError string

// NewLLMCallsLimitExceededError returns the new [LLMCallsLimitExceededError] error.
func NewLLMCallsLimitExceededError(msg string, a ...any) error {
	return LLMCallsLimitExceededError(fmt.Sprintf(msg, a...))
}

// Error returns a string representation of the [LLMCallsLimitExceededError].
func (e LLMCallsLimitExceededError) Error() string {
	return string(e)
}

// ToolNotFoundError reports a function call that names a tool the agent does not have.
type ToolNotFoundError struct {
	// ToolName is the name the model called.
	ToolName string
}

// Error returns a string representation of the [ToolNotFoundError].
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %s is not found in the tool map", e.ToolName)
}

// ToolExecutionError wraps an error returned by a tool so callers can
// distinguish tool failures from flow failures.
type ToolExecutionError struct {
	// ToolName is the tool that failed.
	ToolName string

	// Err is the underlying error.
	Err error
}

// Error returns a string representation of the [ToolExecutionError].
func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.ToolName, e.Err)
}

// Unwrap returns the underlying error.
func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

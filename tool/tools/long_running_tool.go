// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

// LongRunningFunctionTool represents a function tool that returns the result asynchronously.
//
// This tool is used for long-running operations that may take a significant
// amount of time to complete. The framework calls the function; when the
// function only starts the operation, the real response is delivered later
// as a function response carrying the same function call ID.
type LongRunningFunctionTool struct {
	*FunctionTool
}

// NewLongRunningFunctionTool returns the new [LongRunningFunctionTool] wrapping fn.
func NewLongRunningFunctionTool(fn Function, opts ...FunctionOption) *LongRunningFunctionTool {
	t := &LongRunningFunctionTool{
		FunctionTool: NewFunctionTool(fn, opts...),
	}
	t.FunctionTool.Tool.SetLongRunning(true)
	return t
}

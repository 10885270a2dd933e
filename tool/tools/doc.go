// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools provides the built-in tools.
//
// # Function Tools
//
// FunctionTool wraps any Go function with the Function signature; the
// declaration is assembled from options, with [SchemaFor] deriving parameter
// schemas from argument structs:
//
//	type searchArgs struct {
//		Query string `json:"query"`
//		Limit *int   `json:"limit,omitempty"`
//	}
//
//	schema, _ := tools.SchemaFor[searchArgs]()
//	searchTool := tools.NewFunctionTool(search,
//		tools.WithName("search"),
//		tools.WithDescription("Searches the catalog."),
//		tools.WithParameters(schema),
//	)
//
// LongRunningFunctionTool marks the wrapped function as long-running: the
// model receives the real result later, as a function response carrying the
// original function call ID.
//
// # Agent Tools
//
// AgentTool turns an agent into a callable tool, running it in an isolated
// session and returning its final text (or parsed output when the agent
// declares an output schema):
//
//	research := tools.NewAgentTool(researchAgent)
//
// # Control Tools
//
// ExitLoopTool escalates out of the enclosing loop agent. GetUserChoiceTool
// asks the user to pick one of several options and waits for the answer
// outside the invocation (human in the loop).
//
// # Memory and Retrieval Tools
//
// LoadMemoryTool searches the memory service on demand; PreloadMemoryTool
// injects relevant memories into the instructions on every request.
// RetrieveTool exposes a retriever so the model can decide when to search
// the document store. LoadWebPageTool fetches a URL and returns its visible
// text.
//
// # Example Tools
//
// ExampleTool appends formatted few-shot examples from an example provider
// to the instructions.
package tools

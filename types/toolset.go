// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

// Toolset represents a base for toolset.
//
// A toolset is a collection of tools that can be used by an agent.
type Toolset interface {
	// GetTools returns all the tools in the toolset based on the provided context.
	GetTools(rctx *ReadOnlyContext) []Tool

	// Close performs cleanup and releases resources held by the toolset.
	Close()
}

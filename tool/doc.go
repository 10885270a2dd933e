// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package tool provides the base implementation shared by all tools.
//
// Tool carries the name, description and long-running flag of a tool and
// implements the parts of [types.Tool] that are common to every tool,
// including declaration registration on the outgoing LLM request. Concrete
// tools embed [Tool] and provide their own declaration and Run method; the
// built-in tools live in the tool/tools package.
package tool

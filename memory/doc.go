// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory provides long-term memory services for agents.
//
// A memory service stores the contents of completed sessions so later
// conversations can recall them. Agents reach memory through
// [types.ToolContext.SearchMemory] or the load_memory tool.
//
// Two implementations are provided:
//
//   - [InMemoryService]: stores raw session events and searches them by
//     keyword. For prototyping only.
//   - [SummaryService]: asks a model to summarize each session before
//     storing it, then keyword-searches the summaries. Summaries keep the
//     recalled context compact for long conversations.
//
// Both services may receive the same session multiple times; the latest
// version of the session replaces the earlier memory.
package memory

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package model provides the [types.Model] implementations for the supported
// LLM providers, and a registry that resolves a model name to its provider.
//
// The registry matches model names against registered regex patterns, so
// agents can be configured with a bare model name string:
//
//	m, err := model.NewLLM(ctx, "", "gemini-2.0-flash")
//
// Claude ("claude-*"), Gemini ("gemini-*") and GPT ("gpt-*") families are
// registered by default. Additional providers can be added with
// [RegisterLLM].
package model

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package agentflow is a code-first Go toolkit for building tool-using LLM
// agents with conversation memory, retrieval and tracing.
package agentflow

import (
	// for raw string prompt constants
	_ "github.com/MakeNowJust/heredoc/v2"
	// for prompt templating
	_ "github.com/google/dotprompt/go/dotprompt"
)

// Version is the version of AgentFlow.
var Version = "v0.0.0"

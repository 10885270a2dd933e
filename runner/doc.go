// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package runner drives agent invocations.
//
// A Runner owns the services an invocation needs (session, artifact, memory)
// and runs one agent tree against one session per user message:
//
//	r := runner.NewRunner("support-app", rootAgent,
//		runner.WithMemoryService(memory.NewInMemoryService()),
//		runner.WithTracing(),
//	)
//	defer r.Close()
//
//	sess, err := r.SessionService().CreateSession(ctx, "support-app", "user-1", "", nil)
//	if err != nil { ... }
//
//	message := genai.NewContentFromText("What is my order status?", genai.RoleUser)
//	for event, err := range r.Run(ctx, "user-1", sess.ID(), message) {
//		if err != nil { ... }
//		// render event
//	}
//
// The runner appends the user message and every non-partial agent event to
// the session, so state deltas are committed as they happen. Finished
// sessions can be pushed to long-term memory with CommitSessionToMemory.
package runner

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent provides hierarchical agent implementations.
//
// The agent package implements a hierarchical, event-driven agent architecture
// with four core agent types:
//
//   - LLMAgent: agents powered by language models with tools, instructions,
//     callbacks, planners, few-shot examples, and structured output
//   - SequentialAgent: executes sub-agents one after another
//   - ParallelAgent: runs sub-agents concurrently on isolated branches and
//     merges their event streams
//   - LoopAgent: repeatedly executes its sub-agents until escalation or the
//     iteration limit
//
// All agents wrap a [types.BaseAgent] for common configuration and stream
// events via iter.Seq2[*types.Event, error] iterators. The
// [types.InvocationContext] tracks execution state, session, and hierarchy,
// with before/after callbacks for customizing behavior.
//
// # Basic Usage
//
// Creating an LLM agent:
//
//	assistant, err := agent.NewLLMAgent(ctx, "assistant",
//		agent.WithModelString("gemini-2.0-flash"),
//		agent.WithInstruction[string]("You are a helpful assistant."),
//		agent.WithTools(searchTool, calcTool),
//	)
//
// Creating a pipeline of agents:
//
//	pipeline := agent.NewSequentialAgent("pipeline",
//		types.WithSubAgents(researcher, writer, reviewer),
//	)
//
// Running an agent:
//
//	for event, err := range assistant.Run(ctx, ictx) {
//		if err != nil {
//			log.Fatal(err)
//		}
//		// Process event
//	}
//
// # Multi-Agent Trees
//
// An LLM agent with sub-agents may transfer the conversation to them via the
// transfer_to_agent function. Transfer directions are controlled with
// [WithDisallowTransferToParent] and [WithDisallowTransferToPeers]. Workflow
// agents (sequential, parallel, loop) orchestrate deterministically and never
// consult a model themselves.
package agent

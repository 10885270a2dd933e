// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package tracing records run trees: per-invocation traces of agent, model,
// tool and retrieval steps.
//
// A [RunTree] is created per invocation; the current span travels in the
// [context.Context]. Instrumented code opens child spans with [StartSpan]
// and is unaffected when no run tree is installed — spans are nil and every
// operation on them is a no-op:
//
//	ctx, span := tracing.StartSpan(ctx, tracing.SpanKindTool, toolName)
//	result, err := tool.Run(ctx, args, toolCtx)
//	span.End(err)
//
// After the invocation, the tree can be walked or exported through slog with
// [RunTree.Log].
package tracing

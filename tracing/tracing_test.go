// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"errors"
	"testing"
)

func TestRunTreeSpans(t *testing.T) {
	t.Parallel()

	rt := NewRunTree("e-test")
	ctx := NewContext(t.Context(), rt.Root())

	ctx, agentSpan := StartSpan(ctx, SpanKindAgent, "root_agent")
	if agentSpan == nil {
		t.Fatal("StartSpan returned nil span with run tree installed")
	}
	agentSpan.SetAttribute("model", "gemini-2.0-flash")

	_, toolSpan := StartSpan(ctx, SpanKindTool, "search")
	toolSpan.End(errors.New("boom"))
	agentSpan.End(nil)
	rt.End(nil)

	var kinds []SpanKind
	var depths []int
	rt.Walk(func(depth int, span *Span) {
		kinds = append(kinds, span.Kind())
		depths = append(depths, depth)
	})

	wantKinds := []SpanKind{SpanKindRun, SpanKindAgent, SpanKindTool}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("walked %d spans, want %d", len(kinds), len(wantKinds))
	}
	for i := range wantKinds {
		if kinds[i] != wantKinds[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], wantKinds[i])
		}
	}
	wantDepths := []int{0, 1, 2}
	for i := range wantDepths {
		if depths[i] != wantDepths[i] {
			t.Errorf("depths[%d] = %d, want %d", i, depths[i], wantDepths[i])
		}
	}

	children := rt.Root().Children()
	if len(children) != 1 {
		t.Fatalf("root children = %d, want 1", len(children))
	}
	if children[0].Attributes()["model"] != "gemini-2.0-flash" {
		t.Error("attribute lost")
	}
	toolChildren := children[0].Children()
	if len(toolChildren) != 1 || toolChildren[0].Err() == nil {
		t.Error("tool span error lost")
	}
}

func TestStartSpanWithoutRunTree(t *testing.T) {
	t.Parallel()

	ctx, span := StartSpan(t.Context(), SpanKindModel, "call")
	if span != nil {
		t.Fatalf("span = %v, want nil when no run tree installed", span)
	}

	// nil spans are no-ops
	span.SetAttribute("k", "v")
	span.End(nil)

	if SpanFromContext(ctx) != nil {
		t.Error("context should carry no span")
	}
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package agent_test

import (
	"context"
	"iter"
	"testing"

	"github.com/eriperspective/agentflow/agent"
	"github.com/eriperspective/agentflow/types"
)

func TestMergeAgentRun(t *testing.T) {
	ctx := context.Background()

	iter1 := func(yield func(*types.Event, error) bool) {
		if !yield(types.NewEvent().WithAuthor("a1"), nil) {
			return
		}
		if !yield(types.NewEvent().WithAuthor("a1"), nil) {
			return
		}
	}

	iter2 := func(yield func(*types.Event, error) bool) {
		yield(types.NewEvent().WithAuthor("a2"), nil)
	}

	merged := agent.MergeAgentRun(ctx, []iter.Seq2[*types.Event, error]{iter1, iter2})

	events := []*types.Event{}
	for event, err := range merged {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		events = append(events, event)
	}

	if len(events) != 3 {
		t.Errorf("expected 3 events, got %d", len(events))
	}
}

func TestMergeAgentRunEmpty(t *testing.T) {
	ctx := context.Background()

	for range agent.MergeAgentRun(ctx, nil) {
		t.Error("expected no events")
	}
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"testing"

	"github.com/eriperspective/agentflow/types"
)

type staticRetriever struct {
	docs []*types.ScoredDocument
}

func (r *staticRetriever) Retrieve(ctx context.Context, query string) ([]*types.ScoredDocument, error) {
	return r.docs, nil
}

func TestRetrieveTool(t *testing.T) {
	t.Parallel()

	retriever := &staticRetriever{
		docs: []*types.ScoredDocument{
			{
				Document: types.Document{
					ID:       "doc-1",
					Content:  "Go has first-class concurrency support.",
					Metadata: map[string]any{"source": "notes.txt"},
				},
				Score: 0.92,
			},
		},
	}

	tool := NewRetrieveTool("search_notes", "Searches the notes.", retriever)
	result, err := tool.Run(t.Context(), map[string]any{"query": "concurrency"}, newTestToolContext(t))
	if err != nil {
		t.Fatal(err)
	}

	response, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("result type = %T, want map", result)
	}
	documents, ok := response["documents"].([]map[string]any)
	if !ok || len(documents) != 1 {
		t.Fatalf("documents = %v, want one entry", response["documents"])
	}
	if documents[0]["id"] != "doc-1" {
		t.Errorf("id = %v, want doc-1", documents[0]["id"])
	}
	if documents[0]["metadata"] == nil {
		t.Error("metadata missing from retrieved document")
	}
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/eriperspective/agentflow/types"
)

func TestCharacterSplitter(t *testing.T) {
	t.Parallel()

	splitter := NewCharacterSplitter(
		WithChunkSize(20),
		WithChunkOverlap(5),
		WithSeparator("\n\n"),
	)

	text := "first paragraph\n\nsecond one\n\nthird paragraph here"
	chunks := splitter.SplitText(text)
	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want at least 2", len(chunks))
	}
	for _, chunk := range chunks {
		if len(chunk) > 25 {
			t.Errorf("chunk %q longer than budget", chunk)
		}
	}
}

func TestRecursiveSplitter(t *testing.T) {
	t.Parallel()

	splitter := NewRecursiveSplitter(
		WithChunkSize(15),
		WithChunkOverlap(0),
	)

	text := "a long line without breaks that must be cut on word boundaries"
	chunks := splitter.SplitText(text)
	if len(chunks) < 3 {
		t.Fatalf("len(chunks) = %d, want at least 3", len(chunks))
	}
	for _, chunk := range chunks {
		if len(chunk) > 15 {
			t.Errorf("chunk %q longer than chunk size", chunk)
		}
	}
	if joined := strings.Join(chunks, " "); !strings.Contains(joined, "boundaries") {
		t.Errorf("content lost in splitting: %q", joined)
	}
}

func TestSplitDocumentsMetadata(t *testing.T) {
	t.Parallel()

	splitter := NewCharacterSplitter(
		WithChunkSize(10),
		WithChunkOverlap(0),
		WithSeparator("\n"),
	)

	docs := splitter.SplitDocuments([]*types.Document{
		{
			ID:      "guide",
			Content: "line one\nline two\nline three",
			Metadata: map[string]any{
				"source": "guide.md",
			},
		},
	})
	if len(docs) < 2 {
		t.Fatalf("len(docs) = %d, want at least 2", len(docs))
	}

	for i, doc := range docs {
		if doc.Metadata["source"] != "guide.md" {
			t.Errorf("doc %d lost source metadata", i)
		}
		if doc.Metadata["chunk"] != i {
			t.Errorf("doc %d chunk = %v, want %d", i, doc.Metadata["chunk"], i)
		}
		if !strings.HasPrefix(doc.ID, "guide#") {
			t.Errorf("doc %d ID = %q, want guide# prefix", i, doc.ID)
		}
	}
}

func TestSplitEveryRuneBoundaries(t *testing.T) {
	t.Parallel()

	pieces := splitEvery("héllo wörld, caffè", 4)
	var rebuilt strings.Builder
	for _, piece := range pieces {
		if !utf8.ValidString(piece) {
			t.Errorf("piece %q is not valid UTF-8", piece)
		}
		if n := utf8.RuneCountInString(piece); n > 4 {
			t.Errorf("piece %q has %d runes, want at most 4", piece, n)
		}
		rebuilt.WriteString(piece)
	}
	if rebuilt.String() != "héllo wörld, caffè" {
		t.Errorf("pieces do not rebuild the input: %q", rebuilt.String())
	}
}

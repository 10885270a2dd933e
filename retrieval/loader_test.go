// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTextLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello retrieval"), 0o644); err != nil {
		t.Fatal(err)
	}

	docs, err := NewTextLoader(path).Load(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("len(docs) = %d, want 1", len(docs))
	}
	if docs[0].Content != "hello retrieval" {
		t.Errorf("Content = %q", docs[0].Content)
	}
	if docs[0].Metadata["source"] != path {
		t.Errorf("source = %v, want %q", docs[0].Metadata["source"], path)
	}
}

func TestDirectoryLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := map[string]string{
		"a.md":      "alpha",
		"b.md":      "beta",
		"ignore.go": "package ignore",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := NewDirectoryLoader(dir, "*.md").Load(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	for _, doc := range docs {
		if filepath.Ext(doc.ID) != ".md" {
			t.Errorf("unexpected document %q", doc.ID)
		}
	}
}

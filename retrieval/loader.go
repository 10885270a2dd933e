// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/eriperspective/agentflow/types"
)

// TextLoader loads a single text file as one document.
//
// The file path is recorded in the document metadata under "source".
type TextLoader struct {
	path string
}

var _ types.DocumentLoader = (*TextLoader)(nil)

// NewTextLoader creates a new [TextLoader] for the given file path.
func NewTextLoader(path string) *TextLoader {
	return &TextLoader{path: path}
}

// Load implements [types.DocumentLoader].
func (l *TextLoader) Load(ctx context.Context) ([]*types.Document, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}

	return []*types.Document{
		{
			ID:      l.path,
			Content: string(data),
			Metadata: map[string]any{
				"source": l.path,
			},
		},
	}, nil
}

// DirectoryLoader loads every file matching a glob pattern under a root
// directory, one document per file.
type DirectoryLoader struct {
	root    string
	pattern string
}

var _ types.DocumentLoader = (*DirectoryLoader)(nil)

// NewDirectoryLoader creates a new [DirectoryLoader]. The pattern is matched
// against the file base name; an empty pattern matches every file.
func NewDirectoryLoader(root, pattern string) *DirectoryLoader {
	return &DirectoryLoader{
		root:    root,
		pattern: pattern,
	}
}

// Load implements [types.DocumentLoader].
func (l *DirectoryLoader) Load(ctx context.Context) ([]*types.Document, error) {
	var docs []*types.Document
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		if l.pattern != "" {
			matched, err := filepath.Match(l.pattern, d.Name())
			if err != nil {
				return fmt.Errorf("match pattern %q: %w", l.pattern, err)
			}
			if !matched {
				return nil
			}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		docs = append(docs, &types.Document{
			ID:      path,
			Content: string(data),
			Metadata: map[string]any{
				"source": path,
			},
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", l.root, err)
	}

	return docs, nil
}

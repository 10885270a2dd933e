// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"fmt"
	"maps"
	"strings"

	"github.com/eriperspective/agentflow/types"
)

const (
	// DefaultChunkSize is the default maximum chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the default number of characters shared between
	// adjacent chunks.
	DefaultChunkOverlap = 200
)

// SplitterOption configures a splitter.
type SplitterOption func(*splitterConfig)

type splitterConfig struct {
	chunkSize    int
	chunkOverlap int
	separator    string
	separators   []string
}

// WithChunkSize sets the maximum chunk length in characters.
func WithChunkSize(size int) SplitterOption {
	return func(c *splitterConfig) {
		c.chunkSize = size
	}
}

// WithChunkOverlap sets the number of characters shared between adjacent chunks.
func WithChunkOverlap(overlap int) SplitterOption {
	return func(c *splitterConfig) {
		c.chunkOverlap = overlap
	}
}

// WithSeparator sets the separator for [CharacterSplitter].
func WithSeparator(separator string) SplitterOption {
	return func(c *splitterConfig) {
		c.separator = separator
	}
}

// WithSeparators sets the separator cascade for [RecursiveSplitter].
func WithSeparators(separators ...string) SplitterOption {
	return func(c *splitterConfig) {
		c.separators = separators
	}
}

// CharacterSplitter splits text on a single separator and merges the pieces
// into chunks of at most the configured size, with overlap carried between
// adjacent chunks.
type CharacterSplitter struct {
	chunkSize    int
	chunkOverlap int
	separator    string
}

var _ types.TextSplitter = (*CharacterSplitter)(nil)

// NewCharacterSplitter creates a new [CharacterSplitter]. The default splits
// on blank lines into chunks of [DefaultChunkSize] characters with
// [DefaultChunkOverlap] overlap.
func NewCharacterSplitter(opts ...SplitterOption) *CharacterSplitter {
	config := &splitterConfig{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		separator:    "\n\n",
	}
	for _, opt := range opts {
		opt(config)
	}

	return &CharacterSplitter{
		chunkSize:    config.chunkSize,
		chunkOverlap: config.chunkOverlap,
		separator:    config.separator,
	}
}

// SplitText implements [types.TextSplitter].
func (s *CharacterSplitter) SplitText(text string) []string {
	splits := strings.Split(text, s.separator)
	return mergeSplits(splits, s.separator, s.chunkSize, s.chunkOverlap)
}

// SplitDocuments implements [types.TextSplitter].
func (s *CharacterSplitter) SplitDocuments(docs []*types.Document) []*types.Document {
	return splitDocuments(s, docs)
}

// RecursiveSplitter splits text by trying a cascade of separators, recursing
// with finer separators into pieces still larger than the chunk size. The
// default cascade is paragraphs, lines, words, characters.
type RecursiveSplitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

var _ types.TextSplitter = (*RecursiveSplitter)(nil)

// NewRecursiveSplitter creates a new [RecursiveSplitter].
func NewRecursiveSplitter(opts ...SplitterOption) *RecursiveSplitter {
	config := &splitterConfig{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		separators:   []string{"\n\n", "\n", " ", ""},
	}
	for _, opt := range opts {
		opt(config)
	}

	return &RecursiveSplitter{
		chunkSize:    config.chunkSize,
		chunkOverlap: config.chunkOverlap,
		separators:   config.separators,
	}
}

// SplitText implements [types.TextSplitter].
func (s *RecursiveSplitter) SplitText(text string) []string {
	return s.splitText(text, s.separators)
}

func (s *RecursiveSplitter) splitText(text string, separators []string) []string {
	// Pick the first separator that occurs in the text; the last resort
	// separator (usually "") always matches.
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	var splits []string
	if separator == "" {
		splits = splitEvery(text, s.chunkSize)
	} else {
		splits = strings.Split(text, separator)
	}

	// Pieces still larger than the chunk size are split again with the
	// finer separators.
	var finalSplits []string
	for _, split := range splits {
		if len(split) <= s.chunkSize || len(remaining) == 0 {
			finalSplits = append(finalSplits, split)
			continue
		}
		finalSplits = append(finalSplits, s.splitText(split, remaining)...)
	}

	return mergeSplits(finalSplits, separator, s.chunkSize, s.chunkOverlap)
}

// SplitDocuments implements [types.TextSplitter].
func (s *RecursiveSplitter) SplitDocuments(docs []*types.Document) []*types.Document {
	return splitDocuments(s, docs)
}

// splitDocuments splits each document into chunk documents, carrying the
// source metadata plus the chunk index.
func splitDocuments(splitter types.TextSplitter, docs []*types.Document) []*types.Document {
	var out []*types.Document
	for _, doc := range docs {
		chunks := splitter.SplitText(doc.Content)
		for i, chunk := range chunks {
			metadata := maps.Clone(doc.Metadata)
			if metadata == nil {
				metadata = make(map[string]any)
			}
			metadata["chunk"] = i

			out = append(out, &types.Document{
				ID:       fmt.Sprintf("%s#%d", doc.ID, i),
				Content:  chunk,
				Metadata: metadata,
			})
		}
	}

	return out
}

// mergeSplits joins consecutive splits into chunks no longer than chunkSize,
// keeping chunkOverlap trailing characters of one chunk at the head of the
// next.
func mergeSplits(splits []string, separator string, chunkSize, chunkOverlap int) []string {
	var chunks []string
	var current []string
	total := 0

	for _, split := range splits {
		if split == "" {
			continue
		}

		sepLen := 0
		if len(current) > 0 {
			sepLen = len(separator)
		}
		if total+sepLen+len(split) > chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, separator))

			// Drop leading splits until the carried overlap fits.
			for total > chunkOverlap || (total+sepLen+len(split) > chunkSize && total > 0) {
				total -= len(current[0])
				if len(current) > 1 {
					total -= len(separator)
				}
				current = current[1:]
			}
		}

		current = append(current, split)
		total += len(split)
		if len(current) > 1 {
			total += len(separator)
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, separator))
	}

	return chunks
}

// splitEvery cuts text into pieces of at most n runes, never splitting inside
// a multi-byte rune.
func splitEvery(text string, n int) []string {
	if n <= 0 {
		return []string{text}
	}

	var out []string
	runes := []rune(text)
	for len(runes) > n {
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}

	return out
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/eriperspective/agentflow/tool"
	"github.com/eriperspective/agentflow/types"
)

// PreloadMemoryTool preloads memories relevant to the current user query into
// the system instructions.
//
// The tool never surfaces to the model as a callable function; it only
// contributes instructions while the request is being built.
type PreloadMemoryTool struct {
	*tool.Tool
}

var _ types.Tool = (*PreloadMemoryTool)(nil)

// NewPreloadMemoryTool creates a new [PreloadMemoryTool].
func NewPreloadMemoryTool() *PreloadMemoryTool {
	return &PreloadMemoryTool{
		Tool: tool.NewTool("preload_memory", "preload_memory", false),
	}
}

// ProcessLLMRequest implements [types.Tool].
func (t *PreloadMemoryTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	userContent := toolCtx.UserContent()
	if userContent == nil || len(userContent.Parts) == 0 || userContent.Parts[0].Text == "" {
		return nil
	}

	userQuery := userContent.Parts[0].Text
	response, err := toolCtx.SearchMemory(ctx, userQuery)
	if err != nil {
		return err
	}

	var memoryTextLines []string
	for _, memory := range response.Memories {
		if !memory.Timestamp.IsZero() {
			memoryTextLines = append(memoryTextLines, fmt.Sprintf("Time: %s", memory.Timestamp))
		}

		if text := memoryText(memory, " "); text != "" {
			switch {
			case memory.Author != "":
				memoryTextLines = append(memoryTextLines, fmt.Sprintf("%s: %s", memory.Author, text))
			default:
				memoryTextLines = append(memoryTextLines, text)
			}
		}
	}
	if len(memoryTextLines) == 0 {
		return nil
	}

	fullMemoryText := strings.Join(memoryTextLines, "\n")
	si := `The following content is from your previous conversations with the user.
They may be useful for answering the user's current query.
<PAST_CONVERSATIONS>
` +
		fullMemoryText +
		`
</PAST_CONVERSATIONS>
`
	request.AppendInstructions(si)

	return nil
}

// memoryText joins the text parts of the memory entry.
func memoryText(memory *types.MemoryEntry, splitter string) string {
	if memory.Content == nil || len(memory.Content.Parts) == 0 {
		return ""
	}

	texts := make([]string, 0, len(memory.Content.Parts))
	for _, part := range memory.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, splitter)
}

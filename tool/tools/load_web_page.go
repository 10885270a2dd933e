// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/tool"
	"github.com/eriperspective/agentflow/types"
)

// LoadWebPageTool fetches a web page and returns the text in it.
type LoadWebPageTool struct {
	*tool.Tool

	hc *http.Client
}

var _ types.Tool = (*LoadWebPageTool)(nil)

// NewLoadWebPageTool creates a new [LoadWebPageTool]. A nil client falls back
// to [http.DefaultClient].
func NewLoadWebPageTool(hc *http.Client) *LoadWebPageTool {
	if hc == nil {
		hc = http.DefaultClient
	}

	return &LoadWebPageTool{
		Tool: tool.NewTool("load_web_page", "Fetches the content in the url and returns the text in it.", false),
		hc:   hc,
	}
}

// GetDeclaration implements [types.Tool].
func (t *LoadWebPageTool) GetDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"url": {
					Type:        genai.TypeString,
					Description: "The url to fetch.",
				},
			},
			Required: []string{"url"},
		},
	}
}

// Run implements [types.Tool].
func (t *LoadWebPageTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	uri, _ := args["url"].(string)
	text, err := t.LoadWebPage(ctx, uri)
	if err != nil {
		return nil, err
	}

	return map[string]any{"text": text}, nil
}

// LoadWebPage fetches the content in the url and returns the text in it.
func (t *LoadWebPageTool) LoadWebPage(ctx context.Context, uri string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", uri, err)
	}

	resp, err := t.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %s", uri, resp.Status)
	}

	node, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", uri, err)
	}

	return ExtractText(node), nil
}

// ExtractText walks an HTML document and returns its visible text, one line
// per text node. Script and style contents are skipped, and lines of three
// characters or fewer (single words, stray punctuation) are dropped.
func ExtractText(node *html.Node) string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); len(text) > 3 {
				lines = append(lines, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	return strings.Join(lines, "\n")
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/eriperspective/agentflow/types"
)

// WebLoader fetches web pages and loads their visible text, one document per
// URL. The URL is recorded in the document metadata under "source".
type WebLoader struct {
	urls []string
	hc   *http.Client
}

var _ types.DocumentLoader = (*WebLoader)(nil)

// NewWebLoader creates a new [WebLoader] for the given URLs. A nil client
// falls back to [http.DefaultClient].
func NewWebLoader(hc *http.Client, urls ...string) *WebLoader {
	if hc == nil {
		hc = http.DefaultClient
	}

	return &WebLoader{
		urls: urls,
		hc:   hc,
	}
}

// Load implements [types.DocumentLoader].
func (l *WebLoader) Load(ctx context.Context) ([]*types.Document, error) {
	docs := make([]*types.Document, 0, len(l.urls))
	for _, uri := range l.urls {
		text, err := l.fetch(ctx, uri)
		if err != nil {
			return nil, err
		}
		docs = append(docs, &types.Document{
			ID:      uri,
			Content: text,
			Metadata: map[string]any{
				"source": uri,
			},
		})
	}

	return docs, nil
}

func (l *WebLoader) fetch(ctx context.Context, uri string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", uri, err)
	}

	resp, err := l.hc.Do(req)
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

	return htmlText(node), nil
}

// htmlText walks an HTML document and returns its visible text. Script and
// style contents are skipped.
func htmlText(node *html.Node) string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
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

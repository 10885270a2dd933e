// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

// JSONParser extracts and decodes a JSON object from model output.
//
// Model output often wraps JSON in a markdown fence or surrounds it with
// prose; the parser finds the outermost object and decodes it.
type JSONParser struct{}

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// Parse decodes the JSON object in text into a map.
func (p *JSONParser) Parse(text string) (map[string]any, error) {
	raw := extractJSON(text)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object found in output")
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("invalid JSON in output: %s", raw)
	}

	var out map[string]any
	if err := sonic.ConfigFastest.UnmarshalFromString(raw, &out); err != nil {
		return nil, fmt.Errorf("decode JSON output: %w", err)
	}

	return out, nil
}

// ParseInto decodes the JSON object in text into v.
func (p *JSONParser) ParseInto(text string, v any) error {
	raw := extractJSON(text)
	if raw == "" {
		return fmt.Errorf("no JSON object found in output")
	}

	if err := sonic.ConfigFastest.UnmarshalFromString(raw, v); err != nil {
		return fmt.Errorf("decode JSON output: %w", err)
	}

	return nil
}

// Get returns the value at a gjson path inside the JSON object in text.
func (p *JSONParser) Get(text, path string) (gjson.Result, error) {
	raw := extractJSON(text)
	if raw == "" {
		return gjson.Result{}, fmt.Errorf("no JSON object found in output")
	}

	return gjson.Get(raw, path), nil
}

// extractJSON returns the JSON object in text, unwrapping a markdown fence
// and trimming surrounding prose.
func extractJSON(text string) string {
	if match := fencePattern.FindStringSubmatch(text); match != nil {
		text = match[1]
	}
	text = strings.TrimSpace(text)

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}
	var end int
	if text[start] == '{' {
		end = strings.LastIndex(text, "}")
	} else {
		end = strings.LastIndex(text, "]")
	}
	if end <= start {
		return ""
	}

	return text[start : end+1]
}

// ListParser parses model output into a list of items, accepting numbered,
// bulleted and bare lines.
type ListParser struct{}

var listItemPattern = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// Parse returns the list items in text, one per non-empty line, with list
// markers stripped.
func (p *ListParser) Parse(text string) []string {
	var items []string
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(listItemPattern.ReplaceAllString(strings.TrimRight(line, "\n"), ""))
		if line != "" {
			items = append(items, line)
		}
	}

	return items
}

// KeyValueParser parses "key: value" lines of model output into a map.
type KeyValueParser struct {
	// Separator between key and value. Defaults to ":".
	Separator string
}

// Parse returns the key/value pairs in text. Lines without a separator are
// skipped.
func (p *KeyValueParser) Parse(text string) map[string]string {
	separator := p.Separator
	if separator == "" {
		separator = ":"
	}

	out := make(map[string]string)
	for line := range strings.Lines(text) {
		key, value, found := strings.Cut(strings.TrimRight(line, "\n"), separator)
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}

	return out
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJSONParser(t *testing.T) {
	t.Parallel()

	var parser JSONParser

	tests := []struct {
		name string
		text string
		want map[string]any
	}{
		{
			name: "bare_object",
			text: `{"answer": "blue", "confidence": 0.9}`,
			want: map[string]any{"answer": "blue", "confidence": 0.9},
		},
		{
			name: "fenced",
			text: "Here you go:\n```json\n{\"answer\": \"blue\"}\n```\nLet me know!",
			want: map[string]any{"answer": "blue"},
		},
		{
			name: "surrounded_by_prose",
			text: `The result is {"ok": true} as requested.`,
			want: map[string]any{"ok": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parser.Parse(tt.text)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := parser.Parse("no json here"); err == nil {
		t.Error("expected error for output without JSON")
	}
}

func TestJSONParserGet(t *testing.T) {
	t.Parallel()

	var parser JSONParser
	result, err := parser.Get(`{"user": {"name": "Ada"}}`, "user.name")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := result.String(), "Ada"; got != want {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}

func TestListParser(t *testing.T) {
	t.Parallel()

	var parser ListParser
	text := "1. first item\n2) second item\n- third item\n* fourth item\n\nfifth item"
	want := []string{"first item", "second item", "third item", "fourth item", "fifth item"}
	if diff := cmp.Diff(want, parser.Parse(text)); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyValueParser(t *testing.T) {
	t.Parallel()

	var parser KeyValueParser
	text := "name: Ada\nrole: engineer\nskip this line\nempty:\n"
	want := map[string]string{
		"name":  "Ada",
		"role":  "engineer",
		"empty": "",
	}
	if diff := cmp.Diff(want, parser.Parse(text)); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTemplateExtractVariables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		want     []string
	}{
		{
			name:     "simple_variable",
			template: "Hello {name}!",
			want:     []string{"name"},
		},
		{
			name:     "multiple_variables",
			template: "Hello {name}, welcome to {company}!",
			want:     []string{"name", "company"},
		},
		{
			name:     "duplicate_variables",
			template: "Hello {name}, {name} is a great name!",
			want:     []string{"name"},
		},
		{
			name:     "no_variables",
			template: "Hello world!",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpl, err := NewTemplate(tt.template)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, tmpl.Variables()); diff != "" {
				t.Errorf("Variables() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTemplateFormat(t *testing.T) {
	t.Parallel()

	tmpl, err := NewTemplate("Answer as {persona}. Question: {question}")
	if err != nil {
		t.Fatal(err)
	}

	got, err := tmpl.Format(map[string]any{
		"persona":  "a pirate",
		"question": "why is the sky blue?",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "Answer as a pirate. Question: why is the sky blue?"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestTemplateFormatDetailed(t *testing.T) {
	t.Parallel()

	tmpl, err := NewTemplate("Hello {name} from {place}")
	if err != nil {
		t.Fatal(err)
	}

	result, err := tmpl.FormatDetailed(map[string]any{
		"name":  "Ada",
		"extra": "unused",
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"place"}, result.Missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"extra"}, result.Unused); diff != "" {
		t.Errorf("Unused mismatch (-want +got):\n%s", diff)
	}
	if want := "Hello Ada from {place}"; result.Content != want {
		t.Errorf("Content = %q, want %q", result.Content, want)
	}
}

func TestTemplateStrictMode(t *testing.T) {
	t.Parallel()

	tmpl, err := NewTemplate("Hello {name}", WithValidationMode(ValidationModeStrict))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tmpl.Format(map[string]any{}); err == nil {
		t.Error("expected error for missing variable in strict mode")
	}
}

func TestTemplateInvalidSyntax(t *testing.T) {
	t.Parallel()

	for _, template := range []string{
		"unmatched {brace",
		"unmatched }brace{",
		"empty {} variable",
		"bad {1name} variable",
	} {
		if _, err := NewTemplate(template); err == nil {
			t.Errorf("NewTemplate(%q) succeeded, want error", template)
		}
	}
}

func TestTemplateAdvancedEngine(t *testing.T) {
	t.Parallel()

	tmpl, err := NewTemplate("Hello {{.Name}}, you have {{.Count}} messages", WithEngine(TemplateEngineAdvanced))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Name", "Count"}, tmpl.Variables()); diff != "" {
		t.Errorf("Variables() mismatch (-want +got):\n%s", diff)
	}

	got, err := tmpl.Format(map[string]any{"Name": "Ada", "Count": 3})
	if err != nil {
		t.Fatal(err)
	}
	if want := "Hello Ada, you have 3 messages"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

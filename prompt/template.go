// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

// TemplateEngine selects the substitution syntax of a template.
type TemplateEngine string

const (
	// TemplateEngineSimple is Python-style {variable} substitution.
	TemplateEngineSimple TemplateEngine = "simple"

	// TemplateEngineAdvanced is Go text/template syntax.
	TemplateEngineAdvanced TemplateEngine = "advanced"
)

// ValidationMode controls how missing and undeclared variables are treated.
type ValidationMode string

const (
	// ValidationModeStrict fails on missing variables.
	ValidationModeStrict ValidationMode = "strict"

	// ValidationModeWarn reports missing variables in the result without
	// failing.
	ValidationModeWarn ValidationMode = "warn"

	// ValidationModeNone performs no validation.
	ValidationModeNone ValidationMode = "none"
)

var (
	simpleVarPattern  = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)
	simpleNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	goTemplateVar     = regexp.MustCompile(`\{\{\s*\.([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)
)

// Template is a prompt template compiled for repeated formatting.
type Template struct {
	text      string
	engine    TemplateEngine
	mode      ValidationMode
	variables []string
	compiled  *template.Template
}

// TemplateOption configures a [Template].
type TemplateOption func(*Template)

// WithEngine sets the template engine. The default is [TemplateEngineSimple].
func WithEngine(engine TemplateEngine) TemplateOption {
	return func(t *Template) {
		t.engine = engine
	}
}

// WithValidationMode sets the validation mode. The default is
// [ValidationModeWarn].
func WithValidationMode(mode ValidationMode) TemplateOption {
	return func(t *Template) {
		t.mode = mode
	}
}

// NewTemplate compiles a prompt template. The template syntax is validated
// up front; formatting never re-parses the template.
func NewTemplate(text string, opts ...TemplateOption) (*Template, error) {
	t := &Template{
		text:   text,
		engine: TemplateEngineSimple,
		mode:   ValidationModeWarn,
	}
	for _, opt := range opts {
		opt(t)
	}

	switch t.engine {
	case TemplateEngineSimple:
		if err := validateSimpleTemplate(text); err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
		t.variables = extractSimpleVariables(text)

	case TemplateEngineAdvanced:
		compiled, err := template.New("prompt").Option("missingkey=zero").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
		t.compiled = compiled
		t.variables = extractGoTemplateVariables(text)

	default:
		return nil, fmt.Errorf("unsupported template engine: %s", t.engine)
	}

	return t, nil
}

// Text returns the original template text.
func (t *Template) Text() string {
	return t.text
}

// Variables returns the variable names referenced by the template.
func (t *Template) Variables() []string {
	return t.variables
}

// FormatResult is the outcome of applying variables to a template.
type FormatResult struct {
	// Content is the formatted prompt.
	Content string

	// Missing lists referenced variables that had no value.
	Missing []string

	// Unused lists provided variables the template never referenced.
	Unused []string
}

// Format applies the variables and returns the formatted prompt. In strict
// mode an error is returned when a referenced variable has no value.
func (t *Template) Format(variables map[string]any) (string, error) {
	result, err := t.FormatDetailed(variables)
	if err != nil {
		return "", err
	}

	return result.Content, nil
}

// FormatDetailed applies the variables and reports missing and unused ones.
func (t *Template) FormatDetailed(variables map[string]any) (*FormatResult, error) {
	result := &FormatResult{}

	referenced := make(map[string]bool, len(t.variables))
	for _, name := range t.variables {
		referenced[name] = true
		if _, ok := variables[name]; !ok {
			result.Missing = append(result.Missing, name)
		}
	}
	for name := range variables {
		if !referenced[name] {
			result.Unused = append(result.Unused, name)
		}
	}
	if len(result.Missing) > 0 && t.mode == ValidationModeStrict {
		return nil, fmt.Errorf("missing variables: %s", strings.Join(result.Missing, ", "))
	}

	switch t.engine {
	case TemplateEngineSimple:
		content := t.text
		for _, name := range t.variables {
			value, ok := variables[name]
			if !ok {
				continue
			}
			content = strings.ReplaceAll(content, "{"+name+"}", fmt.Sprintf("%v", value))
		}
		result.Content = content

	case TemplateEngineAdvanced:
		var buf bytes.Buffer
		if err := t.compiled.Execute(&buf, variables); err != nil {
			return nil, fmt.Errorf("execute template: %w", err)
		}
		result.Content = buf.String()
	}

	return result, nil
}

// extractSimpleVariables extracts variables in {variable} format.
func extractSimpleVariables(text string) []string {
	seen := make(map[string]bool)
	var variables []string
	for _, match := range simpleVarPattern.FindAllStringSubmatch(text, -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			variables = append(variables, name)
		}
	}

	return variables
}

// validateSimpleTemplate checks brace balance and variable names.
func validateSimpleTemplate(text string) error {
	braceCount := 0
	for i, char := range text {
		switch char {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount < 0 {
				return fmt.Errorf("unmatched closing brace at position %d", i)
			}
		}
	}
	if braceCount > 0 {
		return fmt.Errorf("unmatched opening brace")
	}

	for _, match := range regexp.MustCompile(`\{([^{}]*)\}`).FindAllStringSubmatch(text, -1) {
		name := match[1]
		if name == "" {
			return fmt.Errorf("empty variable name")
		}
		if !simpleNamePattern.MatchString(name) {
			return fmt.Errorf("invalid variable name: %s", name)
		}
	}

	return nil
}

// extractGoTemplateVariables extracts top-level field references from Go
// template syntax.
func extractGoTemplateVariables(text string) []string {
	seen := make(map[string]bool)
	var variables []string
	for _, match := range goTemplateVar.FindAllStringSubmatch(text, -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			variables = append(variables, name)
		}
	}

	return variables
}

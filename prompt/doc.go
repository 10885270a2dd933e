// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package prompt provides prompt templates and output parsers.
//
// # Templates
//
// Template compiles once and formats repeatedly. The default simple engine
// uses {variable} substitution; the advanced engine is Go text/template:
//
//	tmpl, err := prompt.NewTemplate("Answer as {persona}. Question: {question}")
//	if err != nil { ... }
//	text, err := tmpl.Format(map[string]any{
//		"persona":  "a pirate",
//		"question": "why is the sky blue?",
//	})
//
// Validation modes control how missing variables are treated: strict fails,
// warn reports them in FormatDetailed, none ignores them.
//
// # Output Parsers
//
// Parsers recover structure from model text. JSONParser unwraps markdown
// fences and surrounding prose before decoding; ListParser strips numbering
// and bullets; KeyValueParser splits "key: value" lines.
//
//	var parser prompt.JSONParser
//	out, err := parser.Parse("```json\n{\"answer\": 42}\n```")
package prompt

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package example

import (
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/eriperspective/agentflow/model"
	"github.com/eriperspective/agentflow/types"
)

// StaticProvider provides a fixed list of examples regardless of the query.
type StaticProvider struct {
	examples []*types.Example
}

var _ types.ExampleProvider = (*StaticProvider)(nil)

// NewStaticProvider creates a [StaticProvider] with the given examples.
func NewStaticProvider(examples ...*types.Example) *StaticProvider {
	return &StaticProvider{
		examples: examples,
	}
}

// GetExamples implements [types.ExampleProvider].
func (p *StaticProvider) GetExamples(query string) []*types.Example {
	return p.examples
}

// Constant parts of the example string.
const (
	ExamplesIntro          = "<EXAMPLES>\nBegin few-shot\nThe following are examples of user queries and model responses using the available tools.\n\n"
	ExamplesEnd            = "End few-shot\n<EXAMPLES>"
	ExampleStart           = "EXAMPLE %d:\nBegin example\n"
	ExampleEnd             = "End example\n\n"
	UserPrefix             = "[user]\n"
	ModelPrefix            = "[model]\n"
	FunctionCallPrefix     = "```tool_code\n"
	FunctionCallSuffix     = "\n```\n"
	FunctionResponsePrefix = "```tool_outputs\n"
	FunctionResponseSuffix = "\n```\n"
)

// ConvertExamplesToText converts a list of examples to a string that can be used in a system instruction.
func ConvertExamplesToText(examples []*types.Example) (string, error) {
	var (
		examplesStr strings.Builder
		output      strings.Builder
	)

	for i, example := range examples {
		output.Reset() // reuse

		output.WriteString(fmt.Sprintf(ExampleStart, i+1) + UserPrefix)
		if example.Input != nil && len(example.Input.Parts) > 0 {
			partTexts := make([]string, 0, len(example.Input.Parts))
			for _, part := range example.Input.Parts {
				if part.Text != "" {
					partTexts = append(partTexts, part.Text)
				}
			}
			output.WriteString(strings.Join(partTexts, "\n") + "\n")
		}

		previousRole := ""
		for _, content := range example.Output {
			role := UserPrefix
			if content.Role == model.RoleModel {
				role = ModelPrefix
			}
			if role != previousRole {
				output.WriteString(role)
			}
			previousRole = role

			for _, part := range content.Parts {
				switch {
				case part.FunctionCall != nil:
					args := []string{}
					// Render the function call part as a python-like function call.
					for k, v := range part.FunctionCall.Args {
						switch v := v.(type) {
						case string:
							args = append(args, fmt.Sprintf("%s='%s'", k, v))
						default:
							args = append(args, fmt.Sprintf("%s=%v", k, v))
						}
					}
					output.WriteString(fmt.Sprintf("%s%s(%s)%s", FunctionCallPrefix, part.FunctionCall.Name, strings.Join(args, ", "), FunctionCallSuffix))

				case part.FunctionResponse != nil:
					// Render the function response part as a json string.
					data, err := json.Marshal(part.FunctionResponse.Response, jsontext.SpaceAfterComma(true))
					if err != nil {
						return "", err
					}
					output.WriteString(fmt.Sprintf("%s%s%s", FunctionResponsePrefix, string(data), FunctionResponseSuffix))

				case part.Text != "":
					output.WriteString(part.Text + "\n")
				}
			}
		}

		output.WriteString(ExampleEnd)
		examplesStr.WriteString(output.String())
	}

	return fmt.Sprintf("%s%s%s", ExamplesIntro, examplesStr.String(), ExamplesEnd), nil
}

// BuildExampleInstruction builds a system instruction string from the provider's
// examples for the query.
func BuildExampleInstruction(provider types.ExampleProvider, query string) (string, error) {
	examples := provider.GetExamples(query)
	if len(examples) == 0 {
		return "", nil
	}
	return ConvertExamplesToText(examples)
}

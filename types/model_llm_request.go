// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/internal/pool"
)

// LLMRequest represents a LLM request class that allows passing in tools, output schema and system instructions.
type LLMRequest struct {
	// The model name.
	Model string `json:"model,omitempty"`

	// The contents to send to the model.
	Contents []*genai.Content `json:"contents"`

	// Additional config for the generate content request.
	//
	// tools in generate_content_config should not be set.
	Config *genai.GenerateContentConfig `json:"config,omitempty"`

	// The tools map.
	ToolMap map[string]Tool `json:"-"`
}

// LLMRequestOption configures an [LLMRequest].
type LLMRequestOption func(*LLMRequest)

// WithModelName sets the model name.
func WithModelName(name string) LLMRequestOption {
	return func(r *LLMRequest) {
		r.Model = name
	}
}

// WithGenerationConfig sets the [*genai.GenerateContentConfig] for the [LLMRequest].
func WithGenerationConfig(config *genai.GenerateContentConfig) LLMRequestOption {
	return func(r *LLMRequest) {
		r.Config = config
	}
}

// NewLLMRequest creates a new [LLMRequest].
func NewLLMRequest(contents []*genai.Content, opts ...LLMRequestOption) *LLMRequest {
	r := &LLMRequest{
		Contents: contents,
		ToolMap:  make(map[string]Tool),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// AppendInstructions appends instructions to the system instruction.
func (r *LLMRequest) AppendInstructions(instructions ...string) {
	if r.Config == nil {
		r.Config = &genai.GenerateContentConfig{}
	}

	if r.Config.SystemInstruction == nil {
		r.Config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{
					Text: strings.Join(instructions, "\n\n"),
				},
			},
		}
		return
	}

	r.Config.SystemInstruction.Parts = append(r.Config.SystemInstruction.Parts, &genai.Part{
		Text: "\n\n" + strings.Join(instructions, "\n\n"),
	})
}

// AppendTools adds tools to the request.
func (r *LLMRequest) AppendTools(tools ...Tool) *LLMRequest {
	if r.Config == nil {
		r.Config = &genai.GenerateContentConfig{}
	}
	if r.ToolMap == nil {
		r.ToolMap = make(map[string]Tool)
	}

	var declarations []*genai.FunctionDeclaration
	for _, tool := range tools {
		if declaration := tool.GetDeclaration(); declaration != nil {
			declarations = append(declarations, declaration)
		}
		r.ToolMap[tool.Name()] = tool
	}
	if len(declarations) == 0 {
		return r
	}

	// The declarations are consolidated into a single tool entry so that the
	// model sees one function-calling toolset.
	for _, tool := range r.Config.Tools {
		if len(tool.FunctionDeclarations) > 0 {
			tool.FunctionDeclarations = append(tool.FunctionDeclarations, declarations...)
			return r
		}
	}
	r.Config.Tools = append(r.Config.Tools, &genai.Tool{
		FunctionDeclarations: declarations,
	})

	return r
}

// SetOutputSchema configures the expected response format.
//
// Setting an output schema constrains the model to reply with JSON matching
// the schema; tools cannot be used on the same request.
func (r *LLMRequest) SetOutputSchema(schema *genai.Schema) *LLMRequest {
	if r.Config == nil {
		r.Config = &genai.GenerateContentConfig{}
	}

	r.Config.ResponseSchema = schema
	r.Config.ResponseMIMEType = "application/json"

	return r
}

// SystemInstructionText returns the concatenated system instruction text.
func (r *LLMRequest) SystemInstructionText() string {
	if r.Config == nil || r.Config.SystemInstruction == nil {
		return ""
	}

	sb := pool.String.Get()
	defer pool.String.Put(sb)
	sb.Reset()
	for _, part := range r.Config.SystemInstruction.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// ToJSON converts the request to a JSON string.
func (r *LLMRequest) ToJSON() (string, error) {
	sb := pool.String.Get()
	defer pool.String.Put(sb)
	sb.Reset()
	if err := json.MarshalWrite(sb, r, json.DefaultOptionsV2()); err != nil {
		return "", fmt.Errorf("failed to marshal LLMRequest to JSON: %w", err)
	}
	return sb.String(), nil
}

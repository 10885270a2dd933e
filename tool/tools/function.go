// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"maps"
	"reflect"
	"runtime"
	"strings"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/tool"
	"github.com/eriperspective/agentflow/types"
)

// Function represents a user-defined function that can be called with a context.
type Function func(ctx context.Context, args map[string]any) (any, error)

// FunctionOption configures a [FunctionTool].
type FunctionOption func(*functionConfig)

type functionConfig struct {
	name        string
	description string
	parameters  *genai.Schema
	paramDescs  map[string]string
}

// WithName sets a custom name for the function declaration. By default the
// name of the wrapped Go function is used.
func WithName(name string) FunctionOption {
	return func(c *functionConfig) {
		c.name = name
	}
}

// WithDescription sets the description for the function declaration.
func WithDescription(description string) FunctionOption {
	return func(c *functionConfig) {
		c.description = description
	}
}

// WithParameters sets the parameters schema for the function declaration.
// Use [SchemaFor] to derive the schema from an argument struct type.
func WithParameters(schema *genai.Schema) FunctionOption {
	return func(c *functionConfig) {
		c.parameters = schema
	}
}

// WithParameterDescription sets the description of a single parameter in the
// parameters schema.
func WithParameterDescription(paramName, description string) FunctionOption {
	return func(c *functionConfig) {
		if c.paramDescs == nil {
			c.paramDescs = make(map[string]string)
		}
		c.paramDescs[paramName] = description
	}
}

// FunctionTool represents a tool that wraps a user-defined function.
type FunctionTool struct {
	*tool.Tool

	fn          Function
	declaration *genai.FunctionDeclaration
}

var _ types.Tool = (*FunctionTool)(nil)

// NewFunctionTool returns the new FunctionTool wrapping fn. The declaration
// is built from the options; when no name is provided the Go function name
// is used.
func NewFunctionTool(fn Function, opts ...FunctionOption) *FunctionTool {
	config := &functionConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.name == "" {
		config.name = functionName(fn)
	}

	parameters := config.parameters
	if parameters == nil {
		parameters = &genai.Schema{Type: genai.TypeObject}
	}
	for paramName, desc := range config.paramDescs {
		if property, ok := parameters.Properties[paramName]; ok {
			property.Description = desc
		}
	}

	return &FunctionTool{
		Tool: tool.NewTool(config.name, config.description, false),
		fn:   fn,
		declaration: &genai.FunctionDeclaration{
			Name:        config.name,
			Description: config.description,
			Parameters:  parameters,
			Behavior:    genai.BehaviorBlocking,
		},
	}
}

// functionName extracts the name of fn, stripping the package path and any
// closure suffix.
func functionName(fn Function) string {
	name := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.Index(name, ".func"); idx >= 0 {
		name = name[:idx]
	}
	if name == "" {
		name = "function"
	}
	return name
}

// GetDeclaration implements [types.Tool].
func (t *FunctionTool) GetDeclaration() *genai.FunctionDeclaration {
	return t.declaration
}

// Run implements [types.Tool].
func (t *FunctionTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	return t.fn(ctx, maps.Clone(args))
}

// ProcessLLMRequest implements [types.Tool].
func (t *FunctionTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	request.AppendTools(t)
	return nil
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/session"
	"github.com/eriperspective/agentflow/tool"
	"github.com/eriperspective/agentflow/types"
)

// AgentTool is a tool that wraps an agent.
//
// This tool allows an agent to be called as a tool within a larger
// application. The wrapped agent runs in an isolated session seeded with the
// tool arguments; its final text is returned as the tool result, and any
// state changes it makes are forwarded to the calling invocation.
type AgentTool struct {
	*tool.Tool

	agent             types.Agent
	skipSummarization bool
}

var _ types.Tool = (*AgentTool)(nil)

// AgentToolOption configures an [AgentTool].
type AgentToolOption func(*AgentTool)

// WithSkipSummarization makes the tool result pass through as the final
// response instead of being summarized by another model turn.
func WithSkipSummarization() AgentToolOption {
	return func(t *AgentTool) {
		t.skipSummarization = true
	}
}

// NewAgentTool creates a new [AgentTool] wrapping the given agent.
func NewAgentTool(agent types.Agent, opts ...AgentToolOption) *AgentTool {
	t := &AgentTool{
		Tool:  tool.NewTool(agent.Name(), agent.Description(), false),
		agent: agent,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// GetDeclaration implements [types.Tool].
//
// When the wrapped agent declares an input schema, that schema describes the
// tool parameters; otherwise the tool takes a single "request" string.
func (t *AgentTool) GetDeclaration() *genai.FunctionDeclaration {
	parameters := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"request": {
				Type:        genai.TypeString,
				Description: "The request to send to the agent.",
			},
		},
		Required: []string{"request"},
	}
	if llmAgent, ok := t.agent.AsLLMAgent(); ok {
		if inputSchema := llmAgent.InputSchema(); inputSchema != nil {
			parameters = inputSchema
		}
	}

	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  parameters,
	}
}

// Run implements [types.Tool].
func (t *AgentTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	if t.skipSummarization {
		toolCtx.Actions().SkipSummarization = true
	}

	content, err := t.buildUserContent(args)
	if err != nil {
		return nil, err
	}

	parentCtx := toolCtx.InvocationContext()

	// The wrapped agent runs against its own session so its turn does not
	// leak into the caller's conversation history. State carries over in
	// both directions.
	isolated := session.NewSession(parentCtx.AppName(), parentCtx.UserID(), uuid.NewString(), maps.Clone(parentCtx.Session.State()), time.Now())
	isolated.AddEvent(types.NewEvent().
		WithAuthor("user").
		WithInvocationID(parentCtx.InvocationID).
		WithContent(content))

	childCtx := *parentCtx
	childCtx.Session = isolated
	childCtx.UserContent = content
	childCtx.Branch = ""
	childCtx.EndInvocation = false

	var lastText string
	for event, err := range types.RunAgent(ctx, &childCtx, t.agent) {
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", t.agent.Name(), err)
		}
		if event.LLMResponse != nil && event.Partial {
			continue
		}

		isolated.AddEvent(event)
		if event.Actions != nil && len(event.Actions.StateDelta) > 0 {
			maps.Copy(toolCtx.Actions().StateDelta, event.Actions.StateDelta)
		}
		if event.LLMResponse != nil && event.Content != nil {
			var texts []string
			for _, part := range event.Content.Parts {
				if part.Text != "" {
					texts = append(texts, part.Text)
				}
			}
			if len(texts) > 0 {
				lastText = strings.Join(texts, "\n")
			}
		}
	}

	if llmAgent, ok := t.agent.AsLLMAgent(); ok && llmAgent.OutputSchema() != nil {
		var structured map[string]any
		if err := sonic.ConfigFastest.UnmarshalFromString(lastText, &structured); err != nil {
			return nil, fmt.Errorf("parse %s output: %w", t.agent.Name(), err)
		}
		return structured, nil
	}

	return lastText, nil
}

// buildUserContent converts the tool arguments into the user content for the
// wrapped agent.
func (t *AgentTool) buildUserContent(args map[string]any) (*genai.Content, error) {
	if llmAgent, ok := t.agent.AsLLMAgent(); ok && llmAgent.InputSchema() != nil {
		text, err := sonic.ConfigFastest.MarshalToString(args)
		if err != nil {
			return nil, fmt.Errorf("marshal %s args: %w", t.agent.Name(), err)
		}
		return genai.NewContentFromText(text, genai.RoleUser), nil
	}

	request, _ := args["request"].(string)
	return genai.NewContentFromText(request, genai.RoleUser), nil
}

// ProcessLLMRequest implements [types.Tool].
func (t *AgentTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	request.AppendTools(t)
	return nil
}

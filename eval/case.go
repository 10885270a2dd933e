// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package eval

import (
	"strings"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/types"
)

// ToolCall records one tool invocation by name and arguments.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// Case is a single evaluation scenario: one user message sent to the agent
// together with the expectations to check the run against.
type Case struct {
	// Name identifies the case in the report.
	Name string `json:"name"`

	// UserContent is the message sent to the agent.
	UserContent *genai.Content `json:"user_content"`

	// ExpectedResponse is the reference final response, used by the response
	// matchers.
	ExpectedResponse string `json:"expected_response,omitempty"`

	// ExpectedTrajectory is the expected sequence of tool calls, used by
	// [TrajectoryMatcher].
	ExpectedTrajectory []ToolCall `json:"expected_trajectory,omitempty"`

	// InitialState seeds the session state before the run.
	InitialState map[string]any `json:"initial_state,omitempty"`
}

// NewCase creates a case that sends the given text as the user message.
func NewCase(name, input string) *Case {
	return &Case{
		Name:        name,
		UserContent: genai.NewContentFromText(input, genai.RoleUser),
	}
}

// WithExpectedResponse sets the reference final response.
func (c *Case) WithExpectedResponse(response string) *Case {
	c.ExpectedResponse = response
	return c
}

// WithExpectedTrajectory sets the expected sequence of tool calls.
func (c *Case) WithExpectedTrajectory(calls ...ToolCall) *Case {
	c.ExpectedTrajectory = calls
	return c
}

// WithInitialState seeds the session state for the run.
func (c *Case) WithInitialState(state map[string]any) *Case {
	c.InitialState = state
	return c
}

// Outcome is what the agent actually did for a case.
type Outcome struct {
	// Response is the text of the agent's final response.
	Response string `json:"response"`

	// Trajectory is the sequence of tool calls the agent made, in order.
	Trajectory []ToolCall `json:"trajectory,omitempty"`

	// Events are all events the run produced.
	Events []*types.Event `json:"-"`
}

// collectEvent folds one run event into the outcome: function calls extend
// the trajectory and final response text replaces the response so far.
func (o *Outcome) collectEvent(event *types.Event) {
	o.Events = append(o.Events, event)

	for _, funcCall := range event.GetFunctionCalls() {
		o.Trajectory = append(o.Trajectory, ToolCall{
			Name: funcCall.Name,
			Args: funcCall.Args,
		})
	}

	if !event.IsFinalResponse() || event.Content == nil {
		return
	}
	var texts []string
	for _, part := range event.Content.Parts {
		if part.Text != "" && !part.Thought {
			texts = append(texts, part.Text)
		}
	}
	if len(texts) > 0 {
		o.Response = strings.Join(texts, "\n")
	}
}

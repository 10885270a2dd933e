// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"log/slog"
)

// Config represents the configuration for an [Agent].
type Config struct {
	// The agent's Name.
	//
	// Agent Name must be a Go identifier and unique within the agent tree.
	// Agent Name cannot be "user", since it's reserved for end-user's input.
	Name string

	// Description about the agent's capability.
	//
	// The model uses this to determine whether to delegate control to the agent.
	// One-line Description is enough and preferred.
	Description string

	// The parent agent of this agent.
	//
	// Note that an agent can ONLY be added as sub-agent once.
	parentAgent Agent

	// The sub-agents of this agent.
	subAgents []Agent

	// callbacks that are invoked before the agent run.
	beforeAgentCallbacks []AgentCallback

	// callbacks that are invoked after the agent run.
	afterAgentCallbacks []AgentCallback

	logger *slog.Logger
}

// Option configures a [Config].
type Option interface {
	apply(*Config)
}

type optionFunc func(*Config)

func (o optionFunc) apply(c *Config) { o(c) }

// WithDescription sets the description for the [Config].
func WithDescription(description string) Option {
	return optionFunc(func(c *Config) {
		c.Description = description
	})
}

// WithParentAgent sets the parentAgent for the [Config].
func WithParentAgent(parentAgent Agent) Option {
	return optionFunc(func(c *Config) {
		c.parentAgent = parentAgent
	})
}

// WithSubAgents adds sub-agents for the [Config].
func WithSubAgents(agents ...Agent) Option {
	return optionFunc(func(c *Config) {
		c.subAgents = append(c.subAgents, agents...)
	})
}

func WithBeforeAgentCallbacks(callbacks ...AgentCallback) Option {
	return optionFunc(func(c *Config) {
		c.beforeAgentCallbacks = append(c.beforeAgentCallbacks, callbacks...)
	})
}

func WithAfterAgentCallbacks(callbacks ...AgentCallback) Option {
	return optionFunc(func(c *Config) {
		c.afterAgentCallbacks = append(c.afterAgentCallbacks, callbacks...)
	})
}

// WithLogger sets the logger for the [Config].
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(c *Config) {
		c.logger = logger
	})
}

// NewConfig creates a new agent configuration with the given name.
func NewConfig(name string, opts ...Option) *Config {
	c := &Config{
		Name:   name,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt.apply(c)
	}

	return c
}

// Logger returns the logger for the agent.
func (c *Config) Logger() *slog.Logger {
	return c.logger
}

// SetParentAgent records the parent agent. Called when this agent is added to
// an agent tree as a sub-agent.
func (c *Config) SetParentAgent(parent Agent) {
	c.parentAgent = parent
}

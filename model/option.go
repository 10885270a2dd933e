// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"log/slog"

	"google.golang.org/genai"
)

// Config represents the common configuration of an LLM implementation.
type Config struct {
	// generationConfig contains configuration for generation.
	generationConfig *genai.GenerationConfig

	// safetySettings contains safety settings for content generation.
	safetySettings []*genai.SafetySetting

	// maxOutputTokens is the default output token limit when the request
	// does not set one.
	maxOutputTokens int64

	// logger is the logger used for logging.
	logger *slog.Logger
}

func newConfig() Config {
	return Config{
		maxOutputTokens: 4096,
		logger:          slog.Default(),
	}
}

// Option is a function that modifies the [Config] model.
type Option interface {
	apply(base Config) Config
}

type generationConfigOption struct{ *genai.GenerationConfig }

func (o generationConfigOption) apply(base Config) Config {
	base.generationConfig = o.GenerationConfig
	return base
}

// WithGenerationConfig sets the generation configuration for the model.
func WithGenerationConfig(config *genai.GenerationConfig) Option {
	return generationConfigOption{config}
}

type safetySettingOption []*genai.SafetySetting

func (o safetySettingOption) apply(base Config) Config {
	base.safetySettings = append(base.safetySettings, o...)
	return base
}

// WithSafetySettings sets the safety settings for the model.
func WithSafetySettings(settings []*genai.SafetySetting) Option {
	return safetySettingOption(settings)
}

type maxOutputTokensOption int64

func (o maxOutputTokensOption) apply(base Config) Config {
	base.maxOutputTokens = int64(o)
	return base
}

// WithMaxOutputTokens sets the default output token limit for the model.
func WithMaxOutputTokens(n int64) Option {
	return maxOutputTokensOption(n)
}

type loggerOption struct{ *slog.Logger }

func (o loggerOption) apply(base Config) Config {
	base.logger = o.Logger
	return base
}

// WithLogger sets the logger for the model.
func WithLogger(logger *slog.Logger) Option {
	return loggerOption{logger}
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package model_test

import (
	"context"
	"testing"

	"github.com/eriperspective/agentflow/model"
	"github.com/eriperspective/agentflow/types"
)

func TestRegistry_ResolveLLM(t *testing.T) {
	registry := model.GetRegistry()

	for _, name := range []string{
		"claude-3-5-sonnet-latest",
		"gemini-2.0-flash",
		"gpt-4o-mini",
	} {
		if _, err := registry.ResolveLLM(name); err != nil {
			t.Errorf("ResolveLLM(%q): %v", name, err)
		}
	}

	if _, err := registry.ResolveLLM("llama-3"); err == nil {
		t.Error("ResolveLLM(llama-3): want error for unregistered model")
	}
}

func TestRegistry_RegisterLLM(t *testing.T) {
	registry := model.NewLLMRegistry(4)

	err := registry.RegisterLLM(`test-.*`, func(ctx context.Context, apiKey, modelName string) (types.Model, error) {
		return model.NewBaseLLM(modelName), nil
	})
	if err != nil {
		t.Fatalf("RegisterLLM: %v", err)
	}

	m, err := registry.NewLLM(t.Context(), "", "test-model")
	if err != nil {
		t.Fatalf("NewLLM: %v", err)
	}
	if got, want := m.Name(), "test-model"; got != want {
		t.Fatalf("Name() = %q, want %q", got, want)
	}
}

func TestRegistry_RegisterLLM_InvalidPattern(t *testing.T) {
	registry := model.NewLLMRegistry(4)

	err := registry.RegisterLLM(`[invalid`, func(ctx context.Context, apiKey, modelName string) (types.Model, error) {
		return model.NewBaseLLM(modelName), nil
	})
	if err == nil {
		t.Fatal("RegisterLLM: want error for invalid regex pattern")
	}
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/eriperspective/agentflow/types"
)

// InstructionsLLMRequestProcessor handles instructions and global instructions for LLM flow.
//
// Instruction templates may reference session state with "{var}" placeholders,
// artifacts with "{artifact.name}" and optional variables with "{var?}".
type InstructionsLLMRequestProcessor struct{}

var _ types.LLMRequestProcessor = (*InstructionsLLMRequestProcessor)(nil)

// Run implements [types.LLMRequestProcessor].
func (p *InstructionsLLMRequestProcessor) Run(ctx context.Context, ictx *types.InvocationContext, request *types.LLMRequest) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		llmAgent, ok := ictx.Agent.AsLLMAgent()
		if !ok {
			return
		}

		rctx := types.NewReadOnlyContext(ictx)

		// Appends global instructions if set on the root agent.
		if rootAgent, ok := llmAgent.RootAgent().AsLLMAgent(); ok {
			rawSI, bypassStateInjection := rootAgent.CanonicalGlobalInstruction(rctx)
			if rawSI != "" {
				si := rawSI
				if !bypassStateInjection {
					si = p.populateValues(ctx, rawSI, ictx)
				}
				request.AppendInstructions(si)
			}
		}

		// Appends agent instructions if set.
		if rawSI := llmAgent.CanonicalInstructions(rctx); rawSI != "" {
			si := p.populateValues(ctx, rawSI, ictx)
			request.AppendInstructions(si)
		}
	}
}

var instructionVarPattern = regexp.MustCompile(`{+[^{}]*}+`)

// populateValues populates values in the instruction template, e.g. state, artifact, etc.
func (p *InstructionsLLMRequestProcessor) populateValues(ctx context.Context, instructionTemplate string, ictx *types.InvocationContext) string {
	return instructionVarPattern.ReplaceAllStringFunc(instructionTemplate, func(match string) string {
		replacement, err := p.replaceVar(ctx, match, ictx)
		if err != nil {
			// Leave unresolved placeholders untouched in the prompt.
			return match
		}
		return replacement
	})
}

func (p *InstructionsLLMRequestProcessor) replaceVar(ctx context.Context, match string, ictx *types.InvocationContext) (string, error) {
	varName := strings.TrimSpace(strings.Trim(match, "{}"))

	optional := false
	if strings.HasSuffix(varName, "?") {
		optional = true
		varName = strings.TrimSuffix(varName, "?")
	}

	if after, ok := strings.CutPrefix(varName, "artifact."); ok {
		varName = after
		if ictx.ArtifactService == nil {
			return "", errors.New("artifact service is not initialized")
		}
		// Negative version loads the latest saved revision.
		artifact, err := ictx.ArtifactService.LoadArtifact(ctx, ictx.Session.AppName(), ictx.Session.UserID(), ictx.Session.ID(), varName, -1)
		if err != nil {
			return "", err
		}
		if artifact == nil {
			return "", fmt.Errorf("artifact not found: %s", varName)
		}
		if artifact.Text != "" {
			return artifact.Text, nil
		}
		return fmt.Sprintf("%v", artifact), nil
	}

	if !p.isValidStateName(varName) {
		return match, nil
	}
	if val, ok := ictx.Session.State()[varName]; ok {
		return fmt.Sprintf("%v", val), nil
	}
	if optional {
		return "", nil
	}

	return "", fmt.Errorf("context variable not found: %s", varName)
}

func isIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}
	first := rune(s[0])
	if !unicode.IsLetter(first) && first != '_' {
		return false
	}
	for _, r := range s[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// isValidStateName checks if the variable name is a valid state name.
//
// Valid state is either:
//   - Valid identifier
//   - <Valid prefix>:<Valid identifier>
//
// All the others will just return as is.
func (p *InstructionsLLMRequestProcessor) isValidStateName(varName string) bool {
	parts := strings.Split(varName, ":")

	switch len(parts) {
	case 1:
		return isIdentifier(varName)
	case 2:
		prefixes := []string{
			types.AppPrefix,
			types.UserPrefix,
			types.TempPrefix,
		}
		if slices.Contains(prefixes, parts[0]+":") {
			return isIdentifier(parts[1])
		}
	}

	return false
}

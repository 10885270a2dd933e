// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/tracing"
	"github.com/eriperspective/agentflow/types"
)

// FunctionCallIDPrefix prefixes function call IDs generated on the client side.
const FunctionCallIDPrefix = "agentflow-"

// GenerateClientFunctionCallID generates a unique function call ID for the client.
func GenerateClientFunctionCallID() string {
	return FunctionCallIDPrefix + uuid.NewString()
}

// PopulateClientFunctionCallID populates the function call ID for each function call in the model response event.
func PopulateClientFunctionCallID(ctx context.Context, modelResponseEvent *types.Event) {
	funcCalls := modelResponseEvent.GetFunctionCalls()
	for i := range funcCalls {
		if funcCalls[i].ID == "" {
			funcCalls[i].ID = GenerateClientFunctionCallID()
		}
	}
}

// RemoveClientFunctionCallID removes the client-generated function call IDs from the content.
func RemoveClientFunctionCallID(content *genai.Content) *genai.Content {
	if content != nil && len(content.Parts) > 0 {
		for i, part := range content.Parts {
			if part.FunctionCall != nil && strings.HasPrefix(part.FunctionCall.ID, FunctionCallIDPrefix) {
				content.Parts[i].FunctionCall.ID = ""
			}

			if part.FunctionResponse != nil && strings.HasPrefix(part.FunctionResponse.ID, FunctionCallIDPrefix) {
				content.Parts[i].FunctionResponse.ID = ""
			}
		}
	}
	return content
}

// GetLongRunningFunctionCalls returns a set of long-running function call IDs from the given function calls.
func GetLongRunningFunctionCalls(ctx context.Context, funcCalls []*genai.FunctionCall, toolMap map[string]types.Tool) types.Set[string] {
	longRunningToolIDs := types.NewSet[string]()

	for _, funcCall := range funcCalls {
		if t, ok := toolMap[funcCall.Name]; ok && t != nil && t.IsLongRunning() {
			longRunningToolIDs.Insert(funcCall.ID)
		}
	}

	return longRunningToolIDs
}

// HandleFunctionCalls executes the function calls in the event and returns a
// single merged function response event.
//
// The calls run concurrently. Tool execution errors are converted into error
// responses so the model can observe the failure and recover; an unknown tool
// name is a hard error.
//
// If filters is non-empty, only the function calls whose IDs are in filters
// are executed.
func HandleFunctionCalls(ctx context.Context, ictx *types.InvocationContext, functionCallEvent *types.Event, toolMap map[string]types.Tool, filters types.Set[string]) (*types.Event, error) {
	llmAgent, ok := ictx.Agent.AsLLMAgent()
	if !ok {
		return nil, nil
	}

	funcCalls := functionCallEvent.GetFunctionCalls()
	if len(funcCalls) == 0 {
		return nil, nil
	}

	// Index the results so parallel calls keep the model's ordering.
	funcResponseEvents := make([]*types.Event, len(funcCalls))
	g, ctx := errgroup.WithContext(ctx)
	for i, funcCall := range funcCalls {
		if filters.Len() > 0 && !filters.Has(funcCall.ID) {
			continue
		}

		g.Go(func() error {
			t, toolCtx, err := getToolAndContext(ictx, funcCall, toolMap)
			if err != nil {
				return err
			}

			funcArgs := funcCall.Args
			var funcResponse map[string]any
			for j, callback := range llmAgent.BeforeToolCallbacks() {
				funcResponse, err = callback(t, funcArgs, toolCtx)
				if err != nil {
					return fmt.Errorf("BeforeToolCallbacks[%d]: %w", j, err)
				}
				if len(funcResponse) > 0 {
					break
				}
			}

			if len(funcResponse) == 0 {
				funcResponse, err = callTool(ctx, t, funcArgs, toolCtx)
				if err != nil {
					var toolErr *types.ToolExecutionError
					if !errors.As(err, &toolErr) {
						return err
					}
					funcResponse = map[string]any{
						"error": toolErr.Error(),
					}
				}
			}

			for j, callback := range llmAgent.AfterToolCallbacks() {
				funcResp, err := callback(t, funcArgs, toolCtx, funcResponse)
				if err != nil {
					return fmt.Errorf("AfterToolCallbacks[%d]: %w", j, err)
				}
				if len(funcResp) > 0 {
					funcResponse = funcResp
					break
				}
			}

			if t.IsLongRunning() && len(funcResponse) == 0 {
				// The long-running operation is still pending, no response yet.
				return nil
			}

			funcResponseEvents[i] = buildResponseEvent(t, funcResponse, toolCtx, ictx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	funcResponseEvents = slicesCompact(funcResponseEvents)
	if len(funcResponseEvents) == 0 {
		return nil, nil
	}

	return mergeParallelFunctionResponseEvents(funcResponseEvents)
}

// slicesCompact drops the nil entries from events, preserving order.
func slicesCompact(events []*types.Event) []*types.Event {
	result := events[:0]
	for _, event := range events {
		if event != nil {
			result = append(result, event)
		}
	}
	return result
}

func getToolAndContext(ictx *types.InvocationContext, funcCall *genai.FunctionCall, toolMap map[string]types.Tool) (types.Tool, *types.ToolContext, error) {
	t, ok := toolMap[funcCall.Name]
	if !ok {
		return nil, nil, &types.ToolNotFoundError{ToolName: funcCall.Name}
	}
	toolCtx := types.NewToolContext(ictx).WithFunctionCallID(funcCall.ID)

	return t, toolCtx, nil
}

// callTool calls the tool, wrapping any failure in a [types.ToolExecutionError].
// Results that are not already a map are wrapped under a "result" key since
// the model requires a dict-shaped function response.
func callTool(ctx context.Context, t types.Tool, args map[string]any, tctx *types.ToolContext) (map[string]any, error) {
	ctx, span := tracing.StartSpan(ctx, tracing.SpanKindTool, t.Name())
	res, err := t.Run(ctx, args, tctx)
	span.End(err)
	if err != nil {
		return nil, &types.ToolExecutionError{ToolName: t.Name(), Err: err}
	}

	switch result := res.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return result, nil
	default:
		return map[string]any{"result": result}, nil
	}
}

func buildResponseEvent(t types.Tool, funcResult map[string]any, toolCtx *types.ToolContext, ictx *types.InvocationContext) *types.Event {
	// The model requires the result to be a dict.
	if len(funcResult) == 0 {
		funcResult = map[string]any{
			"result": funcResult,
		}
	}

	partFuncResponse := genai.NewPartFromFunctionResponse(t.Name(), funcResult)
	partFuncResponse.FunctionResponse.ID = toolCtx.FunctionCallID()

	content := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{partFuncResponse},
	}

	return types.NewEvent().
		WithInvocationID(ictx.InvocationID).
		WithAuthor(ictx.Agent.Name()).
		WithContent(content).
		WithActions(toolCtx.Actions()).
		WithBranch(ictx.Branch)
}

func mergeParallelFunctionResponseEvents(funcRespEvents []*types.Event) (*types.Event, error) {
	switch len(funcRespEvents) {
	case 0:
		return nil, errors.New("no function response events provided")

	case 1:
		return funcRespEvents[0], nil
	}

	var mergedParts []*genai.Part
	for _, event := range funcRespEvents {
		if event.Content != nil {
			mergedParts = append(mergedParts, event.Content.Parts...)
		}
	}

	// Use the first event as the base for common attributes.
	baseEvent := funcRespEvents[0]

	// Merge actions from all events.
	mergedActions := types.NewEventActions()
	for _, event := range funcRespEvents {
		maps.Copy(mergedActions.StateDelta, event.Actions.StateDelta)
		maps.Copy(mergedActions.ArtifactDelta, event.Actions.ArtifactDelta)
		if event.Actions.SkipSummarization {
			mergedActions.SkipSummarization = true
		}
		if event.Actions.TransferToAgent != "" {
			mergedActions.TransferToAgent = event.Actions.TransferToAgent
		}
		if event.Actions.Escalate {
			mergedActions.Escalate = true
		}
	}

	mergedEvent := types.NewEvent().
		WithInvocationID(baseEvent.InvocationID).
		WithAuthor(baseEvent.Author).
		WithBranch(baseEvent.Branch).
		WithContent(genai.NewContentFromParts(mergedParts, genai.Role("user"))).
		WithActions(mergedActions)

	mergedEvent.Timestamp = baseEvent.Timestamp

	return mergedEvent, nil
}

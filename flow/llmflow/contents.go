// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	deepcopy "github.com/tiendc/go-deepcopy"
	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/model"
	"github.com/eriperspective/agentflow/types"
)

// ContentLLMRequestProcessor builds the contents for the LLM request from the
// session history.
//
// When the agent configures a history window, only the most recent turns are
// kept in the request, the buffer-window style of conversation memory.
type ContentLLMRequestProcessor struct{}

var _ types.LLMRequestProcessor = (*ContentLLMRequestProcessor)(nil)

// Run implements [types.LLMRequestProcessor].
func (cp *ContentLLMRequestProcessor) Run(ctx context.Context, ictx *types.InvocationContext, request *types.LLMRequest) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		llmAgent, ok := ictx.Agent.AsLLMAgent()
		if !ok {
			return
		}

		if llmAgent.IncludeContents() == types.IncludeContentsNone {
			return
		}

		contents, err := cp.getContents(ictx.Branch, ictx.Session.Events(), llmAgent.Name())
		if err != nil {
			yield(nil, err)
			return
		}

		if window := llmAgent.HistoryWindow(); window > 0 && len(contents) > window {
			contents = slices.Clone(contents[len(contents)-window:])
		}

		request.Contents = contents
	}
}

// getContents gets the contents for the LLM request.
func (cp *ContentLLMRequestProcessor) getContents(currentBranch string, events []*types.Event, agentName string) ([]*genai.Content, error) {
	var filteredEvents []*types.Event

	for _, event := range events {
		if event.LLMResponse == nil || event.Content == nil || event.Content.Role == "" || len(event.Content.Parts) == 0 {
			// Skip events without content, e.g. events purely for mutating
			// session states.
			continue
		}

		if cp.isEmptyTextEvent(event) {
			continue
		}

		if !cp.isEventBelongsToBranch(currentBranch, event) {
			// Skip events not belonging to the current branch.
			continue
		}

		ev := event
		if cp.isOtherAgentReply(agentName, event) {
			ev = cp.convertForeignEvent(event)
		}
		filteredEvents = append(filteredEvents, ev)
	}

	resultEvents, err := cp.rearrangeEventsForLatestFunctionResponse(filteredEvents)
	if err != nil {
		return nil, err
	}
	resultEvents, err = cp.rearrangeEventsForAsyncFunctionResponsesInHistory(resultEvents)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{}
	for _, event := range resultEvents {
		content := &genai.Content{}
		if err := deepcopy.Copy(content, event.Content); err != nil {
			return nil, err
		}
		content = RemoveClientFunctionCallID(content)
		contents = append(contents, content)
	}

	return contents, nil
}

// isEmptyTextEvent reports whether the event carries only a single empty text part.
func (cp *ContentLLMRequestProcessor) isEmptyTextEvent(event *types.Event) bool {
	if len(event.Content.Parts) != 1 {
		return false
	}
	part := event.Content.Parts[0]
	return part.Text == "" && part.FunctionCall == nil && part.FunctionResponse == nil && part.InlineData == nil
}

// rearrangeEventsForAsyncFunctionResponsesInHistory rearranges the async function_response events in the history.
func (cp *ContentLLMRequestProcessor) rearrangeEventsForAsyncFunctionResponsesInHistory(events []*types.Event) ([]*types.Event, error) {
	funcCallIDToResponseEvents := make(map[string][]*types.Event)
	for i, event := range events {
		for _, funcResponse := range event.GetFunctionResponses() {
			funcCallID := funcResponse.ID
			funcCallIDToResponseEvents[funcCallID] = append(funcCallIDToResponseEvents[funcCallID], events[i])
		}
	}

	resultEvents := []*types.Event{}
	for _, event := range events {
		if len(event.GetFunctionResponses()) > 0 {
			// function_response is handled together with its function_call below.
			continue
		}

		if funcCalls := event.GetFunctionCalls(); len(funcCalls) > 0 {
			funcResponseEvents := types.NewSet[*types.Event]()
			for _, funcCall := range funcCalls {
				if evs, ok := funcCallIDToResponseEvents[funcCall.ID]; ok {
					funcResponseEvents.Insert(evs...)
				}
			}

			resultEvents = append(resultEvents, event)
			switch {
			case funcResponseEvents.Len() == 0:

			case funcResponseEvents.Len() == 1:
				resultEvents = append(resultEvents, funcResponseEvents.UnsortedList()...)

			default:
				resEvent, err := cp.mergeFunctionResponseEvents(funcResponseEvents.UnsortedList())
				if err != nil {
					return nil, err
				}
				resultEvents = append(resultEvents, resEvent)
			}
			continue
		}

		resultEvents = append(resultEvents, event)
	}

	return resultEvents, nil
}

// rearrangeEventsForLatestFunctionResponse rearranges the events for the latest function_response.
//
// If the latest function_response is for an async function_call, all events
// between the initial function_call and the latest function_response will be
// removed.
func (cp *ContentLLMRequestProcessor) rearrangeEventsForLatestFunctionResponse(events []*types.Event) ([]*types.Event, error) {
	if len(events) < 2 {
		return events, nil
	}

	funcResponses := events[len(events)-1].GetFunctionResponses()
	if len(funcResponses) == 0 {
		// No need to process, since the latest event is not a function_response.
		return events, nil
	}

	funcResponsesIDs := types.NewSet[string]()
	for _, funcResponse := range funcResponses {
		funcResponsesIDs.Insert(funcResponse.ID)
	}

	for _, funcCall := range events[len(events)-2].GetFunctionCalls() {
		// The latest function_response is already matched.
		if funcResponsesIDs.Has(funcCall.ID) {
			return events, nil
		}
	}

	funcCallEventIdx := -1
	// Look for the corresponding function call event in reverse.
	for idx := len(events) - 2; idx >= 0; idx-- {
		funcCalls := events[idx].GetFunctionCalls()
		for _, funcCall := range funcCalls {
			if funcResponsesIDs.Has(funcCall.ID) {
				funcCallEventIdx = idx
				break
			}
		}
		if funcCallEventIdx != -1 {
			// In case the last response event only has part of the responses
			// for the function calls in the function call event.
			for _, funcCall := range funcCalls {
				funcResponsesIDs.Insert(funcCall.ID)
			}
			break
		}
	}

	if funcCallEventIdx == -1 {
		return nil, fmt.Errorf("no function call event found for function responses ids: %v", funcResponsesIDs.UnsortedList())
	}

	// Collect all function responses between the function call event and the
	// last function response event.
	funcResponseEvents := []*types.Event{}
	for idx := funcCallEventIdx + 1; idx < len(events)-1; idx++ {
		event := events[idx]
		funcResponses := event.GetFunctionResponses()
		if len(funcResponses) > 0 && funcResponsesIDs.Has(funcResponses[0].ID) {
			funcResponseEvents = append(funcResponseEvents, event)
		}
	}
	funcResponseEvents = append(funcResponseEvents, events[len(events)-1])

	resultEvents := slices.Clone(events[:funcCallEventIdx+1])
	mergedEvent, err := cp.mergeFunctionResponseEvents(funcResponseEvents)
	if err != nil {
		return nil, err
	}
	resultEvents = append(resultEvents, mergedEvent)

	return resultEvents, nil
}

// isOtherAgentReply reports whether the event is a reply from another agent.
func (cp *ContentLLMRequestProcessor) isOtherAgentReply(currentAgentName string, event *types.Event) bool {
	return currentAgentName != "" && event.Author != currentAgentName && event.Author != "user"
}

// convertForeignEvent converts an event authored by another agent into a user-content event.
//
// This is to provide another agent's output as context to the current agent, so
// that the current agent can continue to respond, such as summarizing the
// previous agent's reply.
func (cp *ContentLLMRequestProcessor) convertForeignEvent(event *types.Event) *types.Event {
	if event.Content == nil || len(event.Content.Parts) == 0 {
		return event
	}

	content := &genai.Content{
		Role: model.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromText("For context:"),
		},
	}

	for _, part := range event.Content.Parts {
		switch {
		case part.Text != "":
			content.Parts = append(content.Parts, genai.NewPartFromText(fmt.Sprintf("[%s] said: %s", event.Author, part.Text)))

		case part.FunctionCall != nil:
			content.Parts = append(content.Parts, genai.NewPartFromText(fmt.Sprintf("[%s] called tool `%s` with parameters: %v", event.Author, part.FunctionCall.Name, part.FunctionCall.Args)))

		case part.FunctionResponse != nil:
			content.Parts = append(content.Parts, genai.NewPartFromText(fmt.Sprintf("[%s] `%s` returned result: %v", event.Author, part.FunctionResponse.Name, part.FunctionResponse.Response)))

		default:
			content.Parts = append(content.Parts, part)
		}
	}

	ev := types.NewEvent().
		WithAuthor("user").
		WithContent(content).
		WithBranch(event.Branch)
	ev.Timestamp = event.Timestamp

	return ev
}

// mergeFunctionResponseEvents merges a list of function_response events into one event.
//
// The key goal is to ensure:
// 1. function_call and function_response are always of the same number.
// 2. The function_call and function_response are consecutive in the content.
func (cp *ContentLLMRequestProcessor) mergeFunctionResponseEvents(funcResponseEvents []*types.Event) (*types.Event, error) {
	if len(funcResponseEvents) == 0 {
		return nil, errors.New("at least one function_response event is required")
	}

	mergedEvent := &types.Event{}
	if err := deepcopy.Copy(mergedEvent, funcResponseEvents[0]); err != nil {
		return nil, err
	}
	partsInMergedEvent := mergedEvent.Content.Parts

	if len(partsInMergedEvent) == 0 {
		return nil, errors.New("there should be at least one function_response part")
	}

	partIndicesInMergedEvent := make(map[string]int)
	for i, part := range partsInMergedEvent {
		if part.FunctionResponse != nil {
			partIndicesInMergedEvent[part.FunctionResponse.ID] = i
		}
	}

	for _, event := range funcResponseEvents[1:] {
		if len(event.Content.Parts) == 0 {
			return nil, errors.New("there should be at least one function_response part")
		}

		for _, part := range event.Content.Parts {
			if part.FunctionResponse != nil {
				funcCallID := part.FunctionResponse.ID
				if idx, ok := partIndicesInMergedEvent[funcCallID]; ok {
					partsInMergedEvent = slices.Insert(partsInMergedEvent, idx, part)
				} else {
					partsInMergedEvent = append(partsInMergedEvent, part)
					partIndicesInMergedEvent[funcCallID] = len(partsInMergedEvent) - 1
				}
			} else {
				partsInMergedEvent = append(partsInMergedEvent, part)
			}
		}
	}
	mergedEvent.Content.Parts = partsInMergedEvent

	return mergedEvent, nil
}

// isEventBelongsToBranch reports whether the event belongs to a branch.
// Event belongs to a branch when event.Branch is a prefix of the invocation branch.
func (cp *ContentLLMRequestProcessor) isEventBelongsToBranch(invocationBranch string, event *types.Event) bool {
	if invocationBranch == "" || event.Branch == "" {
		return true
	}
	return strings.HasPrefix(invocationBranch, event.Branch)
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/eriperspective/agentflow/tracing"
	"github.com/eriperspective/agentflow/types"
)

// LLMFlow represents a base flow that calls the LLM in a loop until a final response is generated.
//
// This flow ends when it transfers to another agent.
type LLMFlow struct {
	RequestProcessors  []types.LLMRequestProcessor
	ResponseProcessors []types.LLMResponseProcessor
	Logger             *slog.Logger
}

var _ types.Flow = (*LLMFlow)(nil)

// NewLLMFlow creates a new [LLMFlow] with the given model and options.
func NewLLMFlow() *LLMFlow {
	return &LLMFlow{
		Logger: slog.Default().With("flow", "LLMFlow"),
	}
}

// WithLogger sets the logger for a flow.
func (f *LLMFlow) WithLogger(logger *slog.Logger) *LLMFlow {
	f.Logger = logger.With("flow", "LLMFlow")
	return f
}

// WithRequestProcessors adds request processors to the [LLMFlow].
func (f *LLMFlow) WithRequestProcessors(processors ...types.LLMRequestProcessor) *LLMFlow {
	f.RequestProcessors = append(f.RequestProcessors, processors...)
	return f
}

// WithResponseProcessors adds response processors to the [LLMFlow].
func (f *LLMFlow) WithResponseProcessors(processors ...types.LLMResponseProcessor) *LLMFlow {
	f.ResponseProcessors = append(f.ResponseProcessors, processors...)
	return f
}

// Run implements [types.Flow].
func (f *LLMFlow) Run(ctx context.Context, ic *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for {
			var lastEvent *types.Event
			for event, err := range f.runOneStep(ctx, ic) {
				if err != nil {
					yield(nil, err)
					return
				}
				lastEvent = event
				if !yield(event, nil) {
					return
				}
			}
			if lastEvent == nil || lastEvent.IsFinalResponse() {
				break
			}
			if ic.EndInvocation {
				break
			}
		}
	}
}

// runOneStep runs one step, where one step means one LLM call.
func (f *LLMFlow) runOneStep(ctx context.Context, ic *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		request := types.NewLLMRequest(nil)

		// Preprocess before calling the LLM.
		for event, err := range f.preprocess(ctx, ic, request) {
			if !yield(event, err) {
				return
			}
			if err != nil {
				return
			}
		}
		if ic.EndInvocation {
			return
		}

		// The event holding the eventual model response. Function call IDs and
		// actions accumulate on it across callbacks.
		modelResponseEvent := types.NewEvent().
			WithInvocationID(ic.InvocationID).
			WithAuthor(ic.Agent.Name()).
			WithBranch(ic.Branch)

		for response, err := range f.callLLM(ctx, ic, request, modelResponseEvent) {
			if err != nil {
				yield(nil, err)
				return
			}

			for event, err := range f.postProcess(ctx, ic, request, response, modelResponseEvent) {
				if err != nil {
					yield(nil, err)
					return
				}
				// Update the mutable event id to avoid conflicts between
				// events built from the same model response event.
				modelResponseEvent.ID = types.NewEventID()
				if !yield(event, nil) {
					return
				}
			}
		}
	}
}

// preprocess runs the request processors and the per-tool request mutations
// before calling the LLM.
func (f *LLMFlow) preprocess(ctx context.Context, ic *types.InvocationContext, request *types.LLMRequest) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		llmAgent, ok := ic.Agent.AsLLMAgent()
		if !ok {
			return
		}

		for _, processor := range f.RequestProcessors {
			for event, err := range processor.Run(ctx, ic, request) {
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(event, nil) {
					return
				}
			}
		}

		// Run processors for tools.
		for _, tool := range llmAgent.CanonicalTool(types.NewReadOnlyContext(ic)) {
			toolCtx := types.NewToolContext(ic)
			if err := tool.ProcessLLMRequest(ctx, toolCtx, request); err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// callLLM calls the LLM, running the before/after model callbacks around it.
func (f *LLMFlow) callLLM(ctx context.Context, ic *types.InvocationContext, request *types.LLMRequest, modelResponseEvent *types.Event) iter.Seq2[*types.LLMResponse, error] {
	return func(yield func(*types.LLMResponse, error) bool) {
		// Runs before_model_callback if it exists.
		response, err := f.handleBeforeModelCallback(ctx, ic, request, modelResponseEvent)
		if err != nil {
			yield(nil, err)
			return
		}
		if response != nil {
			yield(response, nil)
			return
		}

		// Check if we can make this llm call or not. If the current call pushes
		// the counter beyond the max set value, the execution is stopped right
		// here with an error.
		if err := ic.IncrementLLMCallCount(); err != nil {
			yield(nil, err)
			return
		}

		llm, err := f.getLLM(ctx, ic)
		if err != nil {
			yield(nil, err)
			return
		}

		spanCtx, span := tracing.StartSpan(ctx, tracing.SpanKindModel, llm.Name())
		ctx = spanCtx
		defer func() { span.End(nil) }()

		isStream := ic.RunConfig != nil && ic.RunConfig.StreamingMode == types.StreamingModeSSE
		if isStream {
			for response, err := range llm.StreamGenerateContent(ctx, request) {
				if err != nil {
					span.End(err)
					yield(nil, err)
					return
				}
				ic.TrackUsage(response.Usage)

				// Runs after_model_callback if it exists.
				alterResponse, err := f.handleAfterModelCallback(ctx, ic, response, modelResponseEvent)
				if err != nil {
					yield(nil, err)
					return
				}
				if alterResponse != nil {
					response = alterResponse
				}
				if !yield(response, nil) {
					return
				}
			}
			return
		}

		response, err = llm.GenerateContent(ctx, request)
		if err != nil {
			span.End(err)
			yield(nil, err)
			return
		}
		ic.TrackUsage(response.Usage)
		if response.Usage != nil {
			span.SetAttribute("total_tokens", response.Usage.TotalTokenCount)
		}

		f.Logger.DebugContext(ctx, "llm call",
			slog.String("model", llm.Name()),
			slog.Int("llm_calls", ic.CostManager().LLMCalls()),
		)

		// Runs after_model_callback if it exists.
		alterResponse, err := f.handleAfterModelCallback(ctx, ic, response, modelResponseEvent)
		if err != nil {
			yield(nil, err)
			return
		}
		if alterResponse != nil {
			response = alterResponse
		}

		yield(response, nil)
	}
}

// postProcess post-processes a model response after calling the LLM.
func (f *LLMFlow) postProcess(ctx context.Context, ic *types.InvocationContext, request *types.LLMRequest, response *types.LLMResponse, modelRespEvent *types.Event) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		// Runs processors.
		for event, err := range f.postProcessRunProcessors(ctx, ic, response) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(event, nil) {
				return
			}
		}

		// Skip the model response event if there is no content and no error code.
		if response == nil || (response.Content == nil && response.ErrorCode == "" && !response.Interrupted) {
			return
		}

		// Builds the event.
		modelResponseEvent := f.finalizeModelResponseEvent(ctx, request, response, modelRespEvent)
		if !yield(modelResponseEvent, nil) {
			return
		}

		// Handles function calls.
		if len(modelResponseEvent.GetFunctionCalls()) > 0 {
			for event, err := range f.postProcessHandleFunctionCalls(ctx, ic, modelResponseEvent, request) {
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(event, nil) {
					return
				}
			}
		}
	}
}

func (f *LLMFlow) postProcessRunProcessors(ctx context.Context, ic *types.InvocationContext, response *types.LLMResponse) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for _, processor := range f.ResponseProcessors {
			for event, err := range processor.Run(ctx, ic, response) {
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(event, nil) {
					return
				}
			}
		}
	}
}

func (f *LLMFlow) postProcessHandleFunctionCalls(ctx context.Context, ic *types.InvocationContext, funcCallEvent *types.Event, request *types.LLMRequest) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		funcResponseEvent, err := HandleFunctionCalls(ctx, ic, funcCallEvent, request.ToolMap, types.Set[string]{})
		if err != nil {
			yield(nil, err)
			return
		}
		if funcResponseEvent == nil {
			return
		}

		if !yield(funcResponseEvent, nil) {
			return
		}

		transferToAgent := funcResponseEvent.Actions.TransferToAgent
		if transferToAgent != "" {
			agentToRun, err := f.getAgentToRun(ic, transferToAgent)
			if err != nil {
				yield(nil, err)
				return
			}
			for event, err := range agentToRun.Run(ctx, ic) {
				if !yield(event, err) {
					return
				}
				if err != nil {
					return
				}
			}
		}
	}
}

func (f *LLMFlow) getAgentToRun(ic *types.InvocationContext, transferToAgent string) (types.Agent, error) {
	rootAgent := ic.Agent.RootAgent()
	agentToRun := rootAgent.FindAgent(transferToAgent)
	if agentToRun == nil {
		return nil, fmt.Errorf("agent %s not found in the agent tree", transferToAgent)
	}
	return agentToRun, nil
}

// handleBeforeModelCallback processes callbacks that should run before the model has generated a response.
func (f *LLMFlow) handleBeforeModelCallback(ctx context.Context, ic *types.InvocationContext, request *types.LLMRequest, modelResponseEvent *types.Event) (*types.LLMResponse, error) {
	llmAgent, ok := ic.Agent.AsLLMAgent()
	if !ok {
		return nil, nil
	}

	if len(llmAgent.BeforeModelCallbacks()) == 0 {
		return nil, nil
	}

	cc := types.NewCallbackContext(ic).WithEventActions(modelResponseEvent.Actions)
	for _, callback := range llmAgent.BeforeModelCallbacks() {
		beforeModelCallbackContent, err := callback(cc, request)
		if err != nil {
			return nil, err
		}
		if beforeModelCallbackContent != nil {
			return beforeModelCallbackContent, nil
		}
	}

	return nil, nil
}

// handleAfterModelCallback processes callbacks that should run after the model has generated a response.
func (f *LLMFlow) handleAfterModelCallback(ctx context.Context, ic *types.InvocationContext, response *types.LLMResponse, modelResponseEvent *types.Event) (*types.LLMResponse, error) {
	llmAgent, ok := ic.Agent.AsLLMAgent()
	if !ok {
		return nil, nil
	}
	if len(llmAgent.AfterModelCallbacks()) == 0 {
		return nil, nil
	}

	cc := types.NewCallbackContext(ic).WithEventActions(modelResponseEvent.Actions)
	for _, callback := range llmAgent.AfterModelCallbacks() {
		afterModelCallbackContent, err := callback(cc, response)
		if err != nil {
			return nil, err
		}
		if afterModelCallbackContent != nil {
			return afterModelCallbackContent, nil
		}
	}

	return nil, nil
}

// finalizeModelResponseEvent merges the model response into the pending model
// response event and records any long-running function calls.
func (f *LLMFlow) finalizeModelResponseEvent(ctx context.Context, request *types.LLMRequest, response *types.LLMResponse, modelResponseEvent *types.Event) *types.Event {
	modelResponseEvent.WithLLMResponse(response)

	if modelResponseEvent.Content != nil {
		funcCalls := modelResponseEvent.GetFunctionCalls()
		if len(funcCalls) > 0 {
			PopulateClientFunctionCallID(ctx, modelResponseEvent)
			modelResponseEvent.WithLongRunningToolIDs(GetLongRunningFunctionCalls(ctx, funcCalls, request.ToolMap).UnsortedList()...)
		}
	}
	return modelResponseEvent
}

// getLLM extracts the LLM model from the invocation context.
func (f *LLMFlow) getLLM(ctx context.Context, ic *types.InvocationContext) (types.Model, error) {
	llmAgent, ok := ic.Agent.AsLLMAgent()
	if !ok {
		return nil, fmt.Errorf("agent %s is not an LLM agent", ic.Agent.Name())
	}
	return llmAgent.CanonicalModel(ctx)
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/session"
	"github.com/eriperspective/agentflow/tracing"
	"github.com/eriperspective/agentflow/types"
)

// Runner drives invocations of an agent against a session: it appends the
// user's message, runs the agent, persists the produced events and commits
// finished sessions to memory.
type Runner struct {
	appName string
	agent   types.Agent

	sessionService  types.SessionService
	artifactService types.ArtifactService
	memoryService   types.MemoryService
	logger          *slog.Logger
	traceRuns       bool
}

// Option configures a [Runner].
type Option func(*Runner)

// WithSessionService sets the session service.
func WithSessionService(svc types.SessionService) Option {
	return func(r *Runner) {
		r.sessionService = svc
	}
}

// WithArtifactService sets the artifact service.
func WithArtifactService(svc types.ArtifactService) Option {
	return func(r *Runner) {
		r.artifactService = svc
	}
}

// WithMemoryService sets the memory service.
func WithMemoryService(svc types.MemoryService) Option {
	return func(r *Runner) {
		r.memoryService = svc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithTracing records a run tree per invocation and exports it through the
// logger when the invocation finishes.
func WithTracing() Option {
	return func(r *Runner) {
		r.traceRuns = true
	}
}

// NewRunner creates a new [Runner] for the given app name and agent. The
// default session service is the in-memory one.
func NewRunner(appName string, agent types.Agent, opts ...Option) *Runner {
	r := &Runner{
		appName: appName,
		agent:   agent,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sessionService == nil {
		r.sessionService = session.NewInMemoryService()
	}

	return r
}

// AppName returns the app name of the runner.
func (r *Runner) AppName() string {
	return r.appName
}

// SessionService returns the session service of the runner.
func (r *Runner) SessionService() types.SessionService {
	return r.sessionService
}

// Run runs the agent for one user message against the given session and
// yields the produced events. Partial (streaming) events are yielded but not
// persisted.
func (r *Runner) Run(ctx context.Context, userID, sessionID string, newMessage *genai.Content, opts ...types.InvocationContextOption) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		sess, err := r.sessionService.GetSession(ctx, r.appName, userID, sessionID, nil)
		if err != nil {
			yield(nil, fmt.Errorf("get session %s: %w", sessionID, err))
			return
		}
		if sess == nil {
			yield(nil, fmt.Errorf("session %s not found for user %s", sessionID, userID))
			return
		}

		invocationID := types.NewInvocationContextID()
		ictxOpts := append([]types.InvocationContextOption{
			// Callers can override the default llm call limit with their own
			// run config.
			types.WithRunConfig(types.NewRunConfig()),
			types.WithInvocationID(invocationID),
			types.WithUserContent(newMessage),
			types.WithArtifactService(r.artifactService),
			types.WithMemoryService(r.memoryService),
		}, opts...)
		ictx := types.NewInvocationContext(r.agent, sess, r.sessionService, ictxOpts...)

		var runTree *tracing.RunTree
		if r.traceRuns {
			runTree = tracing.NewRunTree(invocationID)
			ctx = tracing.NewContext(ctx, runTree.Root())
			defer func() {
				runTree.End(nil)
				runTree.Log(ctx, r.logger)
			}()
		}

		if newMessage != nil {
			userEvent := types.NewEvent().
				WithInvocationID(invocationID).
				WithAuthor("user").
				WithContent(newMessage)
			if _, err := r.sessionService.AppendEvent(ctx, sess, userEvent); err != nil {
				yield(nil, fmt.Errorf("append user event: %w", err))
				return
			}
		}

		agentCtx, agentSpan := tracing.StartSpan(ctx, tracing.SpanKindAgent, r.agent.Name())
		for event, err := range types.RunAgent(agentCtx, ictx, r.agent) {
			if err != nil {
				agentSpan.End(err)
				yield(nil, err)
				return
			}

			if event.LLMResponse == nil || !event.Partial {
				if _, err := r.sessionService.AppendEvent(ctx, sess, event); err != nil {
					agentSpan.End(err)
					yield(nil, fmt.Errorf("append event: %w", err))
					return
				}
			}

			r.logger.DebugContext(ctx, "event received",
				slog.String("invocation_id", invocationID),
				slog.String("author", event.Author),
			)
			if !yield(event, nil) {
				agentSpan.End(nil)
				return
			}
		}
		agentSpan.End(nil)
	}
}

// CommitSessionToMemory adds a finished session to the memory service so
// later invocations can recall it.
func (r *Runner) CommitSessionToMemory(ctx context.Context, userID, sessionID string) error {
	if r.memoryService == nil {
		return fmt.Errorf("memory service is not configured")
	}

	sess, err := r.sessionService.GetSession(ctx, r.appName, userID, sessionID, nil)
	if err != nil {
		return fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if sess == nil {
		return fmt.Errorf("session %s not found for user %s", sessionID, userID)
	}

	return r.memoryService.AddSessionToMemory(ctx, sess)
}

// Close releases the runner's services.
func (r *Runner) Close() error {
	return r.sessionService.Close()
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SpanKind classifies what a span measures.
type SpanKind string

const (
	// SpanKindRun is the root span of an invocation.
	SpanKindRun SpanKind = "run"

	// SpanKindAgent covers one agent's turn.
	SpanKindAgent SpanKind = "agent"

	// SpanKindModel covers a single model call.
	SpanKindModel SpanKind = "model"

	// SpanKindTool covers a single tool call.
	SpanKindTool SpanKind = "tool"

	// SpanKindRetrieval covers a retrieval step.
	SpanKindRetrieval SpanKind = "retrieval"
)

// Span records one timed step of an invocation.
type Span struct {
	id        string
	name      string
	kind      SpanKind
	startTime time.Time

	mu       sync.Mutex
	endTime  time.Time
	err      error
	attrs    map[string]any
	children []*Span
}

func newSpan(kind SpanKind, name string) *Span {
	return &Span{
		id:        uuid.NewString(),
		name:      name,
		kind:      kind,
		startTime: time.Now(),
	}
}

// ID returns the span ID.
func (s *Span) ID() string { return s.id }

// Name returns the span name.
func (s *Span) Name() string { return s.name }

// Kind returns the span kind.
func (s *Span) Kind() SpanKind { return s.kind }

// StartTime returns when the span started.
func (s *Span) StartTime() time.Time { return s.startTime }

// Err returns the error recorded at End, if any.
func (s *Span) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// SetAttribute records a key/value attribute on the span. A nil span is a
// no-op.
func (s *Span) SetAttribute(key string, value any) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attrs == nil {
		s.attrs = make(map[string]any)
	}
	s.attrs[key] = value
}

// Attributes returns a copy of the span attributes.
func (s *Span) Attributes() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	attrs := make(map[string]any, len(s.attrs))
	for k, v := range s.attrs {
		attrs[k] = v
	}

	return attrs
}

// End marks the span finished, recording the error if non-nil. End is
// idempotent; the first call wins. A nil span is a no-op.
func (s *Span) End(err error) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.endTime.IsZero() {
		return
	}
	s.endTime = time.Now()
	s.err = err
}

// Duration returns the span duration, or the time since start when the span
// has not ended yet.
func (s *Span) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.endTime.IsZero() {
		return time.Since(s.startTime)
	}

	return s.endTime.Sub(s.startTime)
}

// Children returns a copy of the child spans.
func (s *Span) Children() []*Span {
	s.mu.Lock()
	defer s.mu.Unlock()

	children := make([]*Span, len(s.children))
	copy(children, s.children)

	return children
}

func (s *Span) addChild(child *Span) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.children = append(s.children, child)
}

// RunTree is the trace of one invocation: a tree of spans rooted at the run.
type RunTree struct {
	root *Span
}

// NewRunTree creates a new [RunTree] for an invocation.
func NewRunTree(invocationID string) *RunTree {
	root := newSpan(SpanKindRun, invocationID)

	return &RunTree{root: root}
}

// Root returns the root span.
func (rt *RunTree) Root() *Span {
	return rt.root
}

// End finishes the root span.
func (rt *RunTree) End(err error) {
	rt.root.End(err)
}

// Walk visits every span depth-first, parents before children.
func (rt *RunTree) Walk(fn func(depth int, span *Span)) {
	var walk func(depth int, span *Span)
	walk = func(depth int, span *Span) {
		fn(depth, span)
		for _, child := range span.Children() {
			walk(depth+1, child)
		}
	}
	walk(0, rt.root)
}

// Log exports the trace through the logger, one record per span.
func (rt *RunTree) Log(ctx context.Context, logger *slog.Logger) {
	rt.Walk(func(depth int, span *Span) {
		attrs := []any{
			slog.String("span_id", span.ID()),
			slog.String("kind", string(span.Kind())),
			slog.Int("depth", depth),
			slog.Duration("duration", span.Duration()),
		}
		for key, value := range span.Attributes() {
			attrs = append(attrs, slog.Any(key, value))
		}
		if err := span.Err(); err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			logger.ErrorContext(ctx, span.Name(), attrs...)
			return
		}
		logger.InfoContext(ctx, span.Name(), attrs...)
	})
}

// contextKey is how we find the current [*Span] in a [context.Context].
type contextKey struct{}

// NewContext returns a new [context.Context], derived from ctx, which carries
// the provided span as the current span.
func NewContext(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, contextKey{}, span)
}

// SpanFromContext returns the current [*Span] from ctx, or nil when ctx
// carries none.
func SpanFromContext(ctx context.Context) *Span {
	if v := ctx.Value(contextKey{}); v != nil {
		return v.(*Span)
	}

	return nil
}

// StartSpan starts a child of the current span in ctx and returns a context
// carrying the new span. When ctx carries no span, tracing is off: the
// returned span is nil and safe to End.
func StartSpan(ctx context.Context, kind SpanKind, name string) (context.Context, *Span) {
	parent := SpanFromContext(ctx)
	if parent == nil {
		return ctx, nil
	}

	span := newSpan(kind, name)
	parent.addChild(span)

	return NewContext(ctx, span), span
}

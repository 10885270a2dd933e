// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package eval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/eriperspective/agentflow/runner"
	"github.com/eriperspective/agentflow/types"
)

// DefaultMaxConcurrency is the default number of cases evaluated in parallel.
const DefaultMaxConcurrency = 4

// evalUserID is the user under which evaluation sessions run.
const evalUserID = "eval-user"

// CaseResult is the evaluation result for a single case.
type CaseResult struct {
	// CaseName identifies the case.
	CaseName string `json:"case_name"`

	// Outcome is what the agent did; nil when the run errored.
	Outcome *Outcome `json:"outcome,omitempty"`

	// Matches holds one result per matcher.
	Matches []MatchResult `json:"matches,omitempty"`

	// Score is the mean of the matcher scores.
	Score float64 `json:"score"`

	// Pass reports whether every matcher passed.
	Pass bool `json:"pass"`

	// Error describes a run failure.
	Error string `json:"error,omitempty"`
}

// Report aggregates the results of an evaluation run.
type Report struct {
	// Results holds one result per case, in input order.
	Results []CaseResult `json:"results"`

	// Score is the mean case score across the run.
	Score float64 `json:"score"`

	// Passed and Failed count cases; a case with a run error counts as failed.
	Passed int `json:"passed"`
	Failed int `json:"failed"`

	// StartTime and Duration cover the whole run.
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// Summary renders a short human-readable report.
func (r *Report) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d/%d cases passed, mean score %.2f in %s\n", r.Passed, len(r.Results), r.Score, r.Duration.Round(time.Millisecond))
	for _, result := range r.Results {
		status := "PASS"
		if !result.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&sb, "  %s %s (%.2f)", status, result.CaseName, result.Score)
		if result.Error != "" {
			fmt.Fprintf(&sb, ": %s", result.Error)
		}
		for _, match := range result.Matches {
			if match.Explanation != "" {
				fmt.Fprintf(&sb, "\n       %s: %s", match.Matcher, match.Explanation)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Evaluator runs an agent over a set of cases and scores the outcomes with
// matchers. Each case runs against its own fresh in-memory session so cases
// cannot observe each other's state.
type Evaluator struct {
	appName string
	agent   types.Agent

	matchers       []Matcher
	maxConcurrency int
	logger         *slog.Logger
}

// Option configures an [Evaluator].
type Option func(*Evaluator)

// WithMatchers sets the matchers applied to every case.
func WithMatchers(matchers ...Matcher) Option {
	return func(e *Evaluator) {
		e.matchers = append(e.matchers, matchers...)
	}
}

// WithMaxConcurrency limits the number of cases evaluated in parallel.
func WithMaxConcurrency(n int) Option {
	return func(e *Evaluator) {
		e.maxConcurrency = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// NewEvaluator creates a new [Evaluator] for the given agent. Without
// [WithMatchers] it applies [ExactMatcher] only.
func NewEvaluator(appName string, agent types.Agent, opts ...Option) *Evaluator {
	e := &Evaluator{
		appName:        appName,
		agent:          agent,
		maxConcurrency: DefaultMaxConcurrency,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.matchers) == 0 {
		e.matchers = []Matcher{NewExactMatcher()}
	}
	if e.maxConcurrency < 1 {
		e.maxConcurrency = 1
	}

	return e
}

// Evaluate runs all cases and returns the aggregated report. A failing case
// does not abort the run; only context cancellation does.
func (e *Evaluator) Evaluate(ctx context.Context, cases []*Case) (*Report, error) {
	if len(cases) == 0 {
		return nil, fmt.Errorf("no cases to evaluate")
	}

	report := &Report{
		Results:   make([]CaseResult, len(cases)),
		StartTime: time.Now(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)
	for i, c := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Results[i] = e.evaluateCase(gctx, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var totalScore float64
	for _, result := range report.Results {
		totalScore += result.Score
		if result.Pass {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	report.Score = totalScore / float64(len(report.Results))
	report.Duration = time.Since(report.StartTime)

	e.logger.InfoContext(ctx, "evaluation finished",
		slog.Int("cases", len(report.Results)),
		slog.Int("passed", report.Passed),
		slog.Int("failed", report.Failed),
		slog.Float64("score", report.Score),
	)
	return report, nil
}

// evaluateCase runs one case and applies the matchers.
func (e *Evaluator) evaluateCase(ctx context.Context, c *Case) CaseResult {
	result := CaseResult{CaseName: c.Name}

	outcome, err := e.runCase(ctx, c)
	if err != nil {
		result.Error = err.Error()
		e.logger.WarnContext(ctx, "evaluation case failed to run",
			slog.String("case", c.Name),
			slog.Any("error", err),
		)
		return result
	}
	result.Outcome = outcome

	result.Pass = true
	for _, matcher := range e.matchers {
		match := matcher.Match(c, outcome)
		result.Matches = append(result.Matches, match)
		result.Score += match.Score
		if !match.Pass {
			result.Pass = false
		}
	}
	result.Score /= float64(len(e.matchers))
	return result
}

// runCase executes the agent for one case against a fresh session.
func (e *Evaluator) runCase(ctx context.Context, c *Case) (*Outcome, error) {
	r := runner.NewRunner(e.appName, e.agent, runner.WithLogger(e.logger))
	defer r.Close()

	sessionID := uuid.NewString()
	if _, err := r.SessionService().CreateSession(ctx, e.appName, evalUserID, sessionID, c.InitialState); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	outcome := &Outcome{}
	for event, err := range r.Run(ctx, evalUserID, sessionID, c.UserContent) {
		if err != nil {
			return nil, err
		}
		outcome.collectEvent(event)
	}
	return outcome, nil
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package eval

import (
	"fmt"
	"strings"
)

// MatchResult is one matcher's verdict for a case.
type MatchResult struct {
	// Matcher is the name of the matcher that produced the result.
	Matcher string `json:"matcher"`

	// Score is in [0, 1]; 1 is a full match.
	Score float64 `json:"score"`

	// Pass reports whether the matcher considers the case passed.
	Pass bool `json:"pass"`

	// Explanation describes a non-passing result.
	Explanation string `json:"explanation,omitempty"`
}

// Matcher scores an outcome against a case's expectations.
type Matcher interface {
	// Name returns the matcher name used in reports.
	Name() string

	// Match scores the outcome of running the given case.
	Match(c *Case, outcome *Outcome) MatchResult
}

// ExactMatcher passes when the final response equals the expected response,
// modulo surrounding whitespace.
type ExactMatcher struct{}

var _ Matcher = (*ExactMatcher)(nil)

// NewExactMatcher creates a new [ExactMatcher].
func NewExactMatcher() *ExactMatcher {
	return &ExactMatcher{}
}

// Name implements [Matcher].
func (m *ExactMatcher) Name() string {
	return "exact_match"
}

// Match implements [Matcher].
func (m *ExactMatcher) Match(c *Case, outcome *Outcome) MatchResult {
	result := MatchResult{Matcher: m.Name()}
	if strings.TrimSpace(outcome.Response) == strings.TrimSpace(c.ExpectedResponse) {
		result.Score = 1
		result.Pass = true
		return result
	}

	result.Explanation = fmt.Sprintf("response %q does not equal %q", outcome.Response, c.ExpectedResponse)
	return result
}

// ContainsMatcher passes when the final response contains the expected
// response as a substring.
type ContainsMatcher struct {
	// CaseInsensitive folds case before comparing.
	CaseInsensitive bool
}

var _ Matcher = (*ContainsMatcher)(nil)

// NewContainsMatcher creates a new case-sensitive [ContainsMatcher].
func NewContainsMatcher() *ContainsMatcher {
	return &ContainsMatcher{}
}

// Name implements [Matcher].
func (m *ContainsMatcher) Name() string {
	return "contains"
}

// Match implements [Matcher].
func (m *ContainsMatcher) Match(c *Case, outcome *Outcome) MatchResult {
	result := MatchResult{Matcher: m.Name()}

	response, expected := outcome.Response, c.ExpectedResponse
	if m.CaseInsensitive {
		response = strings.ToLower(response)
		expected = strings.ToLower(expected)
	}
	if strings.Contains(response, expected) {
		result.Score = 1
		result.Pass = true
		return result
	}

	result.Explanation = fmt.Sprintf("response %q does not contain %q", outcome.Response, c.ExpectedResponse)
	return result
}

// TrajectoryMatcher scores the tool calls the agent made against the case's
// expected trajectory. The score is the fraction of expected calls found in
// order in the actual trajectory; the matcher passes only on a full match
// with no extra calls interleaved at the same positions.
type TrajectoryMatcher struct {
	// IgnoreArgs compares tool names only.
	IgnoreArgs bool

	// AllowExtraCalls tolerates actual calls beyond the expected ones.
	AllowExtraCalls bool
}

var _ Matcher = (*TrajectoryMatcher)(nil)

// NewTrajectoryMatcher creates a new [TrajectoryMatcher] that compares names
// and arguments and tolerates no extra calls.
func NewTrajectoryMatcher() *TrajectoryMatcher {
	return &TrajectoryMatcher{}
}

// Name implements [Matcher].
func (m *TrajectoryMatcher) Name() string {
	return "trajectory"
}

// Match implements [Matcher].
func (m *TrajectoryMatcher) Match(c *Case, outcome *Outcome) MatchResult {
	result := MatchResult{Matcher: m.Name()}

	expected, actual := c.ExpectedTrajectory, outcome.Trajectory
	if len(expected) == 0 {
		if len(actual) == 0 || m.AllowExtraCalls {
			result.Score = 1
			result.Pass = true
			return result
		}
		result.Explanation = fmt.Sprintf("expected no tool calls, got %d", len(actual))
		return result
	}

	// Greedy in-order matching: each expected call consumes the first
	// remaining actual call it matches.
	matched := 0
	next := 0
	for _, exp := range expected {
		for i := next; i < len(actual); i++ {
			if m.callMatches(exp, actual[i]) {
				matched++
				next = i + 1
				break
			}
		}
	}

	result.Score = float64(matched) / float64(len(expected))
	switch {
	case matched < len(expected):
		result.Explanation = fmt.Sprintf("matched %d of %d expected tool calls", matched, len(expected))
	case !m.AllowExtraCalls && len(actual) != len(expected):
		result.Explanation = fmt.Sprintf("expected %d tool calls, got %d", len(expected), len(actual))
	default:
		result.Pass = true
	}
	return result
}

func (m *TrajectoryMatcher) callMatches(expected, actual ToolCall) bool {
	if expected.Name != actual.Name {
		return false
	}
	if m.IgnoreArgs || expected.Args == nil {
		return true
	}
	if len(expected.Args) != len(actual.Args) {
		return false
	}
	for key, want := range expected.Args {
		got, ok := actual.Args[key]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

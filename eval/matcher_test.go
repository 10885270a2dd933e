// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package eval

import (
	"testing"
)

func TestExactMatcher(t *testing.T) {
	tests := map[string]struct {
		expected string
		response string
		pass     bool
	}{
		"equal": {
			expected: "Paris",
			response: "Paris",
			pass:     true,
		},
		"surrounding whitespace ignored": {
			expected: "Paris",
			response: "  Paris\n",
			pass:     true,
		},
		"different": {
			expected: "Paris",
			response: "London",
			pass:     false,
		},
	}

	matcher := NewExactMatcher()
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := &Case{ExpectedResponse: tt.expected}
			result := matcher.Match(c, &Outcome{Response: tt.response})
			if result.Pass != tt.pass {
				t.Errorf("Pass = %v, want %v (%s)", result.Pass, tt.pass, result.Explanation)
			}
			if tt.pass && result.Score != 1 {
				t.Errorf("Score = %v, want 1", result.Score)
			}
			if !tt.pass && result.Explanation == "" {
				t.Error("expected an explanation for a failing match")
			}
		})
	}
}

func TestContainsMatcher(t *testing.T) {
	c := &Case{ExpectedResponse: "sunny"}

	matcher := NewContainsMatcher()
	if result := matcher.Match(c, &Outcome{Response: "It is sunny in Paris."}); !result.Pass {
		t.Errorf("expected pass, got %s", result.Explanation)
	}
	if result := matcher.Match(c, &Outcome{Response: "It is SUNNY in Paris."}); result.Pass {
		t.Error("case-sensitive matcher should not pass on folded case")
	}

	folded := &ContainsMatcher{CaseInsensitive: true}
	if result := folded.Match(c, &Outcome{Response: "It is SUNNY in Paris."}); !result.Pass {
		t.Errorf("expected case-insensitive pass, got %s", result.Explanation)
	}
}

func TestTrajectoryMatcher(t *testing.T) {
	tests := map[string]struct {
		matcher   *TrajectoryMatcher
		expected  []ToolCall
		actual    []ToolCall
		pass      bool
		wantScore float64
	}{
		"full match in order": {
			matcher: NewTrajectoryMatcher(),
			expected: []ToolCall{
				{Name: "search", Args: map[string]any{"query": "weather"}},
				{Name: "report"},
			},
			actual: []ToolCall{
				{Name: "search", Args: map[string]any{"query": "weather"}},
				{Name: "report"},
			},
			pass:      true,
			wantScore: 1,
		},
		"wrong order": {
			matcher:   NewTrajectoryMatcher(),
			expected:  []ToolCall{{Name: "search"}, {Name: "report"}},
			actual:    []ToolCall{{Name: "report"}, {Name: "search"}},
			pass:      false,
			wantScore: 0.5,
		},
		"argument mismatch": {
			matcher:   NewTrajectoryMatcher(),
			expected:  []ToolCall{{Name: "search", Args: map[string]any{"query": "weather"}}},
			actual:    []ToolCall{{Name: "search", Args: map[string]any{"query": "news"}}},
			pass:      false,
			wantScore: 0,
		},
		"ignore args": {
			matcher:   &TrajectoryMatcher{IgnoreArgs: true},
			expected:  []ToolCall{{Name: "search", Args: map[string]any{"query": "weather"}}},
			actual:    []ToolCall{{Name: "search", Args: map[string]any{"query": "news"}}},
			pass:      true,
			wantScore: 1,
		},
		"extra call rejected": {
			matcher:   NewTrajectoryMatcher(),
			expected:  []ToolCall{{Name: "search"}},
			actual:    []ToolCall{{Name: "search"}, {Name: "report"}},
			pass:      false,
			wantScore: 1,
		},
		"extra call allowed": {
			matcher:   &TrajectoryMatcher{AllowExtraCalls: true},
			expected:  []ToolCall{{Name: "search"}},
			actual:    []ToolCall{{Name: "search"}, {Name: "report"}},
			pass:      true,
			wantScore: 1,
		},
		"no calls expected and none made": {
			matcher:   NewTrajectoryMatcher(),
			pass:      true,
			wantScore: 1,
		},
		"no calls expected but some made": {
			matcher:   NewTrajectoryMatcher(),
			actual:    []ToolCall{{Name: "search"}},
			pass:      false,
			wantScore: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := &Case{ExpectedTrajectory: tt.expected}
			result := tt.matcher.Match(c, &Outcome{Trajectory: tt.actual})
			if result.Pass != tt.pass {
				t.Errorf("Pass = %v, want %v (%s)", result.Pass, tt.pass, result.Explanation)
			}
			if result.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", result.Score, tt.wantScore)
			}
		})
	}
}

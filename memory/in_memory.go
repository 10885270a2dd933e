// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/eriperspective/agentflow/internal/xmaps"
	"github.com/eriperspective/agentflow/types"
)

var wordPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

// extractWordsLower extracts the lower-cased words from text.
func extractWordsLower(text string) types.Set[string] {
	words := types.NewSet[string]()
	for _, word := range wordPattern.FindAllString(text, -1) {
		words.Insert(strings.ToLower(word))
	}
	return words
}

// InMemoryService is an in-memory memory service for prototyping purposes only.
//
// Uses keyword matching instead of semantic search.
type InMemoryService struct {
	// sessionEvents keys are app_name/user_id, then session ID. Values are
	// session event lists.
	sessionEvents map[string]map[string][]*types.Event
	logger        *slog.Logger
	mu            sync.RWMutex
}

var _ types.MemoryService = (*InMemoryService)(nil)

// WithLogger sets the logger for the service.
func (s *InMemoryService) WithLogger(logger *slog.Logger) *InMemoryService {
	s.logger = logger
	return s
}

// NewInMemoryService creates a new [InMemoryService].
func NewInMemoryService() *InMemoryService {
	return &InMemoryService{
		sessionEvents: make(map[string]map[string][]*types.Event),
		logger:        slog.Default(),
	}
}

func userKey(appName, userID string) string {
	return fmt.Sprintf("%s/%s", appName, userID)
}

// AddSessionToMemory implements [types.MemoryService].
func (s *InMemoryService) AddSessionToMemory(ctx context.Context, session types.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userKey(session.AppName(), session.UserID())
	if _, ok := s.sessionEvents[key]; !ok {
		s.sessionEvents[key] = make(map[string][]*types.Event)
	}

	events := make([]*types.Event, 0, len(session.Events()))
	for _, event := range session.Events() {
		if event.LLMResponse != nil && event.Content != nil && len(event.Content.Parts) > 0 {
			events = append(events, event)
		}
	}
	// Re-adding a session replaces its previous memory.
	s.sessionEvents[key][session.ID()] = events

	return nil
}

// SearchMemory implements [types.MemoryService].
func (s *InMemoryService) SearchMemory(ctx context.Context, appName, userID, query string) (*types.SearchMemoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	response := &types.SearchMemoryResponse{
		Memories: make([]*types.MemoryEntry, 0),
	}

	sessions, ok := s.sessionEvents[userKey(appName, userID)]
	if !ok {
		return response, nil
	}

	wordsInQuery := extractWordsLower(query)

	// Walk sessions in ID order so results are stable across searches.
	for _, sessionID := range xmaps.SortedKeys(sessions) {
		for _, event := range sessions[sessionID] {
			partText := make([]string, 0, len(event.Content.Parts))
			for _, part := range event.Content.Parts {
				if part.Text != "" {
					partText = append(partText, part.Text)
				}
			}
			wordsInEvent := extractWordsLower(strings.Join(partText, " "))
			if wordsInEvent.Len() == 0 {
				continue
			}

			for _, queryWord := range wordsInQuery.UnsortedList() {
				if wordsInEvent.Has(queryWord) {
					response.Memories = append(response.Memories, &types.MemoryEntry{
						Content:   event.Content,
						Author:    event.Author,
						Timestamp: event.Timestamp,
					})
					break
				}
			}
		}
	}

	return response, nil
}

// Close implements [types.MemoryService].
func (s *InMemoryService) Close() error {
	return nil
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/types"
)

var summaryInstruction = heredoc.Doc(`
	Summarize the following conversation.
	Capture the facts, decisions, and user preferences worth remembering for
	future conversations. Reply with the summary only.
`)

// SummaryService is a memory service that condenses each session into a
// model-written summary before storing it.
//
// Search is keyword matching over the stored summaries, which keeps recall
// cheap while the summaries keep long conversations compact.
type SummaryService struct {
	model  types.Model
	logger *slog.Logger

	// summaries keys are app_name/user_id. Values are the summary entries,
	// one per summarized session.
	summaries map[string]map[string]*types.MemoryEntry
	mu        sync.RWMutex
}

var _ types.MemoryService = (*SummaryService)(nil)

// NewSummaryService creates a [SummaryService] that summarizes with the given model.
func NewSummaryService(model types.Model) *SummaryService {
	return &SummaryService{
		model:     model,
		logger:    slog.Default(),
		summaries: make(map[string]map[string]*types.MemoryEntry),
	}
}

// WithLogger sets the logger for the service.
func (s *SummaryService) WithLogger(logger *slog.Logger) *SummaryService {
	s.logger = logger
	return s
}

// AddSessionToMemory implements [types.MemoryService].
func (s *SummaryService) AddSessionToMemory(ctx context.Context, session types.Session) error {
	transcript := transcribeSession(session)
	if transcript == "" {
		return nil
	}

	request := types.NewLLMRequest([]*genai.Content{
		genai.NewContentFromText(transcript, genai.Role("user")),
	})
	request.AppendInstructions(summaryInstruction)

	response, err := s.model.GenerateContent(ctx, request)
	if err != nil {
		return fmt.Errorf("summarize session %s: %w", session.ID(), err)
	}
	if response.Content == nil || len(response.Content.Parts) == 0 {
		return fmt.Errorf("summarize session %s: empty model response", session.ID())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := userKey(session.AppName(), session.UserID())
	if _, ok := s.summaries[key]; !ok {
		s.summaries[key] = make(map[string]*types.MemoryEntry)
	}
	s.summaries[key][session.ID()] = &types.MemoryEntry{
		Content:   response.Content,
		Author:    "memory",
		Timestamp: time.Now(),
	}

	return nil
}

// SearchMemory implements [types.MemoryService].
func (s *SummaryService) SearchMemory(ctx context.Context, appName, userID, query string) (*types.SearchMemoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	response := &types.SearchMemoryResponse{
		Memories: make([]*types.MemoryEntry, 0),
	}

	wordsInQuery := extractWordsLower(query)

	for _, entry := range s.summaries[userKey(appName, userID)] {
		var texts []string
		for _, part := range entry.Content.Parts {
			if part.Text != "" {
				texts = append(texts, part.Text)
			}
		}
		wordsInSummary := extractWordsLower(strings.Join(texts, " "))

		for _, queryWord := range wordsInQuery.UnsortedList() {
			if wordsInSummary.Has(queryWord) {
				response.Memories = append(response.Memories, entry)
				break
			}
		}
	}

	return response, nil
}

// Close implements [types.MemoryService].
func (s *SummaryService) Close() error {
	return nil
}

// transcribeSession renders the session's text events as an author-tagged transcript.
func transcribeSession(session types.Session) string {
	var sb strings.Builder
	for _, event := range session.Events() {
		if event.LLMResponse == nil || event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			if part.Text == "" {
				continue
			}
			fmt.Fprintf(&sb, "[%s]: %s\n", event.Author, part.Text)
		}
	}
	return sb.String()
}

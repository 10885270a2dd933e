// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eriperspective/agentflow/types"
)

// InMemoryService is an in-memory implementation of [types.SessionService].
//
// App and user scoped state lives outside the sessions and is merged into the
// session state on read, under the "app:" and "user:" key prefixes.
type InMemoryService struct {
	// sessions is a map from app name to a map from user ID to a map from session ID to session.
	sessions map[string]map[string]map[string]*session

	// userState is a map from app name to a map from user ID to a map from key to value.
	userState map[string]map[string]map[string]any

	// appState is a map from app name to a map from key to value.
	appState map[string]map[string]any

	logger *slog.Logger
	mu     sync.RWMutex
}

var _ types.SessionService = (*InMemoryService)(nil)

// ServiceOption configures an [InMemoryService].
type ServiceOption func(*InMemoryService)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *InMemoryService) {
		s.logger = logger
	}
}

// NewInMemoryService creates a new [InMemoryService].
func NewInMemoryService(opts ...ServiceOption) *InMemoryService {
	s := &InMemoryService{
		sessions:  make(map[string]map[string]map[string]*session),
		userState: make(map[string]map[string]map[string]any),
		appState:  make(map[string]map[string]any),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateSession implements [types.SessionService].
func (s *InMemoryService) CreateSession(ctx context.Context, appName, userID, sessionID string, state map[string]any) (types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.logger.InfoContext(ctx, "creating session",
		slog.String("app_name", appName),
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	stateCopy := make(map[string]any, len(state))
	maps.Copy(stateCopy, state)

	ses := NewSession(appName, userID, sessionID, stateCopy, time.Now())

	if _, ok := s.sessions[appName]; !ok {
		s.sessions[appName] = make(map[string]map[string]*session)
	}
	if _, ok := s.sessions[appName][userID]; !ok {
		s.sessions[appName][userID] = make(map[string]*session)
	}
	s.sessions[appName][userID][sessionID] = ses

	// Return a copy so callers don't mutate the stored session.
	return s.mergeState(appName, userID, s.copySession(ses)), nil
}

// GetSession implements [types.SessionService].
func (s *InMemoryService) GetSession(ctx context.Context, appName, userID, sessionID string, config *types.GetSessionConfig) (types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, err := s.lookup(appName, userID, sessionID)
	if err != nil {
		return nil, err
	}

	copied := s.copySession(stored)
	if config != nil {
		events := copied.events
		if config.AfterTimestamp > 0 {
			cutoff := time.Unix(int64(config.AfterTimestamp), 0)
			i := 0
			for ; i < len(events); i++ {
				if !events[i].Timestamp.Before(cutoff) {
					break
				}
			}
			events = events[i:]
		}
		if config.NumRecentEvents > 0 && len(events) > config.NumRecentEvents {
			events = events[len(events)-config.NumRecentEvents:]
		}
		copied.events = events
	}

	return s.mergeState(appName, userID, copied), nil
}

// ListSessions implements [types.SessionService].
func (s *InMemoryService) ListSessions(ctx context.Context, appName, userID string) (*types.ListSessionsResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	response := &types.ListSessionsResponse{
		Sessions: []types.Session{},
	}

	for _, ses := range s.sessions[appName][userID] {
		// Events and state are not populated in listings.
		copied := NewSession(ses.AppName(), ses.UserID(), ses.ID(), nil, ses.LastUpdateTime())
		response.Sessions = append(response.Sessions, copied)
	}

	return response, nil
}

// DeleteSession implements [types.SessionService].
func (s *InMemoryService) DeleteSession(ctx context.Context, appName, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if users, ok := s.sessions[appName]; ok {
		delete(users[userID], sessionID)
	}
	return nil
}

// AppendEvent implements [types.SessionService].
func (s *InMemoryService) AppendEvent(ctx context.Context, ses types.Session, event *types.Event) (*types.Event, error) {
	if event.LLMResponse != nil && event.Partial {
		// Partial events are not committed to the session history.
		return event, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	appName := ses.AppName()
	userID := ses.UserID()
	sessionID := ses.ID()

	// Update the provided session.
	ses.AddEvent(event)
	ses.SetLastUpdateTime(event.Timestamp)

	stored, err := s.lookup(appName, userID, sessionID)
	if err != nil {
		// The session was never stored (or was deleted), nothing to commit.
		return event, nil
	}

	stored.AddEvent(event)
	stored.SetLastUpdateTime(event.Timestamp)

	if event.Actions != nil {
		s.commitStateDelta(appName, userID, stored, event.Actions.StateDelta)
	}

	return event, nil
}

// commitStateDelta applies a state delta to the stored session and the app and
// user scoped state.
func (s *InMemoryService) commitStateDelta(appName, userID string, stored *session, stateDelta map[string]any) {
	for key, value := range stateDelta {
		switch {
		case strings.HasPrefix(key, types.AppPrefix):
			if _, ok := s.appState[appName]; !ok {
				s.appState[appName] = make(map[string]any)
			}
			s.appState[appName][strings.TrimPrefix(key, types.AppPrefix)] = value

		case strings.HasPrefix(key, types.UserPrefix):
			if _, ok := s.userState[appName]; !ok {
				s.userState[appName] = make(map[string]map[string]any)
			}
			if _, ok := s.userState[appName][userID]; !ok {
				s.userState[appName][userID] = make(map[string]any)
			}
			s.userState[appName][userID][strings.TrimPrefix(key, types.UserPrefix)] = value

		case strings.HasPrefix(key, types.TempPrefix):
			// Temporary state is never persisted.

		default:
			stored.state[key] = value
		}
	}
}

// ListEvents implements [types.SessionService].
func (s *InMemoryService) ListEvents(ctx context.Context, appName, userID, sessionID string) (*types.ListEventsResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, err := s.lookup(appName, userID, sessionID)
	if err != nil {
		return nil, err
	}

	return &types.ListEventsResponse{
		Events: stored.GetRecentEvents(0),
	}, nil
}

// Close implements [types.SessionService].
func (s *InMemoryService) Close() error {
	return nil
}

// lookup finds the stored session. The caller must hold the lock.
func (s *InMemoryService) lookup(appName, userID, sessionID string) (*session, error) {
	if _, ok := s.sessions[appName]; !ok {
		return nil, fmt.Errorf("app %s not found", appName)
	}
	if _, ok := s.sessions[appName][userID]; !ok {
		return nil, fmt.Errorf("user %s not found for app %s", userID, appName)
	}
	stored, ok := s.sessions[appName][userID][sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s not found for user %s in app %s", sessionID, userID, appName)
	}
	return stored, nil
}

// copySession creates a copy of a session. The caller must hold the lock.
func (s *InMemoryService) copySession(ses *session) *session {
	copied := NewSession(ses.appName, ses.userID, ses.id, nil, ses.lastUpdateTime)
	copied.events = append(copied.events, ses.events...)
	maps.Copy(copied.state, ses.state)

	return copied
}

// mergeState merges app and user state into the session state. The caller must
// hold the lock.
func (s *InMemoryService) mergeState(appName, userID string, ses *session) *session {
	for key, value := range s.appState[appName] {
		ses.state[types.AppPrefix+key] = value
	}

	if userStateByApp, ok := s.userState[appName]; ok {
		for key, value := range userStateByApp[userID] {
			ses.state[types.UserPrefix+key] = value
		}
	}

	return ses
}

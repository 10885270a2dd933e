// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"slices"
	"sync"
	"time"

	"github.com/eriperspective/agentflow/types"
)

// session represents a session with user interaction history.
//
// A session may be read by parallel sub-agents while the invocation loop
// appends events, so access to the event list and timestamp is guarded.
type session struct {
	id      string
	appName string
	userID  string

	mu             sync.RWMutex
	events         []*types.Event
	state          map[string]any
	lastUpdateTime time.Time
}

var _ types.Session = (*session)(nil)

// NewSession creates a new session with the given parameters.
func NewSession(appName, userID, id string, state map[string]any, lastUpdateTime time.Time) *session {
	if state == nil {
		state = make(map[string]any)
	}

	return &session{
		id:             id,
		appName:        appName,
		userID:         userID,
		events:         []*types.Event{},
		state:          state,
		lastUpdateTime: lastUpdateTime,
	}
}

// ID returns the session ID.
func (s *session) ID() string {
	return s.id
}

// AppName returns the application name.
func (s *session) AppName() string {
	return s.appName
}

// UserID returns the user ID.
func (s *session) UserID() string {
	return s.userID
}

// Events returns a snapshot of the events in this session.
func (s *session) Events() []*types.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.events)
}

// State returns the state of this session.
func (s *session) State() map[string]any {
	return s.state
}

// LastUpdateTime returns the last time this session was updated.
func (s *session) LastUpdateTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastUpdateTime
}

// SetLastUpdateTime sets the last update time of this session.
func (s *session) SetLastUpdateTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUpdateTime = t
}

// AddEvent adds events to this session.
func (s *session) AddEvent(events ...*types.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, events...)
}

// GetRecentEvents returns the most recent n events.
func (s *session) GetRecentEvents(n int) []*types.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.events) {
		return slices.Clone(s.events)
	}
	return slices.Clone(s.events[len(s.events)-n:])
}

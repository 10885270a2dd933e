// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
)

// GetSessionConfig is the configuration of getting a session.
type GetSessionConfig struct {
	// NumRecentEvents limits how many of the most recent events are returned.
	// Zero means no limit.
	NumRecentEvents int

	// AfterTimestamp filters out events older than the given Unix timestamp.
	AfterTimestamp float64
}

// ListSessionsResponse is the response of listing sessions.
//
// The events and states are not set within each Session object.
type ListSessionsResponse struct {
	Sessions []Session
}

// ListEventsResponse is the response of listing events in a session.
type ListEventsResponse struct {
	Events        []*Event
	NextPageToken string
}

// SessionService represents a service that manages user sessions
// and their event histories.
type SessionService interface {
	// CreateSession creates a new session with the specified parameters.
	//
	// If sessionID is empty, the service generates one.
	CreateSession(ctx context.Context, appName, userID, sessionID string, state map[string]any) (Session, error)

	// GetSession retrieves a specific session, optionally filtering its
	// events per the config.
	GetSession(ctx context.Context, appName, userID, sessionID string, config *GetSessionConfig) (Session, error)

	// ListSessions returns all sessions for the given app and user, without
	// events or state populated.
	ListSessions(ctx context.Context, appName, userID string) (*ListSessionsResponse, error)

	// DeleteSession removes a session and its events.
	DeleteSession(ctx context.Context, appName, userID, sessionID string) error

	// AppendEvent appends an event to a session and commits the event's
	// state delta into the session state.
	AppendEvent(ctx context.Context, session Session, event *Event) (*Event, error)

	// ListEvents lists the events in the given session.
	ListEvents(ctx context.Context, appName, userID, sessionID string) (*ListEventsResponse, error)

	// Close closes the session service.
	Close() error
}

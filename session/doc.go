// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package session provides conversation session management.
//
// A session holds the event history and state of one conversation between a
// user and an agent tree. The [types.SessionService] implementations create,
// retrieve, and update sessions, and commit each event's state delta into the
// session state.
//
// # State Scoping
//
// State keys are scoped by prefix:
//
//   - no prefix: state private to the session
//   - "app:": state shared by all users of the application
//   - "user:": state shared by all sessions of a user
//   - "temp:": state for the current invocation only, never persisted
//
// App and user scoped state lives outside the session and is merged into the
// session's state map on every read, so an agent sees one flat map.
//
// # Usage
//
//	service := session.NewInMemoryService()
//
//	ses, err := service.CreateSession(ctx, "my-app", "user-1", "", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	event := types.NewEvent().WithAuthor("user").WithContent(content)
//	if _, err := service.AppendEvent(ctx, ses, event); err != nil {
//		log.Fatal(err)
//	}
//
// [InMemoryService] keeps everything in process memory and is suited for
// tests and single-process deployments.
package session

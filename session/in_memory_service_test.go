// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"sync"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/types"
)

func TestInMemoryServiceSessionLifecycle(t *testing.T) {
	ctx := t.Context()
	service := NewInMemoryService()

	ses, err := service.CreateSession(ctx, "app", "user", "", map[string]any{"topic": "go"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if ses.ID() == "" {
		t.Error("expected a generated session ID")
	}
	if got := ses.State()["topic"]; got != "go" {
		t.Errorf("state[topic] = %v, want go", got)
	}

	got, err := service.GetSession(ctx, "app", "user", ses.ID(), nil)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.ID() != ses.ID() {
		t.Errorf("GetSession ID = %s, want %s", got.ID(), ses.ID())
	}

	listed, err := service.ListSessions(ctx, "app", "user")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(listed.Sessions) != 1 {
		t.Fatalf("len(Sessions) = %d, want 1", len(listed.Sessions))
	}
	if len(listed.Sessions[0].Events()) != 0 {
		t.Error("listed sessions must not include events")
	}

	if err := service.DeleteSession(ctx, "app", "user", ses.ID()); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := service.GetSession(ctx, "app", "user", ses.ID(), nil); err == nil {
		t.Error("expected error getting deleted session")
	}
}

func TestInMemoryServiceAppendEventStateDelta(t *testing.T) {
	ctx := t.Context()
	service := NewInMemoryService()

	ses, err := service.CreateSession(ctx, "app", "user", "s1", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	event := types.NewEvent().
		WithAuthor("agent").
		WithContent(genai.NewContentFromText("done", genai.Role("model")))
	event.Actions.StateDelta["result"] = "42"
	event.Actions.StateDelta[types.AppPrefix+"version"] = "v1"
	event.Actions.StateDelta[types.UserPrefix+"lang"] = "en"
	event.Actions.StateDelta[types.TempPrefix+"scratch"] = "discard"

	if _, err := service.AppendEvent(ctx, ses, event); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}

	got, err := service.GetSession(ctx, "app", "user", "s1", nil)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}

	if len(got.Events()) != 1 {
		t.Fatalf("len(Events) = %d, want 1", len(got.Events()))
	}
	state := got.State()
	if state["result"] != "42" {
		t.Errorf("state[result] = %v, want 42", state["result"])
	}
	if state[types.AppPrefix+"version"] != "v1" {
		t.Errorf("app state not merged: %v", state)
	}
	if state[types.UserPrefix+"lang"] != "en" {
		t.Errorf("user state not merged: %v", state)
	}
	if _, ok := state[types.TempPrefix+"scratch"]; ok {
		t.Error("temp state must not be persisted")
	}

	// App state is shared across sessions of the same app.
	other, err := service.CreateSession(ctx, "app", "user2", "s2", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if other.State()[types.AppPrefix+"version"] != "v1" {
		t.Error("app state not visible in other user's session")
	}
	if _, ok := other.State()[types.UserPrefix+"lang"]; ok {
		t.Error("user state must not leak to another user")
	}
}

func TestInMemoryServiceGetSessionConfig(t *testing.T) {
	ctx := t.Context()
	service := NewInMemoryService()

	ses, err := service.CreateSession(ctx, "app", "user", "s1", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	for range 5 {
		event := types.NewEvent().
			WithAuthor("user").
			WithContent(genai.NewContentFromText("hi", genai.Role("user")))
		if _, err := service.AppendEvent(ctx, ses, event); err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
	}

	got, err := service.GetSession(ctx, "app", "user", "s1", &types.GetSessionConfig{NumRecentEvents: 2})
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(got.Events()) != 2 {
		t.Errorf("len(Events) = %d, want 2", len(got.Events()))
	}
}

func TestSessionConcurrentEvents(t *testing.T) {
	ses := NewSession("app", "user", "s1", nil, time.Now())

	const writers, perWriter = 4, 50

	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWriter {
				event := types.NewEvent().
					WithAuthor("agent").
					WithContent(genai.NewContentFromText("step", genai.Role("model")))
				ses.AddEvent(event)
				ses.SetLastUpdateTime(event.Timestamp)
			}
		}()
	}
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWriter {
				_ = ses.Events()
				_ = ses.GetRecentEvents(2)
				_ = ses.LastUpdateTime()
			}
		}()
	}
	wg.Wait()

	if got := len(ses.Events()); got != writers*perWriter {
		t.Errorf("len(Events) = %d, want %d", got, writers*perWriter)
	}

	// Events returns a snapshot not aliased to the live slice.
	snapshot := ses.Events()
	ses.AddEvent(types.NewEvent().WithAuthor("agent"))
	if len(snapshot) != writers*perWriter {
		t.Errorf("snapshot length changed to %d after AddEvent", len(snapshot))
	}
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"
)

func TestInMemoryServiceVersioning(t *testing.T) {
	ctx := t.Context()
	service := NewInMemoryService()

	v0, err := service.SaveArtifact(ctx, "app", "user", "s1", "report.txt", genai.NewPartFromText("draft"))
	if err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}
	v1, err := service.SaveArtifact(ctx, "app", "user", "s1", "report.txt", genai.NewPartFromText("final"))
	if err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}
	if v0 != 0 || v1 != 1 {
		t.Errorf("versions = %d, %d, want 0, 1", v0, v1)
	}

	// Negative version loads the latest.
	part, err := service.LoadArtifact(ctx, "app", "user", "s1", "report.txt", -1)
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}
	if part.Text != "final" {
		t.Errorf("latest = %q, want final", part.Text)
	}

	part, err = service.LoadArtifact(ctx, "app", "user", "s1", "report.txt", 0)
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}
	if part.Text != "draft" {
		t.Errorf("version 0 = %q, want draft", part.Text)
	}

	versions, err := service.ListVersions(ctx, "app", "user", "s1", "report.txt")
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if diff := cmp.Diff([]int{0, 1}, versions); diff != "" {
		t.Errorf("ListVersions mismatch (-want +got):\n%s", diff)
	}

	// Missing artifact loads as nil without error.
	part, err = service.LoadArtifact(ctx, "app", "user", "s1", "missing.txt", -1)
	if err != nil || part != nil {
		t.Errorf("LoadArtifact(missing) = %v, %v, want nil, nil", part, err)
	}
}

func TestInMemoryServiceUserNamespace(t *testing.T) {
	ctx := t.Context()
	service := NewInMemoryService()

	if _, err := service.SaveArtifact(ctx, "app", "user", "s1", "user:prefs.json", genai.NewPartFromText("{}")); err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}
	if _, err := service.SaveArtifact(ctx, "app", "user", "s1", "notes.txt", genai.NewPartFromText("hi")); err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}

	// User-namespaced files are visible from any session of the user.
	part, err := service.LoadArtifact(ctx, "app", "user", "s2", "user:prefs.json", -1)
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}
	if part == nil {
		t.Fatal("user-namespaced artifact not visible from another session")
	}

	keys, err := service.ListArtifactKey(ctx, "app", "user", "s1")
	if err != nil {
		t.Fatalf("ListArtifactKey: %v", err)
	}
	if diff := cmp.Diff([]string{"notes.txt", "user:prefs.json"}, keys); diff != "" {
		t.Errorf("ListArtifactKey mismatch (-want +got):\n%s", diff)
	}

	if err := service.DeleteArtifact(ctx, "app", "user", "s1", "notes.txt"); err != nil {
		t.Fatalf("DeleteArtifact: %v", err)
	}
	keys, err = service.ListArtifactKey(ctx, "app", "user", "s1")
	if err != nil {
		t.Fatalf("ListArtifactKey: %v", err)
	}
	if diff := cmp.Diff([]string{"user:prefs.json"}, keys); diff != "" {
		t.Errorf("ListArtifactKey after delete mismatch (-want +got):\n%s", diff)
	}
}

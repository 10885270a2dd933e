// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact provides artifact storage for files produced and consumed
// by agents.
//
// An artifact is a named, versioned [genai.Part] — a document, image, or any
// binary blob — scoped to an app, user, and session. Saving an existing
// filename appends a new version; loading with a negative version returns the
// latest.
//
// Filenames prefixed with "user:" are stored in the user namespace and are
// visible across all sessions of that user.
//
// [InMemoryService] keeps artifacts in process memory and suits tests and
// single-process deployments. Agents access artifacts through
// [types.CallbackContext] and [types.ToolContext] rather than using this
// package directly.
package artifact

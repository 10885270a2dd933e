// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package xiter provides helpers for [iter.Seq2] event streams.
package xiter

import (
	"iter"
)

// Error returns an iterator that yields only the given error.
func Error[T any](err error) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		yield(nil, err)
	}
}

// Empty returns an iterator that yields nothing.
func Empty[T any]() iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {}
}

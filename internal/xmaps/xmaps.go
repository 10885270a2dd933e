// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package xmaps provides generic map helpers.
package xmaps

import (
	"cmp"
	"maps"
	"slices"
)

// SortedKeys returns the keys of m in sorted order.
func SortedKeys[Map ~map[K]V, K cmp.Ordered, V any](m Map) []K {
	return slices.Sorted(maps.Keys(m))
}

// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package types

// Set is a minimal unordered set of comparable values.
type Set[T comparable] map[T]struct{}

// NewSet returns a [Set] seeded with items.
func NewSet[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	s.Insert(items...)
	return s
}

// Insert adds items to the set.
func (s Set[T]) Insert(items ...T) {
	for _, item := range items {
		s[item] = struct{}{}
	}
}

// Has reports whether item is in the set.
func (s Set[T]) Has(item T) bool {
	_, ok := s[item]
	return ok
}

// Len returns the number of items in the set.
func (s Set[T]) Len() int {
	return len(s)
}

// UnsortedList returns the items in unspecified order.
func (s Set[T]) UnsortedList() []T {
	list := make([]T, 0, len(s))
	for item := range s {
		list = append(list, item)
	}
	return list
}

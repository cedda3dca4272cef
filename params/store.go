// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package params

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rosen/node"
)

// Snapshot is an immutable set of display params published by one commit.
type Snapshot struct {
	Generation uint64
	displays   map[node.ID]DisplayParams
}

// Display returns the params of a display.
func (s *Snapshot) Display(id node.ID) (DisplayParams, bool) {
	d, ok := s.displays[id]
	return d, ok
}

// Displays returns the display ids in ascending order.
func (s *Snapshot) Displays() []node.ID {
	return slices.Sorted(maps.Keys(s.displays))
}

// Store double-buffers display params between the traversal and the stages
// that consume them.
//
// Stage and Commit are called by the render thread. Snapshot may be called
// from any goroutine.
type Store struct {
	mu        sync.Mutex
	staging   map[node.ID]DisplayParams
	published atomic.Pointer[Snapshot]
}

// NewStore creates a store with an empty published snapshot.
func NewStore() *Store {
	s := &Store{staging: make(map[node.ID]DisplayParams)}
	s.published.Store(&Snapshot{displays: map[node.ID]DisplayParams{}})
	return s
}

// Stage records the params of one display for the next commit. The slices
// are copied, so the caller may keep reusing its buffers.
func (s *Store) Stage(d DisplayParams) {
	d.Surfaces = slices.Clone(d.Surfaces)
	d.Layers = slices.Clone(d.Layers)
	s.mu.Lock()
	s.staging[d.ID] = d
	s.mu.Unlock()
}

// Staged returns the params staged for a display since the last commit.
func (s *Store) Staged(id node.ID) (DisplayParams, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.staging[id]
	return d, ok
}

// Commit publishes the staged params. Displays that were not staged keep
// their previously published params.
func (s *Store) Commit() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.published.Load()
	next := &Snapshot{
		Generation: prev.Generation + 1,
		displays:   maps.Clone(prev.displays),
	}
	maps.Copy(next.displays, s.staging)
	clear(s.staging)
	s.published.Store(next)
	return next
}

// Snapshot returns the last published snapshot. It is never nil.
func (s *Store) Snapshot() *Snapshot {
	return s.published.Load()
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package prepare implements the quick-prepare pass: one depth-first walk of
// the render-node tree per display and vsync.
//
// The walk updates absolute geometry, merges per-node damage into the dirty
// manager of the owning surface, caches opaque regions and decides which
// self-drawing surfaces may be hardware layers. It then runs, over the
// surfaces it collected sorted front to back:
//
//   - the filter cache validity scan,
//   - the occlusion fold (visible and opaque regions),
//   - the global dirty aggregation into the display dirty manager,
//   - the filter fixed point,
//   - the hardware layer overlap and filter checks.
//
// The results are staged into a params.Store as one DisplayParams.
//
// A Visitor is owned by the render thread and is not safe for concurrent
// use. The tree may be edited concurrently; edits become visible at the next
// Tree.Commit.
package prepare

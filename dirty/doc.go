// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package dirty accumulates the damaged area of one surface or display over
// a frame.
//
// A [Manager] is created once per surface or display node. At the start of
// each frame it is cleared, the traversal merges changed rectangles into it,
// and at the end of the frame [Manager.Sync] hands an immutable [Snapshot]
// to the paint stage while keeping a short history for buffer-age damage.
//
// The manager never fails: empty rectangles are ignored, and whenever the
// active area of the surface changes it falls back to invalidating the whole
// surface. Over-invalidation costs an extra repaint; under-invalidation would
// leave stale pixels on screen.
package dirty

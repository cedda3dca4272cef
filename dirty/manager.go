// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dirty

import (
	"maps"

	"github.com/gogpu/rosen/region"
)

const (
	// DefaultHistoryDepth is the number of synced frames kept for
	// buffer-age damage.
	DefaultHistoryDepth = 5

	// DefaultMaxRects is the threshold after which the current frame region
	// collapses into its bounding rectangle.
	DefaultMaxRects = 16
)

// Option configures a Manager during creation.
type Option func(*options)

type options struct {
	historyDepth int
	maxRects     int
	alignment    int
	debugTypes   bool
}

func defaultOptions() options {
	return options{
		historyDepth: DefaultHistoryDepth,
		maxRects:     DefaultMaxRects,
	}
}

// WithHistoryDepth sets how many synced frames are remembered.
// Values below 1 keep the default.
func WithHistoryDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.historyDepth = n
		}
	}
}

// WithMaxRects sets the rectangle count above which the current region is
// replaced by its bound. Values below 1 keep the default.
func WithMaxRects(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRects = n
		}
	}
}

// WithAlignment aligns the clipped damage rectangles to an n-pixel grid.
func WithAlignment(n int) Option {
	return func(o *options) {
		o.alignment = n
	}
}

// WithDebugTypes records merged rectangles per [Type] for debug overlays.
func WithDebugTypes(enabled bool) Option {
	return func(o *options) {
		o.debugTypes = enabled
	}
}

// Manager accumulates the damaged rectangles of one surface or display.
//
// Manager is not safe for concurrent use; it is owned by the traversal
// thread. Use [Manager.Sync] to hand results to another goroutine.
type Manager struct {
	opts options

	surfaceRect    region.Rect
	activeRect     region.Rect
	lastActiveRect region.Rect

	current   region.Region
	history   []region.Region // oldest first
	bufferAge int

	byType [typeCount]map[uint64]region.Rect
}

// NewManager creates an empty dirty region manager.
func NewManager(opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager{opts: o}
}

// Reconfigure replaces the options of an existing manager. The history is
// trimmed to the new depth.
func (m *Manager) Reconfigure(opts ...Option) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	m.opts = o
	if over := len(m.history) - o.historyDepth; over > 0 {
		m.history = append(m.history[:0], m.history[over:]...)
	}
}

// SetSurfaceRect sets the bounds damage is clipped to.
// Returns true if the bounds changed. A change drops the history, since
// rectangles recorded against the old bounds no longer describe the buffer.
func (m *Manager) SetSurfaceRect(r region.Rect) bool {
	if r == m.surfaceRect {
		return false
	}
	m.surfaceRect = r
	m.history = m.history[:0]
	return true
}

// SurfaceRect returns the surface bounds.
func (m *Manager) SurfaceRect() region.Rect { return m.surfaceRect }

// SetActiveRect narrows the area that is actually presented, for example a
// partial screen. The zero Rect restores the full surface rect.
func (m *Manager) SetActiveRect(r region.Rect) {
	m.activeRect = r
}

// ActiveRect returns the area damage is currently clipped to.
func (m *Manager) ActiveRect() region.Rect {
	if m.activeRect.IsEmpty() {
		return m.surfaceRect
	}
	return m.activeRect.Intersect(m.surfaceRect)
}

// Clear empties the current frame region. Called once at the start of the
// frame for every visited owner.
func (m *Manager) Clear() {
	m.current = region.Region{}
	if m.opts.debugTypes {
		for i := range m.byType {
			clear(m.byType[i])
		}
	}
}

// MergeDirtyRect unions r, clipped to the active rect, into the current
// frame region. Empty rectangles are ignored.
func (m *Manager) MergeDirtyRect(r region.Rect) {
	r = r.Intersect(m.ActiveRect())
	if r.IsEmpty() {
		return
	}
	m.current.OrSelf(region.FromRect(r))
	m.collapse()
}

// MergeDirtyRegion unions g, clipped to the active rect, into the current
// frame region.
func (m *Manager) MergeDirtyRegion(g region.Region) {
	if g.IsEmpty() {
		return
	}
	m.current.OrSelf(g.AndRect(m.ActiveRect()))
	m.collapse()
}

// MarkDirty merges r like MergeDirtyRect and, when debug types are enabled,
// records it under typ for the node id.
func (m *Manager) MarkDirty(typ Type, id uint64, r region.Rect) {
	r = r.Intersect(m.ActiveRect())
	if r.IsEmpty() {
		return
	}
	m.MergeDirtyRect(r)
	if !m.opts.debugTypes || typ >= typeCount {
		return
	}
	if m.byType[typ] == nil {
		m.byType[typ] = make(map[uint64]region.Rect)
	}
	m.byType[typ][id] = m.byType[typ][id].JoinRect(r)
}

// MergeSurfaceRect marks the whole active rect dirty.
func (m *Manager) MergeSurfaceRect() {
	m.MarkDirty(TypeFullInvalidation, 0, m.ActiveRect())
}

func (m *Manager) collapse() {
	if m.current.Len() > m.opts.maxRects {
		m.current = region.FromRect(m.current.Bound())
	}
}

// CurrentFrameDirty returns the current frame region.
func (m *Manager) CurrentFrameDirty() region.Region { return m.current }

// CurrentFrameDirtyRect returns the bound of the current frame region.
func (m *Manager) CurrentFrameDirtyRect() region.Rect { return m.current.Bound() }

// IsCurrentFrameDirty reports whether anything was merged this frame.
func (m *Manager) IsCurrentFrameDirty() bool { return !m.current.IsEmpty() }

// IsDirty reports whether r intersects the current frame region.
func (m *Manager) IsDirty(r region.Rect) bool { return m.current.IsIntersectWithRect(r) }

// ClipDirtyRectWithinSurface clamps the current region to the active rect.
//
// If the active rect differs from the one seen at the previous call, the
// whole active rect is marked dirty instead of attempting an incremental
// update. Calling it twice in a row is a no-op the second time.
func (m *Manager) ClipDirtyRectWithinSurface() {
	active := m.ActiveRect()
	if active != m.lastActiveRect {
		m.MarkDirty(TypeFullInvalidation, 0, active)
		m.lastActiveRect = active
	}
	if m.current.IsEmpty() {
		return
	}
	if n := m.opts.alignment; n > 1 {
		rs := m.current.Rects()
		for i := range rs {
			rs[i] = rs[i].Align(n)
		}
		m.current = region.FromRects(rs...)
	}
	m.current = m.current.AndRect(active)
}

// SetBufferAge records the age of the buffer about to be drawn.
// Returns false if the history is too short to describe that age, in which
// case [Manager.BufferAgeDirty] reports the whole surface.
func (m *Manager) SetBufferAge(age int) bool {
	m.bufferAge = age
	return age >= 1 && age-1 <= len(m.history)
}

// BufferAgeDirty returns the damage for the age passed to SetBufferAge.
func (m *Manager) BufferAgeDirty() region.Region {
	return m.HistoryUnion(m.bufferAge)
}

// HistoryUnion returns the union of the current frame and the n-1 frames
// synced before it. If n is not positive or exceeds the recorded history the
// whole active rect is returned.
func (m *Manager) HistoryUnion(n int) region.Region {
	return damage(m.current, m.history, n, m.ActiveRect())
}

// DirtyByType returns a copy of the debug breakdown.
// It is empty unless the manager was created WithDebugTypes(true).
func (m *Manager) DirtyByType() map[Type]map[uint64]region.Rect {
	out := make(map[Type]map[uint64]region.Rect)
	for t, rects := range m.byType {
		if len(rects) > 0 {
			out[Type(t)] = maps.Clone(rects)
		}
	}
	return out
}

// Sync ends the frame: the current region is appended to the history and a
// snapshot is returned for the paint stage. The manager keeps its working
// state; the snapshot never aliases it.
func (m *Manager) Sync() Snapshot {
	s := Snapshot{
		Current:     m.current,
		SurfaceRect: m.ActiveRect(),
		history:     make([]region.Region, len(m.history)),
	}
	copy(s.history, m.history)

	m.history = append(m.history, m.current)
	if over := len(m.history) - m.opts.historyDepth; over > 0 {
		m.history = append(m.history[:0], m.history[over:]...)
	}
	return s
}

// Snapshot is the synced result of one frame.
type Snapshot struct {
	// Current is the final damage of the frame.
	Current region.Region

	// SurfaceRect is the active rect the damage was clipped to.
	SurfaceRect region.Rect

	history []region.Region // frames synced before this one, oldest first
}

// Damage returns the area to repaint into a buffer last drawn age frames
// ago. age 1 is the current frame alone. Ages that are not positive or
// older than the history fall back to the whole surface.
func (s Snapshot) Damage(age int) region.Region {
	return damage(s.Current, s.history, age, s.SurfaceRect)
}

func damage(current region.Region, history []region.Region, age int, full region.Rect) region.Region {
	if age < 1 || age-1 > len(history) {
		return region.FromRect(full)
	}
	out := current
	for _, g := range history[len(history)-(age-1):] {
		out = out.Or(g)
	}
	return out
}

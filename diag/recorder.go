// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package diag

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/region"
)

// DefaultLimit is the number of hardware layer events kept by default.
const DefaultLimit = 1024

// HwcEvent is one hardware layer disqualification.
type HwcEvent struct {
	Frame  uint64
	Node   node.ID
	Name   string
	Reason node.HwcDisabledReason
}

// DirtyEvent is the damage of one prepared display frame.
type DirtyEvent struct {
	Frame   uint64
	Display node.ID
	Damage  region.Region

	// ByType is empty unless the traversal ran with debug dirty types.
	ByType map[dirty.Type]map[uint64]region.Rect
}

// Stats holds running totals since the recorder was created.
type Stats struct {
	Frames      atomic.Uint64
	HwcDisabled atomic.Uint64
	Dropped     atomic.Uint64
	DamageArea  atomic.Uint64
}

// Recorder collects traversal diagnostics. It is safe for concurrent use;
// the render thread records while another goroutine reads.
type Recorder struct {
	mu    sync.Mutex
	limit int
	hwc   []HwcEvent
	dirty map[node.ID]DirtyEvent

	stats Stats
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLimit sets how many hardware layer events are kept. Older events are
// dropped first. Values below 1 keep the default.
func WithLimit(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.limit = n
		}
	}
}

// NewRecorder creates an empty recorder.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		limit: DefaultLimit,
		dirty: make(map[node.ID]DirtyEvent),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordHwcDisabled logs a disqualified self-drawing surface.
func (r *Recorder) RecordHwcDisabled(frame uint64, id node.ID, name string, reason node.HwcDisabledReason) {
	r.stats.HwcDisabled.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.hwc) == r.limit {
		r.hwc = slices.Delete(r.hwc, 0, 1)
		r.stats.Dropped.Add(1)
	}
	r.hwc = append(r.hwc, HwcEvent{Frame: frame, Node: id, Name: name, Reason: reason})
}

// RecordDirty stores the damage of a display frame, replacing the previous
// one of the same display.
func (r *Recorder) RecordDirty(frame uint64, display node.ID, damage region.Region, byType map[dirty.Type]map[uint64]region.Rect) {
	r.stats.Frames.Add(1)
	r.stats.DamageArea.Add(uint64(damage.Area()))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirty[display] = DirtyEvent{Frame: frame, Display: display, Damage: damage, ByType: byType}
}

// HwcEvents returns a copy of the retained disqualifications, oldest first.
func (r *Recorder) HwcEvents() []HwcEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.hwc)
}

// LastDirty returns the latest damage recorded for display.
func (r *Recorder) LastDirty(display node.ID) (DirtyEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.dirty[display]
	return e, ok
}

// Stats returns the running totals.
func (r *Recorder) Stats() *Stats { return &r.stats }

// Reset drops the retained events. Totals are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hwc = r.hwc[:0]
	clear(r.dirty)
}

// Report builds a report of the retained events.
func (r *Recorder) Report() Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := Report{Hwc: slices.Clone(r.hwc)}
	for _, id := range slices.Sorted(maps.Keys(r.dirty)) {
		e := r.dirty[id]
		d := DisplayReport{
			Display: id,
			Frame:   e.Frame,
			Rects:   e.Damage.Len(),
			Area:    e.Damage.Area(),
		}
		for _, typ := range slices.Sorted(maps.Keys(e.ByType)) {
			ta := TypeArea{Type: typ}
			for _, rc := range e.ByType[typ] {
				ta.Nodes++
				ta.Area += rc.Area()
			}
			d.Types = append(d.Types, ta)
		}
		rep.Displays = append(rep.Displays, d)
	}
	return rep
}

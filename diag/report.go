// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package diag

import (
	"bufio"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/node"
)

// Report is a point-in-time view of a Recorder.
type Report struct {
	Displays []DisplayReport // ascending display id
	Hwc      []HwcEvent      // oldest first
}

// DisplayReport summarizes the latest damage of one display.
type DisplayReport struct {
	Display node.ID
	Frame   uint64
	Rects   int
	Area    int
	Types   []TypeArea // ascending type, empty without debug dirty types
}

// TypeArea is the damage merged under one dirty type. Area sums the per-node
// bounds, so overlapping contributions are counted more than once.
type TypeArea struct {
	Type  dirty.Type
	Nodes int
	Area  int
}

// Format writes the report as text. Numbers are grouped the way tag
// expects, for example 2,400,000 in English and 2.400.000 in German.
func (r Report) Format(w io.Writer, tag language.Tag) error {
	p := message.NewPrinter(tag)
	bw := bufio.NewWriter(w)
	for _, d := range r.Displays {
		p.Fprintf(bw, "display %v frame %d: %d rects, %d px damaged\n", d.Display, d.Frame, d.Rects, d.Area)
		for _, t := range d.Types {
			p.Fprintf(bw, "  %-13s %d nodes, %d px\n", t.Type, t.Nodes, t.Area)
		}
	}
	for _, e := range r.Hwc {
		p.Fprintf(bw, "frame %d: %q (%v) not a hardware layer: %v\n", e.Frame, e.Name, e.Node, e.Reason)
	}
	return bw.Flush()
}

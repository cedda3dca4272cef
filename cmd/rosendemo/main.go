// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command rosendemo runs the quick-prepare stage over a scripted scene and
// prints what every frame would repaint and compose in hardware.
//
// Usage:
//
//	rosendemo -scene scene.toml [-config rosen.toml] [-frames 3] [-v]
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"golang.org/x/text/language"

	"github.com/gogpu/rosen"
	"github.com/gogpu/rosen/diag"
	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/params"
	"github.com/gogpu/rosen/prepare"
)

func main() {
	var (
		scenePath  = flag.String("scene", "", "scene file (TOML)")
		configPath = flag.String("config", "", "configuration file (TOML)")
		frames     = flag.Int("frames", 0, "frames to run; 0 runs the scripted frames plus one")
		lang       = flag.String("lang", "en", "report language (BCP 47)")
		verbose    = flag.Bool("v", false, "log per-frame decisions")
	)
	flag.Parse()

	if *scenePath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		rosen.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg := prepare.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = rosen.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	tag, err := language.Parse(*lang)
	if err != nil {
		log.Fatalf("Invalid language %q: %v", *lang, err)
	}

	f, err := os.Open(*scenePath)
	if err != nil {
		log.Fatalf("Failed to open scene: %v", err)
	}
	scene, err := decodeScene(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to read scene: %v", err)
	}

	if err := run(os.Stdout, scene, cfg, *frames, tag); err != nil {
		log.Fatal(err)
	}
}

// run builds the scene and renders n frames, writing a summary per frame.
func run(w io.Writer, scene *sceneFile, cfg prepare.Config, n int, tag language.Tag) error {
	tree := node.NewTree()
	screens, err := scene.build(tree)
	if err != nil {
		return err
	}
	if n <= 0 {
		n = len(scene.Frame) + 1
	}

	rec := diag.NewRecorder()
	c := rosen.New(tree, rosen.WithConfig(cfg), rosen.WithRecorder(rec))
	for i := range n {
		if i > 0 {
			scene.apply(tree, i-1)
		}
		snap, err := c.RenderFrame(screens)
		if err != nil {
			fmt.Fprintf(w, "frame %d: %v\n", i+1, err)
		}
		printFrame(w, i+1, snap)
		if err := rec.Report().Format(w, tag); err != nil {
			return err
		}
		rec.Reset()
	}
	return nil
}

func printFrame(w io.Writer, frame int, snap *params.Snapshot) {
	fmt.Fprintf(w, "== frame %d ==\n", frame)
	for _, id := range snap.Displays() {
		d, _ := snap.Display(id)
		state := "prepared"
		if d.Skipped {
			state = "skipped"
		}
		fmt.Fprintf(w, "display %v %s: damage %v\n", id, state, d.Dirty.Current)
		for _, s := range d.Surfaces {
			fmt.Fprintf(w, "  %-12s z=%-3d dst=%v visible=%d px", s.Name, s.ZOrder, s.DstRect, s.VisibleRegion.Area())
			if s.Occluded {
				fmt.Fprint(w, " occluded")
			}
			if s.HardwareForcedDisabled {
				fmt.Fprintf(w, " gpu(%v)", s.Reason)
			}
			fmt.Fprintln(w)
		}
		for _, l := range d.Layers {
			fmt.Fprintf(w, "  layer %d: %s %v <- %v %dx%d\n", l.Z, l.Name, l.Dst, l.Src, l.Size.Width, l.Size.Height)
		}
	}
}

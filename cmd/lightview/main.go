// Command lightview is an interactive terminal view of a lit terrain slice.
//
// Arrows move the cursor, PgUp/PgDn or +/- change layer, b/g/x place an
// opaque block, place glass or clear the voxel, l adds a white light and u
// removes the last one. o carves an air sphere and O fills an opaque one
// around the cursor. s loads the chunks around the cursor and drops the
// rest, keeping their edits. q or Esc quits.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/gekko3d/voxlight"
)

func main() {
	configPath := flag.String("config", "", "YAML config file; built-in defaults when empty")
	layer := flag.Int("layer", -1, "initial y layer; terrain base when negative")
	flag.Parse()

	cfg := voxlight.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = voxlight.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	// the terminal owns stdout while the viewer runs
	logger := voxlight.NewWriterLogger(cfg.Log.Prefix, cfg.Log.Debug, io.Discard, os.Stderr)

	engine, w := voxlight.NewTerrainEngine(cfg, logger)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	y := *layer
	if y < 0 {
		y = cfg.Terrain.Base
	}
	v := newViewer(screen, engine, w, y)
	// edits in chunks streamed out are kept for when they come back
	v.source = voxlight.NewGeometryCache(voxlight.TerrainFiller(cfg.Terrain.Params()))
	v.run()
}

// Command lightbake generates terrain, lights it and writes one horizontal
// slice of the result as a PNG.
package main

import (
	"flag"
	"image/png"
	"os"

	"github.com/gekko3d/voxlight"
	"github.com/gekko3d/voxlight/preview"
	"github.com/gekko3d/voxlight/voxel"
)

func main() {
	configPath := flag.String("config", "", "YAML config file; built-in defaults when empty")
	out := flag.String("out", "slice.png", "PNG file to write")
	layer := flag.Int("layer", -1, "y layer to render; terrain base when negative")
	scale := flag.Int("scale", 8, "pixels per voxel")
	debug := flag.Bool("debug", false, "Enable debug logging")

	type emitter struct {
		pos   voxel.Coordinates
		color voxel.Light
	}
	var emitters []emitter
	flag.Func("light", "emitter as x,y,z,r,g,b (repeatable)", func(s string) error {
		pos, color, err := voxlight.ParseLightSpec(s)
		if err != nil {
			return err
		}
		emitters = append(emitters, emitter{pos, color})
		return nil
	})
	flag.Parse()

	cfg := voxlight.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = voxlight.LoadConfig(*configPath)
		if err != nil {
			panic(err)
		}
	}
	if *debug {
		cfg.Log.Debug = true
	}
	logger := voxlight.NewConfigLogger(cfg.Log)

	engine, w := voxlight.NewTerrainEngine(cfg, logger)
	for _, em := range emitters {
		src := engine.AddLight(em.pos, em.color)
		logger.Infof("light %s at %v", src.ID, src.Pos)
	}

	y := *layer
	if y < 0 {
		y = cfg.Terrain.Base
	}
	lo, hi, _ := w.Bounds()
	sky := cfg.SkyLight().Color()
	img := preview.Scale(preview.Slice(w, lo, hi, y, sky), *scale)

	f, err := os.Create(*out)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}

	logger.Infof("wrote layer %d to %s (%dx%d)", y, *out, img.Bounds().Dx(), img.Bounds().Dy())
	logger.Infof("\n%s", engine.Profiler().GetStatsString())
}

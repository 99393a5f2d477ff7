package voxlight

import (
	"github.com/gekko3d/voxlight/terrain"
	"github.com/gekko3d/voxlight/voxel"
	"github.com/gekko3d/voxlight/world"
)

// NewTerrainEngine loads every chunk covering cfg.Terrain, fills them with
// generated terrain and seeds the sky over them.
func NewTerrainEngine(cfg Config, logger Logger) (*Engine, *world.Chunked) {
	t := cfg.Terrain
	w := world.NewChunked(true)

	loKey, _, _, _ := world.ChunkKey(voxel.C(0, 0, 0))
	hiKey, _, _, _ := world.ChunkKey(voxel.C(t.Width-1, t.Height-1, t.Depth-1))
	for kx := loKey[0]; kx <= hiKey[0]; kx++ {
		for ky := loKey[1]; ky <= hiKey[1]; ky++ {
			for kz := loKey[2]; kz <= hiKey[2]; kz++ {
				w.LoadChunk([3]int{kx, ky, kz})
			}
		}
	}

	e := NewEngine(w, cfg, logger)
	lo, hi, _ := w.Bounds()

	e.begin("terrain")
	solid := terrain.New(t.Params()).Generate(w, lo, hi)
	e.profiler.EndScope("terrain")
	e.profiler.SetCount("terrain.solid", solid)
	e.log.Infof("terrain: %d solid voxels in %d chunks", solid, len(w.Keys()))

	stats := e.RelightSky(lo, hi)
	e.log.Infof("sky: %d voxels lit from %d seeds", stats.Updated, stats.Seeds)
	return e, w
}

// TerrainFiller generates terrain into each chunk handed to it, for use
// with Engine.Stream.
func TerrainFiller(p terrain.Params) ChunkFiller {
	gen := terrain.New(p)
	return func(w *world.Chunked, key [3]int) {
		lo, hi := world.ChunkBounds(key)
		gen.Generate(w, lo, hi)
	}
}

package voxlight

import (
	"testing"

	"github.com/gekko3d/voxlight/terrain"
	"github.com/gekko3d/voxlight/voxel"
	"github.com/gekko3d/voxlight/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTerrainEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Terrain.Width, cfg.Terrain.Height, cfg.Terrain.Depth = 40, 32, 8
	cfg.Terrain.Base = 12
	cfg.Terrain.Amplitude = 3
	cfg.Terrain.Caves = false

	e, w := NewTerrainEngine(cfg, nil)
	assert.Equal(t, [][3]int{{0, 0, 0}, {1, 0, 0}}, w.Keys())
	assert.Positive(t, e.Profiler().Count("terrain.solid"))

	// open sky at the top, solid rock at the bottom
	top := w.Light(voxel.C(5, 31, 5))
	assert.Equal(t, uint8(255), top[voxel.Sky])
	assert.Equal(t, voxel.Opaque, w.Opacity(voxel.C(5, 0, 5)))
	assert.True(t, w.Light(voxel.C(5, 0, 5)).IsZero())

	src := e.AddLight(voxel.C(5, 30, 5), voxel.RGB(255, 0, 0))
	got := w.Light(src.Pos)
	require.Equal(t, uint8(255), got[voxel.R])
	assert.Equal(t, uint8(255), got[voxel.Sky])
}

func TestTerrainFillerStreams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Terrain.Base = 12
	cfg.Terrain.Amplitude = 3
	w := world.NewChunked(true)
	e := NewEngine(w, cfg, nil)

	loaded, _, err := e.Stream(voxel.C(-10, 0, 10), 0, TerrainFiller(cfg.Terrain.Params()))
	require.NoError(t, err)
	require.Equal(t, [][3]int{{-1, 0, 0}}, loaded)

	gen := terrain.New(cfg.Terrain.Params())
	for _, c := range []voxel.Coordinates{voxel.C(-10, 0, 10), voxel.C(-1, 8, 31), voxel.C(-32, 14, 0)} {
		assert.Equal(t, gen.Opacity(c), w.Opacity(c), "%v", c)
	}
	top := w.Light(voxel.C(-10, 31, 10))
	assert.Equal(t, uint8(255), top[voxel.Sky])
}

func TestParseLightSpec(t *testing.T) {
	pos, l, err := ParseLightSpec("1, -2,3,255,0,16")
	require.NoError(t, err)
	assert.Equal(t, voxel.C(1, -2, 3), pos)
	assert.Equal(t, voxel.RGB(255, 0, 16), l)

	for _, bad := range []string{"", "1,2,3", "a,2,3,4,5,6", "1,2,3,256,0,0"} {
		_, _, err := ParseLightSpec(bad)
		assert.Error(t, err, bad)
	}
}

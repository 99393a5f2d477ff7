package voxlight

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gekko3d/voxlight/volume"
	"github.com/gekko3d/voxlight/voxel"
	"github.com/gekko3d/voxlight/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func darkConfig() Config {
	cfg := DefaultConfig()
	cfg.Sky.Enabled = false
	return cfg
}

func skyConfig(sky [4]uint8) Config {
	cfg := DefaultConfig()
	cfg.Sky.Color = sky
	return cfg
}

func relightSky(t *testing.T, e *Engine) {
	t.Helper()
	lo, hi, ok := e.SkyBounds()
	require.True(t, ok)
	e.RelightSky(lo, hi)
}

func allDark(t *testing.T, g *world.Grid) {
	t.Helper()
	for i, b := range g.Lightmap().AsBytes() {
		require.Zero(t, b, "byte %d", i)
	}
}

func TestEngine_AddThenRemoveLightLeavesDarkness(t *testing.T) {
	g := world.NewGrid(7, 7, 7, false)
	e := NewEngine(g, darkConfig(), nil)

	src := e.AddLight(voxel.C(3, 3, 3), voxel.RGB(255, 128, 64))
	assert.Equal(t, voxel.RGB(255, 128, 64), g.Light(voxel.C(3, 3, 3)))
	assert.Equal(t, voxel.RGB(238, 111, 47), g.Light(voxel.C(4, 3, 3)))
	assert.Len(t, e.Lights(), 1)

	require.NoError(t, e.RemoveLight(src.ID))
	assert.Empty(t, e.Lights())
	allDark(t, g)
}

func TestEngine_RemoveUnknownLight(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("test", false, &buf, &buf)
	e := NewEngine(world.NewGrid(2, 2, 2, false), darkConfig(), logger)

	err := e.RemoveLight(uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLight))
	assert.Contains(t, buf.String(), "[test] WARN: remove light")
}

func TestEngine_RemoveLightReseedsSurvivors(t *testing.T) {
	g := world.NewGrid(5, 1, 1, false)
	cfg := darkConfig()
	cfg.Attenuation = 20
	e := NewEngine(g, cfg, nil)

	a := e.AddLight(voxel.C(0, 0, 0), voxel.RGB(100, 100, 100))
	e.AddLight(voxel.C(2, 0, 0), voxel.RGB(60, 60, 60))

	// the siphon from a also clears b; re-seeding brings b back
	require.NoError(t, e.RemoveLight(a.ID))
	assert.Equal(t, voxel.RGB(20, 20, 20), g.Light(voxel.C(0, 0, 0)))
	assert.Equal(t, voxel.RGB(40, 40, 40), g.Light(voxel.C(1, 0, 0)))
	assert.Equal(t, voxel.RGB(60, 60, 60), g.Light(voxel.C(2, 0, 0)))
	assert.Equal(t, voxel.RGB(20, 20, 20), g.Light(voxel.C(4, 0, 0)))
}

func TestEngine_ExactRemovalUnderSky(t *testing.T) {
	g := world.NewGrid(9, 5, 9, true)
	cfg := skyConfig([4]uint8{0, 0, 0, 255})
	cfg.ExactRemoval = true
	e := NewEngine(g, cfg, nil)
	relightSky(t, e)
	daylit := append([]byte(nil), g.Lightmap().AsBytes()...)

	src := e.AddLight(voxel.C(4, 1, 4), voxel.RGB(255, 0, 0))
	assert.Equal(t, voxel.Light{255, 0, 0, 255}, g.Light(voxel.C(4, 1, 4)))

	require.NoError(t, e.RemoveLight(src.ID))
	assert.Equal(t, daylit, g.Lightmap().AsBytes())
}

func TestEngine_RemoveLightUnderSkyRestoresDaylight(t *testing.T) {
	g := world.NewGrid(9, 5, 9, true)
	e := NewEngine(g, DefaultConfig(), nil)
	relightSky(t, e)
	daylit := append([]byte(nil), g.Lightmap().AsBytes()...)

	src := e.AddLight(voxel.C(4, 1, 4), voxel.RGB(255, 255, 255))
	assert.Equal(t, voxel.Light{255, 255, 255, 255}, g.Light(voxel.C(4, 1, 4)))

	require.NoError(t, e.RemoveLight(src.ID))
	assert.Equal(t, voxel.Light{200, 200, 180, 255}, g.Light(voxel.C(4, 1, 4)))
	assert.Equal(t, daylit, g.Lightmap().AsBytes())
}

func TestEngine_PlaceBlockUnderSkyMatchesFullRelight(t *testing.T) {
	for _, opacity := range []uint8{voxel.Opaque, 60} {
		build := func() (*world.Grid, *Engine) {
			g := world.NewGrid(9, 6, 9, true)
			g.Fill(voxel.C(0, 0, 0), voxel.C(8, 0, 8), voxel.Opaque)
			e := NewEngine(g, DefaultConfig(), nil)
			relightSky(t, e)
			e.AddLight(voxel.C(2, 1, 2), voxel.RGB(255, 0, 0))
			return g, e
		}

		g, e := build()
		require.NoError(t, e.PlaceBlock(voxel.C(4, 3, 4), opacity))
		require.NoError(t, e.PlaceBlock(voxel.C(2, 2, 2), opacity))

		want, ref := build()
		want.SetOpacity(voxel.C(4, 3, 4), opacity)
		want.SetOpacity(voxel.C(2, 2, 2), opacity)
		lo, hi, _ := ref.SkyBounds()
		ref.Relight(lo, hi)

		assert.Equal(t, want.Lightmap().AsBytes(), g.Lightmap().AsBytes(), "opacity %d", opacity)
	}
}

func TestEngine_EmittersNeverWriteSky(t *testing.T) {
	g := world.NewGrid(1, 1, 1, true)
	e := NewEngine(g, darkConfig(), nil)

	src := e.AddLight(voxel.C(0, 0, 0), voxel.Light{10, 20, 30, 40})
	assert.Equal(t, voxel.Light{10, 20, 30, 0}, src.Color)
	assert.Equal(t, voxel.Light{10, 20, 30, 0}, g.Light(voxel.C(0, 0, 0)))
}

func TestEngine_PlaceAndRemoveOpaqueBlockUnderSky(t *testing.T) {
	g := world.NewGrid(3, 5, 1, false)
	e := NewEngine(g, skyConfig([4]uint8{200, 200, 200, 255}), nil)
	relightSky(t, e)

	block := voxel.C(1, 3, 0)
	require.NoError(t, e.PlaceBlock(block, voxel.Opaque))
	assert.Equal(t, voxel.Opaque, g.Opacity(block))
	assert.True(t, g.Light(block).IsZero())
	for y := 0; y <= 2; y++ {
		assert.Equal(t, voxel.RGB(183, 183, 183), g.Light(voxel.C(1, y, 0)), "y=%d", y)
	}

	require.NoError(t, e.RemoveBlock(block))
	for y := 0; y < 5; y++ {
		assert.Equal(t, voxel.RGB(200, 200, 200), g.Light(voxel.C(1, y, 0)), "y=%d", y)
	}
}

func TestEngine_TranslucentBlockDimsColumn(t *testing.T) {
	g := world.NewGrid(1, 5, 1, false)
	e := NewEngine(g, skyConfig([4]uint8{200, 200, 200, 255}), nil)
	relightSky(t, e)

	require.NoError(t, e.PlaceBlock(voxel.C(0, 3, 0), 50))

	assert.Equal(t, voxel.RGB(200, 200, 200), g.Light(voxel.C(0, 4, 0)))
	for y := 0; y <= 3; y++ {
		assert.Equal(t, voxel.RGB(150, 150, 150), g.Light(voxel.C(0, y, 0)), "y=%d", y)
	}
}

func TestEngine_PlaceBlockBetweenLightAndWall(t *testing.T) {
	g := world.NewGrid(5, 1, 1, false)
	e := NewEngine(g, darkConfig(), nil)
	e.AddLight(voxel.C(0, 0, 0), voxel.RGB(255, 255, 255))

	require.NoError(t, e.PlaceBlock(voxel.C(2, 0, 0), voxel.Opaque))
	assert.Equal(t, voxel.RGB(238, 238, 238), g.Light(voxel.C(1, 0, 0)))
	assert.True(t, g.Light(voxel.C(3, 0, 0)).IsZero())

	require.NoError(t, e.RemoveBlock(voxel.C(2, 0, 0)))
	assert.Equal(t, voxel.RGB(204, 204, 204), g.Light(voxel.C(3, 0, 0)))
	assert.Equal(t, voxel.RGB(187, 187, 187), g.Light(voxel.C(4, 0, 0)))
}

type readOnly struct{ world.World }

func TestEngine_ReadOnlyWorld(t *testing.T) {
	e := NewEngine(readOnly{world.NewGrid(2, 2, 2, false)}, darkConfig(), nil)

	err := e.PlaceBlock(voxel.C(0, 0, 0), voxel.Opaque)
	assert.True(t, errors.Is(err, ErrReadOnlyWorld))
	err = e.RemoveBlock(voxel.C(0, 0, 0))
	assert.True(t, errors.Is(err, ErrReadOnlyWorld))
}

func TestEngine_RelightRestoresRegion(t *testing.T) {
	g := world.NewGrid(9, 1, 1, false)
	e := NewEngine(g, darkConfig(), nil)
	e.AddLight(voxel.C(0, 0, 0), voxel.RGB(255, 0, 0))
	e.AddLight(voxel.C(8, 0, 0), voxel.RGB(0, 0, 255))
	want := append([]byte(nil), g.Lightmap().AsBytes()...)

	// scribble over the middle, then rebuild it from its borders
	for x := 3; x <= 5; x++ {
		g.SetLight(voxel.C(x, 0, 0), voxel.RGB(1, 1, 1))
	}
	e.Relight(voxel.C(3, 0, 0), voxel.C(5, 0, 0))
	assert.Equal(t, want, g.Lightmap().AsBytes())

	// boxes are clipped to the world
	e.Relight(voxel.C(-100, -100, -100), voxel.C(100, 100, 100))
	assert.Equal(t, want, g.Lightmap().AsBytes())
}

func TestEngine_FillSphereOpensAndClosesShaft(t *testing.T) {
	g := world.NewGrid(12, 12, 12, true)
	g.Fill(voxel.C(0, 0, 0), voxel.C(11, 9, 11), voxel.Opaque)
	e := NewEngine(g, skyConfig([4]uint8{0, 0, 0, 255}), nil)
	relightSky(t, e)
	before := append([]byte(nil), g.Lightmap().AsBytes()...)
	require.True(t, g.Light(voxel.C(6, 5, 6)).IsZero())

	require.NoError(t, e.FillSphere(voxel.C(6, 8, 6), 3, 0))
	assert.Zero(t, g.Opacity(voxel.C(6, 5, 6)))
	assert.Equal(t, voxel.Light{0, 0, 0, 255}, g.Light(voxel.C(6, 5, 6)))
	assert.Equal(t, voxel.Light{0, 0, 0, 238}, g.Light(voxel.C(5, 5, 6)))

	require.NoError(t, e.Edit(voxel.C(0, 0, 0), voxel.C(11, 9, 11), func(dst volume.OpacitySetter) {
		volume.Box(dst, voxel.C(0, 0, 0), voxel.C(11, 11, 11), voxel.Opaque)
	}))
	// writes above the edit box are dropped
	assert.Zero(t, g.Opacity(voxel.C(6, 10, 6)))
	assert.Equal(t, before, g.Lightmap().AsBytes())
}

func TestEngine_EditNeedsWritableWorld(t *testing.T) {
	e := NewEngine(readOnly{world.NewGrid(2, 2, 2, false)}, darkConfig(), nil)
	err := e.FillSphere(voxel.C(0, 0, 0), 1, voxel.Opaque)
	assert.True(t, errors.Is(err, ErrReadOnlyWorld))
}

func TestEngine_AddLightAtWorldPosition(t *testing.T) {
	g := world.NewGrid(4, 4, 4, false)
	e := NewEngine(g, darkConfig(), nil)

	src := e.AddLightAt(mgl32.Vec3{0.25, 0.05, 0.31}, voxel.RGB(50, 50, 50))
	assert.Equal(t, voxel.C(2, 0, 3), src.Pos)
	centre := src.WorldPos(e.Config().VoxelSize)
	assert.InDelta(t, 0.25, centre.X(), 1e-6)
	assert.InDelta(t, 0.05, centre.Y(), 1e-6)
	assert.InDelta(t, 0.35, centre.Z(), 1e-6)
	got, ok := e.Light(src.ID)
	require.True(t, ok)
	assert.Equal(t, src, got)
}

func TestEngine_LightsAreSorted(t *testing.T) {
	e := NewEngine(world.NewGrid(4, 4, 4, false), darkConfig(), nil)
	for i := 0; i < 8; i++ {
		e.AddLight(voxel.C(i%4, 0, 0), voxel.RGB(10, 10, 10))
	}
	lights := e.Lights()
	require.Len(t, lights, 8)
	for i := 1; i < len(lights); i++ {
		assert.Negative(t, bytes.Compare(lights[i-1].ID[:], lights[i].ID[:]))
	}
}

func TestEngine_UploadsSkipUnchangedChunks(t *testing.T) {
	w := world.NewChunked(false)
	w.LoadChunk([3]int{0, 0, 0})
	w.LoadChunk([3]int{1, 0, 0})
	e := NewEngine(w, darkConfig(), nil)

	got := map[[3]int]int{}
	collect := func(key [3]int, data []byte) { got[key] = len(data) }

	// nothing has been uploaded yet
	assert.Equal(t, 2, e.Uploads(collect))
	assert.Equal(t, world.ChunkSize*world.ChunkSize*world.ChunkSize*3, got[[3]int{0, 0, 0}])

	clear(got)
	assert.Zero(t, e.Uploads(collect))

	e.AddLight(voxel.C(2, 2, 2), voxel.RGB(100, 100, 100))
	assert.Equal(t, 1, e.Uploads(collect))
	assert.Contains(t, got, [3]int{0, 0, 0})

	// dirty without a content change
	w.SetLight(voxel.C(40, 0, 0), voxel.Light{})
	assert.Zero(t, e.Uploads(collect))
}

func TestEngine_UploadsGrid(t *testing.T) {
	g := world.NewGrid(2, 2, 2, true)
	e := NewEngine(g, darkConfig(), nil)

	var last []byte
	collect := func(_ [3]int, data []byte) { last = data }
	assert.Equal(t, 1, e.Uploads(collect))
	assert.Len(t, last, 2*2*2*4)
	assert.Zero(t, e.Uploads(collect))

	e.AddLight(voxel.C(0, 0, 0), voxel.RGB(9, 9, 9))
	assert.Equal(t, 1, e.Uploads(collect))
	assert.Equal(t, byte(9), last[0])
}

func TestEngine_ProfilesAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("", true, &buf, &buf)
	e := NewEngine(world.NewGrid(3, 3, 3, false), darkConfig(), logger)

	e.AddLight(voxel.C(1, 1, 1), voxel.RGB(100, 100, 100))

	p := e.Profiler()
	assert.Equal(t, 27, p.Count("add_light.updated"))
	assert.Positive(t, p.Count("add_light.visited"))
	assert.Contains(t, p.GetStatsString(), "add_light")
	assert.True(t, strings.Contains(buf.String(), "DEBUG: add_light: visited="))
}

func floorFiller(w *world.Chunked, key [3]int) {
	lo, hi := world.ChunkBounds(key)
	for z := lo.Z; z <= hi.Z; z++ {
		for x := lo.X; x <= hi.X; x++ {
			w.SetOpacity(voxel.C(x, lo.Y, z), voxel.Opaque)
		}
	}
}

func TestEngine_StreamLightsNewChunks(t *testing.T) {
	w := world.NewChunked(true)
	e := NewEngine(w, skyConfig([4]uint8{0, 0, 0, 255}), nil)
	daylit := voxel.Light{0, 0, 0, 255}

	loaded, unloaded, err := e.Stream(voxel.C(0, 0, 0), 0, ChunkFiller(floorFiller))
	require.NoError(t, err)
	assert.Equal(t, [][3]int{{0, 0, 0}}, loaded)
	assert.Empty(t, unloaded)
	assert.Equal(t, daylit, w.Light(voxel.C(3, 1, 3)))
	assert.True(t, w.Light(voxel.C(3, 0, 3)).IsZero())

	src := e.AddLight(voxel.C(5, 5, 5), voxel.RGB(255, 0, 0))

	loaded, unloaded, err = e.Stream(voxel.C(40, 5, 5), 0, ChunkFiller(floorFiller))
	require.NoError(t, err)
	assert.Equal(t, [][3]int{{1, 0, 0}}, loaded)
	assert.Equal(t, [][3]int{{0, 0, 0}}, unloaded)
	assert.True(t, w.Light(voxel.C(5, 5, 5)).IsZero())
	assert.Equal(t, daylit, w.Light(voxel.C(40, 5, 5)))
	_, ok := e.Light(src.ID)
	assert.True(t, ok)

	// coming back relights the emitter
	_, _, err = e.Stream(voxel.C(0, 0, 0), 0, ChunkFiller(floorFiller))
	require.NoError(t, err)
	assert.Equal(t, voxel.Light{255, 0, 0, 255}, w.Light(voxel.C(5, 5, 5)))
	assert.Equal(t, voxel.Light{238, 0, 0, 255}, w.Light(voxel.C(6, 5, 5)))
	assert.Positive(t, e.Profiler().Count("stream.updated"))
}

func TestEngine_StreamRoofShadowsChunkBelow(t *testing.T) {
	w := world.NewChunked(true)
	e := NewEngine(w, skyConfig([4]uint8{0, 0, 0, 255}), nil)
	roof := ChunkFiller(func(w *world.Chunked, key [3]int) {
		if key[1] == 1 {
			lo, hi := world.ChunkBounds(key)
			volume.Box(w, lo, hi, voxel.Opaque)
		}
	})

	_, _, err := e.Stream(voxel.C(0, 0, 0), 0, roof)
	require.NoError(t, err)
	assert.Equal(t, voxel.Light{0, 0, 0, 255}, w.Light(voxel.C(5, 5, 5)))

	loaded, _, err := e.Stream(voxel.C(0, 32, 0), 1, roof)
	require.NoError(t, err)
	assert.Len(t, loaded, 26)
	assert.Equal(t, voxel.Opaque, w.Opacity(voxel.C(5, 40, 5)))
	assert.True(t, w.Light(voxel.C(5, 5, 5)).IsZero())
	assert.True(t, w.Light(voxel.C(-20, 31, 40)).IsZero())
	assert.Equal(t, voxel.Light{0, 0, 0, 255}, w.Light(voxel.C(5, 80, 5)))
}

func TestEngine_StreamNeedsChunkedWorld(t *testing.T) {
	e := NewEngine(world.NewGrid(2, 2, 2, false), darkConfig(), nil)
	_, _, err := e.Stream(voxel.C(0, 0, 0), 1, nil)
	assert.True(t, errors.Is(err, ErrNotChunked))
}

package world

import (
	"github.com/gekko3d/voxlight/lightmap"
	"github.com/gekko3d/voxlight/volume"
	"github.com/gekko3d/voxlight/voxel"
)

// Grid is a single bounded region: one lightmap plus a dense opacity field,
// placed at Origin in world space.
type Grid struct {
	Origin  voxel.Coordinates
	lm      *lightmap.Lightmap
	opacity []uint8
}

// NewGrid creates a transparent, unlit w*h*d region at the world origin.
func NewGrid(w, h, d int, withSky bool) *Grid {
	var lm *lightmap.Lightmap
	if withSky {
		lm = lightmap.NewWithSky(w, h, d)
	} else {
		lm = lightmap.New(w, h, d)
	}
	return &Grid{
		lm:      lm,
		opacity: make([]uint8, w*h*d),
	}
}

// NewGridFunc creates a grid whose opacity is initialised from fn(x, y, z) in local coordinates.
func NewGridFunc(w, h, d int, withSky bool, fn func(x, y, z int) uint8) *Grid {
	g := NewGrid(w, h, d, withSky)
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g.opacity[g.lm.Index(x, y, z)] = fn(x, y, z)
			}
		}
	}
	return g
}

func (g *Grid) Lightmap() *lightmap.Lightmap {
	return g.lm
}

func (g *Grid) local(c voxel.Coordinates) (x, y, z int, ok bool) {
	x, y, z = c.X-g.Origin.X, c.Y-g.Origin.Y, c.Z-g.Origin.Z
	return x, y, z, g.lm.InBounds(x, y, z)
}

func (g *Grid) Contains(c voxel.Coordinates) bool {
	_, _, _, ok := g.local(c)
	return ok
}

func (g *Grid) Opacity(c voxel.Coordinates) uint8 {
	x, y, z, ok := g.local(c)
	if !ok {
		return voxel.Opaque
	}
	return g.opacity[g.lm.Index(x, y, z)]
}

func (g *Grid) SetOpacity(c voxel.Coordinates, opacity uint8) {
	x, y, z, ok := g.local(c)
	if !ok {
		return
	}
	g.opacity[g.lm.Index(x, y, z)] = opacity
}

func (g *Grid) Light(c voxel.Coordinates) voxel.Light {
	x, y, z, ok := g.local(c)
	if !ok {
		return voxel.Light{}
	}
	return g.lm.Get(x, y, z)
}

func (g *Grid) SetLight(c voxel.Coordinates, l voxel.Light) {
	x, y, z, ok := g.local(c)
	if !ok {
		return
	}
	g.lm.Set(x, y, z, l)
}

// Bounds returns the inclusive world-space extent of the grid.
func (g *Grid) Bounds() (lo, hi voxel.Coordinates, ok bool) {
	hi = g.Origin.Add(voxel.C(g.lm.Width()-1, g.lm.Height()-1, g.lm.Depth()-1))
	return g.Origin, hi, true
}

// Fill sets the opacity of every voxel in the inclusive box [lo, hi].
func (g *Grid) Fill(lo, hi voxel.Coordinates, opacity uint8) {
	volume.Box(g, lo, hi, opacity)
}

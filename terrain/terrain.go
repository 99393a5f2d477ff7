// Package terrain fills a voxel world with a noise heightmap so lighting can
// be exercised on something other than boxes.
package terrain

import (
	"math"

	"github.com/gekko3d/voxlight/volume"
	"github.com/gekko3d/voxlight/voxel"
	"github.com/ojrac/opensimplex-go"
)

const (
	lacunarity  = 1.5
	persistence = 0.5

	caveScale     = 8.0
	caveThreshold = 0.1
	// caves stay this far below the surface
	caveRoof = 3

	// WaterOpacity is written for water voxels between the ground and WaterLevel.
	WaterOpacity uint8 = 40
)

type Params struct {
	Seed      int64
	Base      int
	Amplitude float64
	Scale     float64
	Octaves   int
	// WaterLevel fills air at or below this height with translucent water.
	// Values below Base-Amplitude leave the world dry.
	WaterLevel int
	Caves      bool
}

type Generator struct {
	p     Params
	noise opensimplex.Noise
}

func New(p Params) *Generator {
	if p.Octaves < 1 {
		p.Octaves = 1
	}
	if p.Scale <= 0 {
		p.Scale = 1
	}
	return &Generator{p: p, noise: opensimplex.New(p.Seed)}
}

// Height returns the y of the topmost ground voxel in column (x, z).
func (g *Generator) Height(x, z int) int {
	val := 0.0
	amplitude := g.p.Amplitude
	x1, z1 := float64(x)*g.p.Scale, float64(z)*g.p.Scale

	for i := 0; i < g.p.Octaves; i++ {
		val += g.noise.Eval2(x1, z1) * amplitude
		x1 *= lacunarity
		z1 *= lacunarity
		amplitude *= persistence
	}
	return g.p.Base + int(math.Round(val))
}

func (g *Generator) cave(x, y, z int) bool {
	v := g.noise.Eval3(float64(x)/caveScale, float64(y)/caveScale, float64(z)/caveScale)
	return v > caveThreshold
}

// Opacity is the generated opacity of a single voxel.
func (g *Generator) Opacity(c voxel.Coordinates) uint8 {
	return g.opacity(c, g.Height(c.X, c.Z))
}

func (g *Generator) opacity(c voxel.Coordinates, h int) uint8 {
	switch {
	case c.Y > h && c.Y <= g.p.WaterLevel:
		return WaterOpacity
	case c.Y > h:
		return 0
	case g.p.Caves && c.Y < h-caveRoof && g.cave(c.X, c.Y, c.Z):
		return 0
	default:
		return voxel.Opaque
	}
}

// Generate writes the opacity of every voxel in the inclusive box [lo, hi]
// into dst and returns how many were not transparent.
func (g *Generator) Generate(dst volume.OpacitySetter, lo, hi voxel.Coordinates) int {
	n := 0
	for x := lo.X; x <= hi.X; x++ {
		for z := lo.Z; z <= hi.Z; z++ {
			h := g.Height(x, z)
			for y := lo.Y; y <= hi.Y; y++ {
				c := voxel.C(x, y, z)
				op := g.opacity(c, h)
				dst.SetOpacity(c, op)
				if op != 0 {
					n++
				}
			}
		}
	}
	return n
}

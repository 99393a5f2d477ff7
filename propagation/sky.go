package propagation

import (
	"github.com/gekko3d/voxlight/voxel"
	"github.com/gekko3d/voxlight/world"
)

// PropagateSky drops sky light down every (x, z) column of the inclusive box
// [lo, hi] and then bleeds it sideways with Propagate.
//
// Within a column the running intensity loses only each voxel's opacity, with
// no per-step attenuation. A fully opaque voxel, or an intensity that has
// decayed to black, ends the column.
func PropagateSky(w world.World, lo, hi voxel.Coordinates, sky voxel.Light, attenuation uint8) Stats {
	var seeds []voxel.Seed

	for x := lo.X; x <= hi.X; x++ {
		for z := lo.Z; z <= hi.Z; z++ {
			run := sky
			for y := hi.Y; y >= lo.Y; y-- {
				c := voxel.C(x, y, z)
				opacity := w.Opacity(c)
				if opacity == voxel.Opaque {
					break
				}

				run = run.Sub(opacity)
				if run.IsZero() {
					break
				}

				seeds = append(seeds, voxel.Seed{Pos: c, Light: run})
			}
		}
	}

	return Propagate(w, seeds, attenuation)
}

// UnpropagateSky casts the shadow of a voxel that just became opaque at
// placed: the lit, non-opaque run directly beneath it is removed with
// Unpropagate, which also refills from any other opening.
func UnpropagateSky(w world.World, placed voxel.Coordinates, attenuation uint8) Stats {
	return Unpropagate(w, ShadowColumn(w, placed), attenuation)
}

// ShadowColumn returns the voxels below placed that lose direct sky light:
// the walk stops at the first opaque or unlit voxel.
func ShadowColumn(w world.World, placed voxel.Coordinates) []voxel.Coordinates {
	var column []voxel.Coordinates
	for c := placed.Down(); ; c = c.Down() {
		if w.Opacity(c) == voxel.Opaque {
			break
		}
		if w.Light(c).IsZero() {
			break
		}
		column = append(column, c)
	}
	return column
}

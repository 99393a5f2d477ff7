package volume

import (
	"math"

	"github.com/gekko3d/voxlight/voxel"
	"github.com/go-gl/mathgl/mgl32"
)

// OpacitySetter is anything that accepts per-voxel opacity writes.
type OpacitySetter interface {
	SetOpacity(c voxel.Coordinates, opacity uint8)
}

// Sphere fills a sphere with the given opacity
func Sphere(dst OpacitySetter, center mgl32.Vec3, radius float32, opacity uint8) {
	r2 := radius * radius
	minBound := [3]int{
		int(math.Floor(float64(center.X() - radius))),
		int(math.Floor(float64(center.Y() - radius))),
		int(math.Floor(float64(center.Z() - radius))),
	}
	maxBound := [3]int{
		int(math.Ceil(float64(center.X() + radius))),
		int(math.Ceil(float64(center.Y() + radius))),
		int(math.Ceil(float64(center.Z() + radius))),
	}

	for x := minBound[0]; x <= maxBound[0]; x++ {
		for y := minBound[1]; y <= maxBound[1]; y++ {
			for z := minBound[2]; z <= maxBound[2]; z++ {
				dx := float32(x) - center.X() + 0.5
				dy := float32(y) - center.Y() + 0.5
				dz := float32(z) - center.Z() + 0.5
				if dx*dx+dy*dy+dz*dz <= r2 {
					dst.SetOpacity(voxel.C(x, y, z), opacity)
				}
			}
		}
	}
}

// Box fills the inclusive voxel box [minC, maxC] with the given opacity.
func Box(dst OpacitySetter, minC, maxC voxel.Coordinates, opacity uint8) {
	for x := minC.X; x <= maxC.X; x++ {
		for y := minC.Y; y <= maxC.Y; y++ {
			for z := minC.Z; z <= maxC.Z; z++ {
				dst.SetOpacity(voxel.C(x, y, z), opacity)
			}
		}
	}
}

package voxel

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Coordinates identifies a single voxel in world space.
type Coordinates struct {
	X, Y, Z int
}

func C(x, y, z int) Coordinates {
	return Coordinates{X: x, Y: y, Z: z}
}

func (c Coordinates) Add(o Coordinates) Coordinates {
	return Coordinates{c.X + o.X, c.Y + o.Y, c.Z + o.Z}
}

func (c Coordinates) Sub(o Coordinates) Coordinates {
	return Coordinates{c.X - o.X, c.Y - o.Y, c.Z - o.Z}
}

// Down returns the voxel directly below c.
func (c Coordinates) Down() Coordinates {
	return Coordinates{c.X, c.Y - 1, c.Z}
}

// Neighbors returns the six face-adjacent voxels: +X, -X, +Y, -Y, +Z, -Z.
func (c Coordinates) Neighbors() [6]Coordinates {
	return [6]Coordinates{
		{c.X + 1, c.Y, c.Z},
		{c.X - 1, c.Y, c.Z},
		{c.X, c.Y + 1, c.Z},
		{c.X, c.Y - 1, c.Z},
		{c.X, c.Y, c.Z + 1},
		{c.X, c.Y, c.Z - 1},
	}
}

// Array returns the coordinates as a [3]int key, the form used by chunk maps.
func (c Coordinates) Array() [3]int {
	return [3]int{c.X, c.Y, c.Z}
}

// FromWorld converts a world-space position into the voxel containing it.
// Negative positions floor toward negative infinity.
func FromWorld(pos mgl32.Vec3, voxelSize float32) Coordinates {
	if voxelSize <= 0 {
		voxelSize = 1
	}
	return Coordinates{
		X: int(math.Floor(float64(pos.X() / voxelSize))),
		Y: int(math.Floor(float64(pos.Y() / voxelSize))),
		Z: int(math.Floor(float64(pos.Z() / voxelSize))),
	}
}

// Center returns the world-space centre of the voxel.
func (c Coordinates) Center(voxelSize float32) mgl32.Vec3 {
	return mgl32.Vec3{
		(float32(c.X) + 0.5) * voxelSize,
		(float32(c.Y) + 0.5) * voxelSize,
		(float32(c.Z) + 0.5) * voxelSize,
	}
}

// FloorDiv splits a global coordinate into a chunk index and a local offset in [0, size).
func FloorDiv(v, size int) (chunk, local int) {
	chunk, local = v/size, v%size
	if local < 0 {
		local += size
		chunk--
	}
	return chunk, local
}

// Package world defines the voxel queries the lighting algorithms consume and
// the in-memory worlds that implement them.
package world

import "github.com/gekko3d/voxlight/voxel"

// World is the contract between the lighting algorithms and voxel storage.
//
// All three methods must be total. Coordinates outside any loaded storage
// report voxel.Opaque so flood fills stop at the edge without bounds checks,
// read as black, and ignore writes.
type World interface {
	Opacity(c voxel.Coordinates) uint8
	Light(c voxel.Coordinates) voxel.Light
	SetLight(c voxel.Coordinates, l voxel.Light)
}

// OpacityWriter is a World whose geometry can be edited.
type OpacityWriter interface {
	World
	SetOpacity(c voxel.Coordinates, opacity uint8)
}

// Bounded is a World with a finite inclusive extent.
type Bounded interface {
	Bounds() (lo, hi voxel.Coordinates, ok bool)
}

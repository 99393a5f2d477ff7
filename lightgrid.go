package voxlight

import (
	"slices"

	"github.com/gekko3d/voxlight/voxel"
	"github.com/google/uuid"
)

// LightGrid buckets emitters into cubic cells so box queries only visit
// emitters near the box.
type LightGrid struct {
	cellSize int
	cells    map[[3]int][]uuid.UUID
}

func NewLightGrid(cellSize int) *LightGrid {
	if cellSize < 1 {
		cellSize = 1
	}
	return &LightGrid{
		cellSize: cellSize,
		cells:    make(map[[3]int][]uuid.UUID),
	}
}

func (grid *LightGrid) Clear() {
	clear(grid.cells)
}

func (grid *LightGrid) cellIndex(c voxel.Coordinates) [3]int {
	x, _ := voxel.FloorDiv(c.X, grid.cellSize)
	y, _ := voxel.FloorDiv(c.Y, grid.cellSize)
	z, _ := voxel.FloorDiv(c.Z, grid.cellSize)
	return [3]int{x, y, z}
}

func (grid *LightGrid) Insert(id uuid.UUID, pos voxel.Coordinates) {
	key := grid.cellIndex(pos)
	grid.cells[key] = append(grid.cells[key], id)
}

func (grid *LightGrid) Remove(id uuid.UUID, pos voxel.Coordinates) {
	key := grid.cellIndex(pos)
	ids := slices.DeleteFunc(grid.cells[key], func(other uuid.UUID) bool { return other == id })
	if len(ids) == 0 {
		delete(grid.cells, key)
		return
	}
	grid.cells[key] = ids
}

// QueryBox returns every emitter in a cell the inclusive box touches.
// Callers filter by exact position.
func (grid *LightGrid) QueryBox(lo, hi voxel.Coordinates) []uuid.UUID {
	minC, maxC := grid.cellIndex(lo), grid.cellIndex(hi)

	var results []uuid.UUID
	for x := minC[0]; x <= maxC[0]; x++ {
		for y := minC[1]; y <= maxC[1]; y++ {
			for z := minC[2]; z <= maxC[2]; z++ {
				results = append(results, grid.cells[[3]int{x, y, z}]...)
			}
		}
	}
	return results
}

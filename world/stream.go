package world

import (
	"errors"
	"fmt"

	"github.com/gekko3d/voxlight/voxel"
)

var ErrChunkNotLoaded = errors.New("chunk not loaded")

// Stream keeps exactly the chunks within radius chunks of center (a cube,
// not a sphere) loaded. evict, when not nil, sees each chunk just before it
// is unloaded. It returns the keys it loaded and unloaded, sorted.
func (w *Chunked) Stream(center voxel.Coordinates, radius int, evict func(key [3]int)) (loaded, unloaded [][3]int) {
	if radius < 0 {
		radius = 0
	}
	c, _, _, _ := ChunkKey(center)

	shouldBeLoaded := make(map[[3]int]bool)
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			for dz := -radius; dz <= radius; dz++ {
				shouldBeLoaded[[3]int{c[0] + dx, c[1] + dy, c[2] + dz}] = true
			}
		}
	}

	for key := range shouldBeLoaded {
		if !w.IsLoaded(key) {
			w.LoadChunk(key)
			loaded = append(loaded, key)
		}
	}
	for key := range w.chunks {
		if !shouldBeLoaded[key] {
			unloaded = append(unloaded, key)
		}
	}
	sortKeys(unloaded)
	for _, key := range unloaded {
		if evict != nil {
			evict(key)
		}
		w.UnloadChunk(key)
	}

	sortKeys(loaded)
	return loaded, unloaded
}

// ChunkBounds returns the inclusive voxel extent of a chunk.
func ChunkBounds(key [3]int) (lo, hi voxel.Coordinates) {
	lo = voxel.C(key[0]*ChunkSize, key[1]*ChunkSize, key[2]*ChunkSize)
	return lo, lo.Add(voxel.C(ChunkSize-1, ChunkSize-1, ChunkSize-1))
}

// Geometry returns the compressed opacity of a loaded chunk.
func (w *Chunked) Geometry(key [3]int) ([]byte, error) {
	if !w.IsLoaded(key) {
		return nil, fmt.Errorf("geometry of %v: %w", key, ErrChunkNotLoaded)
	}
	return w.opacity.EncodeSector(key)
}

// SetGeometry replaces a loaded chunk's opacity with data from Geometry.
// Light is left as it was; callers relight the chunk.
func (w *Chunked) SetGeometry(key [3]int, data []byte) error {
	if !w.IsLoaded(key) {
		return fmt.Errorf("set geometry of %v: %w", key, ErrChunkNotLoaded)
	}
	if err := w.opacity.DecodeSector(key, data); err != nil {
		return fmt.Errorf("set geometry of %v: %w", key, err)
	}
	return nil
}

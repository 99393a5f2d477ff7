package world

import (
	"sort"

	"github.com/gekko3d/voxlight/lightmap"
	"github.com/gekko3d/voxlight/volume"
	"github.com/gekko3d/voxlight/voxel"
)

// ChunkSize is the edge length of a chunk, matching one opacity sector.
const ChunkSize = volume.SectorSize

// Chunk is a loaded ChunkSize^3 region with its own lightmap.
type Chunk struct {
	Key   [3]int
	Light *lightmap.Lightmap
}

// Origin returns the world coordinate of the chunk's (0,0,0) voxel.
func (c *Chunk) Origin() voxel.Coordinates {
	lo, _ := ChunkBounds(c.Key)
	return lo
}

// Chunked is an unbounded world made of independently loaded chunks.
// Voxels in chunks that are not loaded are opaque and unlit.
type Chunked struct {
	WithSky bool

	chunks  map[[3]int]*Chunk
	opacity *volume.OpacityMap
	dirty   map[[3]int]bool
}

func NewChunked(withSky bool) *Chunked {
	return &Chunked{
		WithSky: withSky,
		chunks:  make(map[[3]int]*Chunk),
		opacity: volume.NewOpacityMap(),
		dirty:   make(map[[3]int]bool),
	}
}

// ChunkKey returns the chunk containing c and c's offset inside it.
func ChunkKey(c voxel.Coordinates) (key [3]int, x, y, z int) {
	kx, x := voxel.FloorDiv(c.X, ChunkSize)
	ky, y := voxel.FloorDiv(c.Y, ChunkSize)
	kz, z := voxel.FloorDiv(c.Z, ChunkSize)
	return [3]int{kx, ky, kz}, x, y, z
}

// LoadChunk makes a chunk addressable. Loading an already loaded chunk returns it unchanged.
func (w *Chunked) LoadChunk(key [3]int) *Chunk {
	if ch, ok := w.chunks[key]; ok {
		return ch
	}
	var lm *lightmap.Lightmap
	if w.WithSky {
		lm = lightmap.NewWithSky(ChunkSize, ChunkSize, ChunkSize)
	} else {
		lm = lightmap.New(ChunkSize, ChunkSize, ChunkSize)
	}
	ch := &Chunk{Key: key, Light: lm}
	w.chunks[key] = ch
	w.dirty[key] = true
	return ch
}

// UnloadChunk drops a chunk together with its geometry and light.
func (w *Chunked) UnloadChunk(key [3]int) {
	delete(w.chunks, key)
	delete(w.dirty, key)
	w.opacity.DropSector(key)
}

func (w *Chunked) IsLoaded(key [3]int) bool {
	_, ok := w.chunks[key]
	return ok
}

func (w *Chunked) Chunk(key [3]int) (*Chunk, bool) {
	ch, ok := w.chunks[key]
	return ch, ok
}

// Keys returns loaded chunk keys in a stable order.
func (w *Chunked) Keys() [][3]int {
	keys := make([][3]int, 0, len(w.chunks))
	for k := range w.chunks {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func (w *Chunked) Opacity(c voxel.Coordinates) uint8 {
	key, _, _, _ := ChunkKey(c)
	if _, ok := w.chunks[key]; !ok {
		return voxel.Opaque
	}
	return w.opacity.Opacity(c)
}

// SetOpacity edits geometry. Writes into unloaded chunks are ignored.
func (w *Chunked) SetOpacity(c voxel.Coordinates, opacity uint8) {
	key, _, _, _ := ChunkKey(c)
	if _, ok := w.chunks[key]; !ok {
		return
	}
	w.opacity.SetOpacity(c, opacity)
}

func (w *Chunked) Light(c voxel.Coordinates) voxel.Light {
	key, x, y, z := ChunkKey(c)
	ch, ok := w.chunks[key]
	if !ok {
		return voxel.Light{}
	}
	return ch.Light.Get(x, y, z)
}

func (w *Chunked) SetLight(c voxel.Coordinates, l voxel.Light) {
	key, x, y, z := ChunkKey(c)
	ch, ok := w.chunks[key]
	if !ok {
		return
	}
	ch.Light.Set(x, y, z, l)
	w.dirty[key] = true
}

// DirtyChunks returns the chunks whose light changed since the last ClearDirty.
func (w *Chunked) DirtyChunks() [][3]int {
	keys := make([][3]int, 0, len(w.dirty))
	for k := range w.dirty {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func (w *Chunked) ClearDirty() {
	w.dirty = make(map[[3]int]bool)
	w.opacity.ClearDirty()
}

// Bounds returns the inclusive voxel extent covered by loaded chunks.
func (w *Chunked) Bounds() (lo, hi voxel.Coordinates, ok bool) {
	for key := range w.chunks {
		cLo, cHi := ChunkBounds(key)
		if !ok {
			lo, hi, ok = cLo, cHi, true
			continue
		}
		lo = voxel.C(min(lo.X, cLo.X), min(lo.Y, cLo.Y), min(lo.Z, cLo.Z))
		hi = voxel.C(max(hi.X, cHi.X), max(hi.Y, cHi.Y), max(hi.Z, cHi.Z))
	}
	return lo, hi, ok
}

func sortKeys(keys [][3]int) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
}

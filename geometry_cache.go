package voxlight

import (
	"github.com/gekko3d/voxlight/world"
)

// GeometryCache keeps the compressed opacity of chunks that were streamed
// out so edits survive a later reload. Chunks it has never seen come from
// fallback. Light is never cached; streamed-in chunks are relit.
type GeometryCache struct {
	fallback ChunkSource
	chunks   map[[3]int][]byte
}

func NewGeometryCache(fallback ChunkSource) *GeometryCache {
	return &GeometryCache{
		fallback: fallback,
		chunks:   make(map[[3]int][]byte),
	}
}

func (c *GeometryCache) Fill(w *world.Chunked, key [3]int) error {
	data, ok := c.chunks[key]
	if !ok {
		if c.fallback == nil {
			return nil
		}
		return c.fallback.Fill(w, key)
	}
	delete(c.chunks, key)
	return w.SetGeometry(key, data)
}

func (c *GeometryCache) Evict(w *world.Chunked, key [3]int) error {
	data, err := w.Geometry(key)
	if err != nil {
		return err
	}
	c.chunks[key] = data
	return nil
}

// Len returns the number of cached chunks.
func (c *GeometryCache) Len() int { return len(c.chunks) }

// Size returns the compressed bytes held.
func (c *GeometryCache) Size() int {
	n := 0
	for _, data := range c.chunks {
		n += len(data)
	}
	return n
}

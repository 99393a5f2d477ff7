package lightmap

import (
	"fmt"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/gekko3d/voxlight/voxel"
)

// Format selects the per-voxel channel layout of a Lightmap.
type Format uint8

const (
	FormatRGB    Format = 3 // R, G, B
	FormatRGBSky Format = 4 // R, G, B, sky accessibility
)

// BytesPerVoxel returns the packed size of one voxel.
func (f Format) BytesPerVoxel() int {
	return int(f)
}

// Lightmap is dense CPU-side light storage for one region, packed exactly
// as the renderer uploads it into a 3D texture.
type Lightmap struct {
	width, height, depth int
	format               Format
	data                 []byte
}

// New creates an RGB lightmap initialized to black.
func New(width, height, depth int) *Lightmap {
	return newLightmap(width, height, depth, FormatRGB)
}

// NewWithSky creates an RGB+sky lightmap initialized to black.
func NewWithSky(width, height, depth int) *Lightmap {
	return newLightmap(width, height, depth, FormatRGBSky)
}

func newLightmap(width, height, depth int, format Format) *Lightmap {
	if width <= 0 || height <= 0 || depth <= 0 {
		panic(fmt.Sprintf("lightmap: invalid dimensions %dx%dx%d", width, height, depth))
	}
	return &Lightmap{
		width:  width,
		height: height,
		depth:  depth,
		format: format,
		data:   make([]byte, width*height*depth*format.BytesPerVoxel()),
	}
}

func (m *Lightmap) Width() int     { return m.width }
func (m *Lightmap) Height() int    { return m.height }
func (m *Lightmap) Depth() int     { return m.depth }
func (m *Lightmap) Format() Format { return m.format }

// Len returns the number of voxels.
func (m *Lightmap) Len() int {
	return m.width * m.height * m.depth
}

func (m *Lightmap) InBounds(x, y, z int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height && z >= 0 && z < m.depth
}

// Index returns the voxel index x + y*width + z*width*height.
func (m *Lightmap) Index(x, y, z int) int {
	return x + y*m.width + z*m.width*m.height
}

func (m *Lightmap) offset(x, y, z int) int {
	if !m.InBounds(x, y, z) {
		panic(fmt.Sprintf("lightmap: (%d,%d,%d) outside %dx%dx%d", x, y, z, m.width, m.height, m.depth))
	}
	return m.Index(x, y, z) * m.format.BytesPerVoxel()
}

// Get returns the light at (x,y,z). The sky channel reads as 0 for RGB maps.
func (m *Lightmap) Get(x, y, z int) voxel.Light {
	o := m.offset(x, y, z)
	var l voxel.Light
	copy(l[:m.format], m.data[o:o+int(m.format)])
	return l
}

// Set stores the light at (x,y,z). RGB maps drop the sky channel.
func (m *Lightmap) Set(x, y, z int, l voxel.Light) {
	o := m.offset(x, y, z)
	copy(m.data[o:o+int(m.format)], l[:m.format])
}

// Clear resets every voxel to black.
func (m *Lightmap) Clear() {
	clear(m.data)
}

// AsBytes returns the backing buffer: one packed group per voxel, x fastest,
// then y, then z. The slice aliases the lightmap and is valid until the next write.
func (m *Lightmap) AsBytes() []byte {
	return m.data
}

// Checksum hashes the packed contents so unchanged maps can skip re-upload.
func (m *Lightmap) Checksum() uint64 {
	return xxhash.Sum64(m.data)
}

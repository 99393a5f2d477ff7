package volume

import (
	"math/bits"

	"github.com/gekko3d/voxlight/voxel"
)

const (
	BrickSize    = 8
	MicroSize    = 2
	SectorBricks = 4
	SectorSize   = SectorBricks * BrickSize // 32

	BrickFlagSolid = 1
)

// Brick holds opacity for an 8x8x8 block. The occupancy mask tracks which
// 2x2x2 micro cells contain any non-transparent voxel.
type Brick struct {
	OccupancyMask64 uint64
	Payload         [BrickSize][BrickSize][BrickSize]uint8
	SolidValue      uint8
	Flags           uint32
}

func NewBrick() *Brick {
	return &Brick{}
}

func (b *Brick) Copy() *Brick {
	newB := *b
	return &newB
}

func (b *Brick) Opacity(bx, by, bz int) uint8 {
	if b.Flags&BrickFlagSolid != 0 {
		return b.SolidValue
	}
	return b.Payload[bx][by][bz]
}

func (b *Brick) SetOpacity(bx, by, bz int, val uint8) {
	if b.Flags&BrickFlagSolid != 0 {
		if b.SolidValue == val {
			return
		}
		b.Expand()
	}
	b.Payload[bx][by][bz] = val

	mx, my, mz := bx/MicroSize, by/MicroSize, bz/MicroSize
	bitIdx := mx + my*4 + mz*16

	if val != 0 {
		b.OccupancyMask64 |= (1 << bitIdx)
		return
	}

	// Re-evaluate the micro cell
	startMx, startMy, startMz := mx*MicroSize, my*MicroSize, mz*MicroSize
	for x := 0; x < MicroSize; x++ {
		for y := 0; y < MicroSize; y++ {
			for z := 0; z < MicroSize; z++ {
				if b.Payload[startMx+x][startMy+y][startMz+z] != 0 {
					return
				}
			}
		}
	}
	b.OccupancyMask64 &^= (1 << bitIdx)
}

// Expand turns a solid brick back into an explicit payload.
func (b *Brick) Expand() {
	b.Flags &^= BrickFlagSolid
	b.OccupancyMask64 = 0xFFFFFFFFFFFFFFFF
	for z := 0; z < BrickSize; z++ {
		for y := 0; y < BrickSize; y++ {
			for x := 0; x < BrickSize; x++ {
				b.Payload[x][y][z] = b.SolidValue
			}
		}
	}
}

// TryCompress marks a uniformly filled brick as solid.
func (b *Brick) TryCompress() bool {
	if b.IsEmpty() || b.Flags&BrickFlagSolid != 0 {
		return false
	}
	firstVal := b.Payload[0][0][0]
	if firstVal == 0 {
		return false
	}
	for z := 0; z < BrickSize; z++ {
		for y := 0; y < BrickSize; y++ {
			for x := 0; x < BrickSize; x++ {
				if b.Payload[x][y][z] != firstVal {
					return false
				}
			}
		}
	}
	b.Flags |= BrickFlagSolid
	b.SolidValue = firstVal
	return true
}

func (b *Brick) IsEmpty() bool {
	return b.OccupancyMask64 == 0
}

// Sector is a 32^3 region of bricks, stored packed behind a presence mask.
type Sector struct {
	Coords       [3]int
	BrickMask64  uint64
	PackedBricks []*Brick
}

func NewSector(sx, sy, sz int) *Sector {
	return &Sector{
		Coords: [3]int{sx, sy, sz},
	}
}

func (s *Sector) Copy() *Sector {
	newS := NewSector(s.Coords[0], s.Coords[1], s.Coords[2])
	newS.BrickMask64 = s.BrickMask64
	newS.PackedBricks = make([]*Brick, len(s.PackedBricks))
	for i, b := range s.PackedBricks {
		newS.PackedBricks[i] = b.Copy()
	}
	return newS
}

func (s *Sector) GetPackedIndex(flatIdx int) int {
	maskBelow := (uint64(1) << flatIdx) - 1
	return bits.OnesCount64(s.BrickMask64 & maskBelow)
}

func (s *Sector) GetBrick(bx, by, bz int) *Brick {
	flatIdx := bx + by*4 + bz*16
	if (s.BrickMask64 & (1 << flatIdx)) == 0 {
		return nil
	}
	return s.PackedBricks[s.GetPackedIndex(flatIdx)]
}

func (s *Sector) GetOrCreateBrick(bx, by, bz int) (*Brick, bool) {
	flatIdx := bx + by*4 + bz*16
	packedIdx := s.GetPackedIndex(flatIdx)
	if (s.BrickMask64 & (1 << flatIdx)) != 0 {
		return s.PackedBricks[packedIdx], false
	}

	newBrick := NewBrick()
	s.PackedBricks = append(s.PackedBricks, nil)
	copy(s.PackedBricks[packedIdx+1:], s.PackedBricks[packedIdx:])
	s.PackedBricks[packedIdx] = newBrick

	s.BrickMask64 |= (1 << flatIdx)
	return newBrick, true
}

func (s *Sector) RemoveBrickIfEmpty(bx, by, bz int) {
	flatIdx := bx + by*4 + bz*16
	if (s.BrickMask64 & (1 << flatIdx)) == 0 {
		return
	}
	packedIdx := s.GetPackedIndex(flatIdx)
	if s.PackedBricks[packedIdx].IsEmpty() {
		s.PackedBricks = append(s.PackedBricks[:packedIdx], s.PackedBricks[packedIdx+1:]...)
		s.BrickMask64 &^= (1 << flatIdx)
	}
}

func (s *Sector) IsEmpty() bool {
	return s.BrickMask64 == 0
}

// OpacityMap is a sparse, unbounded opacity field. Voxels never written read
// as transparent; callers decide what "outside the loaded world" means.
type OpacityMap struct {
	Sectors      map[[3]int]*Sector
	DirtySectors map[[3]int]bool
}

func NewOpacityMap() *OpacityMap {
	return &OpacityMap{
		Sectors:      make(map[[3]int]*Sector),
		DirtySectors: make(map[[3]int]bool),
	}
}

// Locate splits a global voxel coordinate into sector key, brick and voxel offsets.
func Locate(c voxel.Coordinates) (sKey [3]int, bx, by, bz, vx, vy, vz int) {
	sx, slx := voxel.FloorDiv(c.X, SectorSize)
	sy, sly := voxel.FloorDiv(c.Y, SectorSize)
	sz, slz := voxel.FloorDiv(c.Z, SectorSize)
	return [3]int{sx, sy, sz},
		slx / BrickSize, sly / BrickSize, slz / BrickSize,
		slx % BrickSize, sly % BrickSize, slz % BrickSize
}

func (m *OpacityMap) Opacity(c voxel.Coordinates) uint8 {
	sKey, bx, by, bz, vx, vy, vz := Locate(c)
	sector, ok := m.Sectors[sKey]
	if !ok {
		return 0
	}
	brick := sector.GetBrick(bx, by, bz)
	if brick == nil {
		return 0
	}
	return brick.Opacity(vx, vy, vz)
}

func (m *OpacityMap) SetOpacity(c voxel.Coordinates, val uint8) {
	sKey, bx, by, bz, vx, vy, vz := Locate(c)

	if val == 0 {
		sector, ok := m.Sectors[sKey]
		if !ok {
			return
		}
		brick := sector.GetBrick(bx, by, bz)
		if brick == nil {
			return
		}
		brick.SetOpacity(vx, vy, vz, 0)
		m.DirtySectors[sKey] = true
		sector.RemoveBrickIfEmpty(bx, by, bz)
		if sector.IsEmpty() {
			delete(m.Sectors, sKey)
		}
		return
	}

	sector, ok := m.Sectors[sKey]
	if !ok {
		sector = NewSector(sKey[0], sKey[1], sKey[2])
		m.Sectors[sKey] = sector
	}
	brick, _ := sector.GetOrCreateBrick(bx, by, bz)
	brick.SetOpacity(vx, vy, vz, val)
	brick.TryCompress()
	m.DirtySectors[sKey] = true
}

func (m *OpacityMap) ClearDirty() {
	m.DirtySectors = make(map[[3]int]bool)
}

// DropSector forgets every voxel of a sector.
func (m *OpacityMap) DropSector(sKey [3]int) {
	delete(m.Sectors, sKey)
	delete(m.DirtySectors, sKey)
}

func (m *OpacityMap) Copy() *OpacityMap {
	newMap := NewOpacityMap()
	for k, v := range m.Sectors {
		newMap.Sectors[k] = v.Copy()
	}
	return newMap
}

// CountNonTransparent returns how many voxels have non-zero opacity.
func (m *OpacityMap) CountNonTransparent() int {
	count := 0
	for _, sector := range m.Sectors {
		for _, brick := range sector.PackedBricks {
			if brick.Flags&BrickFlagSolid != 0 {
				count += BrickSize * BrickSize * BrickSize
				continue
			}
			for vz := 0; vz < BrickSize; vz++ {
				for vy := 0; vy < BrickSize; vy++ {
					for vx := 0; vx < BrickSize; vx++ {
						if brick.Payload[vx][vy][vz] != 0 {
							count++
						}
					}
				}
			}
		}
	}
	return count
}

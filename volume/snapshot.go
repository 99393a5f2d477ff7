package volume

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/gekko3d/voxlight/voxel"
	"github.com/klauspost/compress/zstd"
)

const (
	sectorMagic   = "VOXOPACS"
	sectorVersion = uint8(1)
	sectorHeader  = len(sectorMagic) + 1 + 8
	sectorVoxels  = SectorSize * SectorSize * SectorSize
)

var ErrBadSector = errors.New("volume: bad sector data")

func sectorOrigin(key [3]int) voxel.Coordinates {
	return voxel.C(key[0]*SectorSize, key[1]*SectorSize, key[2]*SectorSize)
}

// EncodeSector packs the opacity of one sector: magic, version, the xxhash
// of the raw voxels, then the voxels zstd-compressed, x fastest. Sectors
// that were never written encode as all transparent.
func (m *OpacityMap) EncodeSector(key [3]int) ([]byte, error) {
	raw := make([]byte, sectorVoxels)
	if _, ok := m.Sectors[key]; ok {
		o := sectorOrigin(key)
		i := 0
		for z := 0; z < SectorSize; z++ {
			for y := 0; y < SectorSize; y++ {
				for x := 0; x < SectorSize; x++ {
					raw[i] = m.Opacity(o.Add(voxel.C(x, y, z)))
					i++
				}
			}
		}
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	var out bytes.Buffer
	out.WriteString(sectorMagic)
	_ = binary.Write(&out, binary.LittleEndian, sectorVersion)
	_ = binary.Write(&out, binary.LittleEndian, xxhash.Sum64(raw))
	return enc.EncodeAll(raw, out.Bytes()), nil
}

// DecodeSector replaces one sector's opacity with data from EncodeSector.
// The map is left untouched when data is rejected.
func (m *OpacityMap) DecodeSector(key [3]int, data []byte) error {
	if len(data) < sectorHeader || string(data[:len(sectorMagic)]) != sectorMagic {
		return fmt.Errorf("%w: missing header", ErrBadSector)
	}
	if v := data[len(sectorMagic)]; v != sectorVersion {
		return fmt.Errorf("%w: version %d", ErrBadSector, v)
	}
	sum := binary.LittleEndian.Uint64(data[len(sectorMagic)+1 : sectorHeader])

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(data[sectorHeader:], nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSector, err)
	}
	if len(raw) != sectorVoxels {
		return fmt.Errorf("%w: %d voxels", ErrBadSector, len(raw))
	}
	if xxhash.Sum64(raw) != sum {
		return fmt.Errorf("%w: checksum mismatch", ErrBadSector)
	}

	m.DropSector(key)
	o := sectorOrigin(key)
	i := 0
	for z := 0; z < SectorSize; z++ {
		for y := 0; y < SectorSize; y++ {
			for x := 0; x < SectorSize; x++ {
				if raw[i] != 0 {
					m.SetOpacity(o.Add(voxel.C(x, y, z)), raw[i])
				}
				i++
			}
		}
	}
	m.DirtySectors[key] = true
	return nil
}

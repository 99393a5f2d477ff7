package voxlight

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gekko3d/voxlight/voxel"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// LightSource is a registered point emitter. The same ID is returned by
// AddLight and accepted by RemoveLight.
type LightSource struct {
	ID    uuid.UUID
	Pos   voxel.Coordinates
	Color voxel.Light
}

func newLightSource(pos voxel.Coordinates, color voxel.Light) LightSource {
	// emitters never write the sky channel
	color[voxel.Sky] = 0
	return LightSource{
		ID:    uuid.New(),
		Pos:   pos,
		Color: color,
	}
}

// Seed is the propagation input that re-emits this source.
func (s LightSource) Seed() voxel.Seed {
	return voxel.Seed{Pos: s.Pos, Light: s.Color}
}

// WorldPos is the world-space centre of the emitting voxel.
func (s LightSource) WorldPos(voxelSize float32) mgl32.Vec3 {
	return s.Pos.Center(voxelSize)
}

// ParseLightSpec reads an emitter written as "x,y,z,r,g,b".
func ParseLightSpec(s string) (voxel.Coordinates, voxel.Light, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return voxel.Coordinates{}, voxel.Light{}, fmt.Errorf("light %q: want x,y,z,r,g,b", s)
	}
	var pos [3]int
	for i := range pos {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return voxel.Coordinates{}, voxel.Light{}, fmt.Errorf("light %q: %w", s, err)
		}
		pos[i] = v
	}
	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseUint(strings.TrimSpace(parts[3+i]), 10, 8)
		if err != nil {
			return voxel.Coordinates{}, voxel.Light{}, fmt.Errorf("light %q: %w", s, err)
		}
		rgb[i] = uint8(v)
	}
	return voxel.C(pos[0], pos[1], pos[2]), voxel.RGB(rgb[0], rgb[1], rgb[2]), nil
}

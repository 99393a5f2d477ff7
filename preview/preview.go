// Package preview turns horizontal slices of a lit world into images.
package preview

import (
	"image"
	"image/color"

	"github.com/gekko3d/voxlight/voxel"
	"github.com/gekko3d/voxlight/world"
	"golang.org/x/image/draw"
)

// Solid is drawn for fully opaque voxels.
var Solid = color.RGBA{R: 48, G: 40, B: 36, A: 255}

// Shade maps a voxel's light to a display colour. Sky light is drawn as
// the sky colour scaled by the sky channel and combined with block light by
// per-channel maximum.
func Shade(l voxel.Light, opacity uint8, sky [3]uint8) color.RGBA {
	if opacity == voxel.Opaque {
		return Solid
	}
	c := color.RGBA{A: 255}
	s := uint16(l[voxel.Sky])
	c.R = max(l[voxel.R], uint8(uint16(sky[0])*s/255))
	c.G = max(l[voxel.G], uint8(uint16(sky[1])*s/255))
	c.B = max(l[voxel.B], uint8(uint16(sky[2])*s/255))
	return c
}

// Slice renders layer y of the box [lo, hi], one pixel per voxel. Image x
// follows world x and image rows follow world z.
func Slice(w world.World, lo, hi voxel.Coordinates, y int, sky [3]uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, hi.X-lo.X+1, hi.Z-lo.Z+1))
	for z := lo.Z; z <= hi.Z; z++ {
		for x := lo.X; x <= hi.X; x++ {
			c := voxel.C(x, y, z)
			img.SetRGBA(x-lo.X, z-lo.Z, Shade(w.Light(c), w.Opacity(c), sky))
		}
	}
	return img
}

// Scale enlarges img by an integer factor without smoothing.
func Scale(img image.Image, factor int) *image.RGBA {
	if factor < 1 {
		factor = 1
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

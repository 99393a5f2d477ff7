package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/gekko3d/voxlight"
	"github.com/gekko3d/voxlight/preview"
	"github.com/gekko3d/voxlight/voxel"
	"github.com/gekko3d/voxlight/world"
	"github.com/google/uuid"
)

var white = voxel.RGB(255, 255, 255)

const sphereRadius = 2

// viewer shows one y layer of a lit world, one cell per voxel, and edits it
// under a cursor.
type viewer struct {
	screen tcell.Screen
	engine *voxlight.Engine
	world  *world.Chunked
	sky    [3]uint8
	source voxlight.ChunkSource

	lo, hi  voxel.Coordinates
	layer   int
	cursorX int
	cursorZ int
	placed  []uuid.UUID
	status  string
}

func newViewer(screen tcell.Screen, engine *voxlight.Engine, w *world.Chunked, layer int) *viewer {
	lo, hi, _ := w.Bounds()
	return &viewer{
		screen:  screen,
		engine:  engine,
		world:   w,
		sky:     engine.Config().SkyLight().Color(),
		lo:      lo,
		hi:      hi,
		layer:   min(max(layer, lo.Y), hi.Y),
		cursorX: lo.X,
		cursorZ: lo.Z,
	}
}

func (v *viewer) cursor() voxel.Coordinates {
	return voxel.C(v.cursorX, v.layer, v.cursorZ)
}

func (v *viewer) move(dx, dy, dz int) {
	v.cursorX = min(max(v.cursorX+dx, v.lo.X), v.hi.X)
	v.layer = min(max(v.layer+dy, v.lo.Y), v.hi.Y)
	v.cursorZ = min(max(v.cursorZ+dz, v.lo.Z), v.hi.Z)
}

// handle applies one event and reports whether the viewer should keep running.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			v.move(-1, 0, 0)
		case tcell.KeyRight:
			v.move(1, 0, 0)
		case tcell.KeyUp:
			v.move(0, 0, -1)
		case tcell.KeyDown:
			v.move(0, 0, 1)
		case tcell.KeyPgUp:
			v.move(0, 1, 0)
		case tcell.KeyPgDn:
			v.move(0, -1, 0)
		case tcell.KeyRune:
			return v.handleRune(ev.Rune())
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viewer) handleRune(r rune) bool {
	var err error
	switch r {
	case 'q':
		return false
	case '+':
		v.move(0, 1, 0)
	case '-':
		v.move(0, -1, 0)
	case 'b':
		err = v.engine.PlaceBlock(v.cursor(), voxel.Opaque)
		v.status = fmt.Sprintf("block at %v", v.cursor())
	case 'g':
		err = v.engine.PlaceBlock(v.cursor(), 64)
		v.status = fmt.Sprintf("glass at %v", v.cursor())
	case 'x':
		err = v.engine.RemoveBlock(v.cursor())
		v.status = fmt.Sprintf("cleared %v", v.cursor())
	case 'l':
		src := v.engine.AddLight(v.cursor(), white)
		v.placed = append(v.placed, src.ID)
		v.status = fmt.Sprintf("light %s at %v", src.ID, src.WorldPos(v.engine.Config().VoxelSize))
	case 'o':
		err = v.engine.FillSphere(v.cursor(), sphereRadius, 0)
		v.status = fmt.Sprintf("carved sphere at %v", v.cursor())
	case 'O':
		err = v.engine.FillSphere(v.cursor(), sphereRadius, voxel.Opaque)
		v.status = fmt.Sprintf("filled sphere at %v", v.cursor())
	case 's':
		var loaded, unloaded [][3]int
		loaded, unloaded, err = v.engine.Stream(v.cursor(), 1, v.source)
		v.lo, v.hi, _ = v.world.Bounds()
		v.move(0, 0, 0)
		v.status = fmt.Sprintf("streamed +%d -%d chunks", len(loaded), len(unloaded))
	case 'u':
		if len(v.placed) == 0 {
			v.status = "no lights to remove"
			break
		}
		id := v.placed[len(v.placed)-1]
		v.placed = v.placed[:len(v.placed)-1]
		err = v.engine.RemoveLight(id)
		v.status = fmt.Sprintf("removed %s", id)
	}
	if err != nil {
		v.status = err.Error()
	}
	return true
}

func (v *viewer) draw() {
	v.screen.Clear()
	width, height := v.screen.Size()

	for z := v.lo.Z; z <= v.hi.Z && z-v.lo.Z < height-1; z++ {
		for x := v.lo.X; x <= v.hi.X && x-v.lo.X < width; x++ {
			c := voxel.C(x, v.layer, z)
			col := preview.Shade(v.world.Light(c), v.world.Opacity(c), v.sky)
			style := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(col.R), int32(col.G), int32(col.B)))
			if x == v.cursorX && z == v.cursorZ {
				style = style.Foreground(tcell.ColorRed)
				v.screen.SetContent(x-v.lo.X, z-v.lo.Z, '+', nil, style)
				continue
			}
			v.screen.SetContent(x-v.lo.X, z-v.lo.Z, ' ', nil, style)
		}
	}

	l := v.world.Light(v.cursor())
	line := fmt.Sprintf("y=%d %v rgb=%d,%d,%d sky=%d op=%d %s",
		v.layer, v.cursor(), l[voxel.R], l[voxel.G], l[voxel.B], l[voxel.Sky], v.world.Opacity(v.cursor()), v.status)
	for i, r := range []rune(line) {
		if i >= width {
			break
		}
		v.screen.SetContent(i, height-1, r, nil, tcell.StyleDefault)
	}
	v.screen.Show()
}

func (v *viewer) run() {
	v.draw()
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		if !v.handle(ev) {
			return
		}
		v.draw()
	}
}

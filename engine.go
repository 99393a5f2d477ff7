// Package voxlight maintains per-voxel light for an editable voxel world.
//
// The Engine owns the registered emitters and turns world edits into calls
// to the propagation package. Lightmaps are read back through Uploads.
package voxlight

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/gekko3d/voxlight/lightmap"
	"github.com/gekko3d/voxlight/propagation"
	"github.com/gekko3d/voxlight/volume"
	"github.com/gekko3d/voxlight/voxel"
	"github.com/gekko3d/voxlight/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var (
	ErrUnknownLight  = errors.New("unknown light")
	ErrReadOnlyWorld = errors.New("world geometry is read-only")
	ErrNotChunked    = errors.New("world is not chunked")
)

// Engine is not safe for concurrent use.
type Engine struct {
	world    world.World
	cfg      Config
	log      Logger
	profiler *Profiler

	lights   map[uuid.UUID]LightSource
	index    *LightGrid
	uploaded map[[3]int]uint64
}

const lightCellSize = 16

func NewEngine(w world.World, cfg Config, logger Logger) *Engine {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Engine{
		world:    w,
		cfg:      cfg,
		log:      logger,
		profiler: NewProfiler(),
		lights:   make(map[uuid.UUID]LightSource),
		index:    NewLightGrid(lightCellSize),
		uploaded: make(map[[3]int]uint64),
	}
}

func (e *Engine) World() world.World   { return e.world }
func (e *Engine) Config() Config       { return e.cfg }
func (e *Engine) Profiler() *Profiler  { return e.profiler }
func (e *Engine) Logger() Logger       { return e.log }
func (e *Engine) attenuation() uint8   { return e.cfg.Attenuation }
func (e *Engine) skyEnabled() bool     { return e.cfg.Sky.Enabled }
func (e *Engine) skyLight() voxel.Light { return e.cfg.SkyLight() }

func (e *Engine) begin(scope string) {
	e.profiler.BeginScope(scope)
}

func (e *Engine) end(scope string, stats propagation.Stats) {
	d := e.profiler.EndScope(scope)
	e.profiler.AddCount(scope+".visited", stats.Visited)
	e.profiler.AddCount(scope+".updated", stats.Updated)
	e.log.Debugf("%s: visited=%d updated=%d seeds=%d in %s", scope, stats.Visited, stats.Updated, stats.Seeds, d)
}

// AddLight registers an emitter at pos and floods its light. The sky
// channel of color is ignored.
func (e *Engine) AddLight(pos voxel.Coordinates, color voxel.Light) LightSource {
	e.begin("add_light")
	src := newLightSource(pos, color)
	e.lights[src.ID] = src
	e.index.Insert(src.ID, src.Pos)
	stats := propagation.Propagate(e.world, []voxel.Seed{src.Seed()}, e.attenuation())
	e.end("add_light", stats)
	return src
}

// AddLightAt is AddLight for a world-space position.
func (e *Engine) AddLightAt(pos mgl32.Vec3, color voxel.Light) LightSource {
	return e.AddLight(voxel.FromWorld(pos, e.cfg.VoxelSize), color)
}

// RemoveLight unregisters an emitter and retracts its light. Under a sky,
// or with ExactRemoval, the box the emitter could reach is relit. Otherwise
// its light is siphoned out and the remaining emitters are re-seeded,
// because the siphon may clear light they also produced.
func (e *Engine) RemoveLight(id uuid.UUID) error {
	src, ok := e.lights[id]
	if !ok {
		e.log.Warnf("remove light %s: not registered", id)
		return fmt.Errorf("remove light %s: %w", id, ErrUnknownLight)
	}
	delete(e.lights, id)
	e.index.Remove(id, src.Pos)

	// Daylit voxels never match a derived emitter value, so the siphon
	// cannot retract emitter light from under the sky.
	if (e.cfg.ExactRemoval || e.skyEnabled()) && e.attenuation() > 0 {
		e.relightAround(src.Pos, src.Pos, reach(src.Color, e.attenuation()), false)
		return nil
	}

	e.begin("remove_light")
	stats := propagation.Unpropagate(e.world, []voxel.Coordinates{src.Pos}, e.attenuation())
	stats.Add(propagation.Propagate(e.world, e.seeds(), e.attenuation()))
	e.end("remove_light", stats)
	return nil
}

// reach is the number of steps after which color has decayed to black in open air.
func reach(color voxel.Light, attenuation uint8) int {
	brightest := slices.Max(color[:])
	return (int(brightest) + int(attenuation) - 1) / int(attenuation)
}

// relightAround relights lo..hi grown by r on every side. With down set
// and the sky enabled the box also extends to the sky floor, covering the
// columns an edit inside it may have shadowed or opened.
func (e *Engine) relightAround(lo, hi voxel.Coordinates, r int, down bool) propagation.Stats {
	ext := voxel.C(r, r, r)
	lo, hi = lo.Sub(ext), hi.Add(ext)
	if down && e.skyEnabled() {
		floor, _ := e.skyRange()
		lo.Y = min(lo.Y, floor)
	}
	return e.Relight(lo, hi)
}

func (e *Engine) Light(id uuid.UUID) (LightSource, bool) {
	src, ok := e.lights[id]
	return src, ok
}

// Lights returns the registered emitters ordered by ID.
func (e *Engine) Lights() []LightSource {
	out := make([]LightSource, 0, len(e.lights))
	for _, src := range e.lights {
		out = append(out, src)
	}
	slices.SortFunc(out, func(a, b LightSource) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return out
}

func (e *Engine) seeds() []voxel.Seed {
	seeds := make([]voxel.Seed, 0, len(e.lights))
	for _, src := range e.Lights() {
		seeds = append(seeds, src.Seed())
	}
	return seeds
}

func (e *Engine) writer() (world.OpacityWriter, error) {
	ow, ok := e.world.(world.OpacityWriter)
	if !ok {
		return nil, ErrReadOnlyWorld
	}
	return ow, nil
}

// PlaceBlock sets the opacity at pos and removes the light the new block
// stops. Opaque blocks also shadow the sky column beneath them.
func (e *Engine) PlaceBlock(pos voxel.Coordinates, opacity uint8) error {
	ow, err := e.writer()
	if err != nil {
		return fmt.Errorf("place block at %v: %w", pos, err)
	}

	e.begin("place_block")
	old := e.world.Light(pos)
	ow.SetOpacity(pos, opacity)
	if e.skyEnabled() && e.attenuation() > 0 {
		// Nothing that passed through pos reaches further than its old light.
		stats := e.relightAround(pos, pos, reach(old, e.attenuation()), true)
		e.end("place_block", stats)
		return nil
	}

	var stats propagation.Stats
	switch {
	case !e.skyEnabled():
		stats = propagation.Unpropagate(e.world, []voxel.Coordinates{pos}, e.attenuation())
	case opacity == voxel.Opaque:
		stats = propagation.Unpropagate(e.world, []voxel.Coordinates{pos}, e.attenuation())
		stats.Add(propagation.UnpropagateSky(e.world, pos, e.attenuation()))
	default:
		// A translucent block must not be refilled from the column it is
		// about to dim, so both go in one removal pass.
		removed := append([]voxel.Coordinates{pos}, propagation.ShadowColumn(e.world, pos)...)
		stats = propagation.Unpropagate(e.world, removed, e.attenuation())
		stats.Add(e.skyColumn(pos))
	}
	stats.Add(propagation.Propagate(e.world, e.seeds(), e.attenuation()))
	e.end("place_block", stats)
	return nil
}

// RemoveBlock clears the voxel at pos and lets surrounding and sky light back in.
func (e *Engine) RemoveBlock(pos voxel.Coordinates) error {
	ow, err := e.writer()
	if err != nil {
		return fmt.Errorf("remove block at %v: %w", pos, err)
	}

	e.begin("remove_block")
	ow.SetOpacity(pos, 0)

	var lit []voxel.Coordinates
	for _, n := range pos.Neighbors() {
		if !e.world.Light(n).IsZero() {
			lit = append(lit, n)
		}
	}
	stats := propagation.Propagate(e.world, propagation.Seeds(e.world, lit), e.attenuation())
	if e.skyEnabled() {
		stats.Add(e.skyColumn(pos))
	}
	e.end("remove_block", stats)
	return nil
}

// skyColumn re-runs sky seeding for the single column through pos.
func (e *Engine) skyColumn(pos voxel.Coordinates) propagation.Stats {
	floor, top := e.skyRange()
	lo := voxel.C(pos.X, min(floor, pos.Y), pos.Z)
	hi := voxel.C(pos.X, max(top, pos.Y), pos.Z)
	return propagation.PropagateSky(e.world, lo, hi, e.skyLight(), e.attenuation())
}

// skyRange is the vertical extent sky columns are scanned over.
func (e *Engine) skyRange() (floor, top int) {
	if b, ok := e.world.(world.Bounded); ok {
		if lo, hi, ok := b.Bounds(); ok {
			return lo.Y, hi.Y
		}
	}
	return e.cfg.Sky.Floor, e.cfg.Sky.Ceiling
}

// SkyBounds is the box RelightSky covers when called for the whole world.
// ok is false for worlds without a finite extent.
func (e *Engine) SkyBounds() (lo, hi voxel.Coordinates, ok bool) {
	b, isBounded := e.world.(world.Bounded)
	if !isBounded {
		return lo, hi, false
	}
	return b.Bounds()
}

// RelightSky seeds sky light down every column of the inclusive box.
func (e *Engine) RelightSky(lo, hi voxel.Coordinates) propagation.Stats {
	if !e.skyEnabled() {
		return propagation.Stats{}
	}
	e.begin("sky")
	stats := propagation.PropagateSky(e.world, lo, hi, e.skyLight(), e.attenuation())
	e.end("sky", stats)
	return stats
}

// Relight discards all light inside the inclusive box and recomputes it
// from the emitters inside, the sky, and the light bordering the box.
func (e *Engine) Relight(lo, hi voxel.Coordinates) propagation.Stats {
	if blo, bhi, ok := e.SkyBounds(); ok {
		lo = voxel.C(max(lo.X, blo.X), max(lo.Y, blo.Y), max(lo.Z, blo.Z))
		hi = voxel.C(min(hi.X, bhi.X), min(hi.Y, bhi.Y), min(hi.Z, bhi.Z))
	}
	e.begin("relight")
	stats := e.relightBoxes([]box{{lo, hi}})
	e.end("relight", stats)
	return stats
}

type box struct{ lo, hi voxel.Coordinates }

// relightBoxes clears every box first, then recomputes them together so no
// box is seeded from stale light still held by another.
func (e *Engine) relightBoxes(boxes []box) propagation.Stats {
	for _, b := range boxes {
		for z := b.lo.Z; z <= b.hi.Z; z++ {
			for y := b.lo.Y; y <= b.hi.Y; y++ {
				for x := b.lo.X; x <= b.hi.X; x++ {
					e.world.SetLight(voxel.C(x, y, z), voxel.Light{})
				}
			}
		}
	}

	var stats propagation.Stats
	if e.skyEnabled() {
		_, top := e.skyRange()
		for _, b := range boxes {
			stats.Add(propagation.PropagateSky(e.world, b.lo, voxel.C(b.hi.X, max(top, b.hi.Y), b.hi.Z), e.skyLight(), e.attenuation()))
		}
	}

	var seeds []voxel.Seed
	seen := make(map[uuid.UUID]bool)
	for _, b := range boxes {
		for _, id := range e.index.QueryBox(b.lo, b.hi) {
			if src := e.lights[id]; !seen[id] && inBox(src.Pos, b.lo, b.hi) {
				seen[id] = true
				seeds = append(seeds, src.Seed())
			}
		}
		for _, c := range shell(b.lo, b.hi) {
			if inAny(c, boxes) {
				continue
			}
			if l := e.world.Light(c); !l.IsZero() {
				seeds = append(seeds, voxel.Seed{Pos: c, Light: l})
			}
		}
	}
	stats.Add(propagation.Propagate(e.world, seeds, e.attenuation()))
	return stats
}

func inBox(c, lo, hi voxel.Coordinates) bool {
	return c.X >= lo.X && c.X <= hi.X &&
		c.Y >= lo.Y && c.Y <= hi.Y &&
		c.Z >= lo.Z && c.Z <= hi.Z
}

func inAny(c voxel.Coordinates, boxes []box) bool {
	for _, b := range boxes {
		if inBox(c, b.lo, b.hi) {
			return true
		}
	}
	return false
}

// Edit runs fn against the geometry inside the inclusive box lo..hi and
// relights everything the change can reach. Writes outside the box are
// dropped.
func (e *Engine) Edit(lo, hi voxel.Coordinates, fn func(dst volume.OpacitySetter)) error {
	ow, err := e.writer()
	if err != nil {
		return fmt.Errorf("edit %v..%v: %w", lo, hi, err)
	}

	e.begin("edit")
	fn(clippedWriter{ow: ow, lo: lo, hi: hi})
	var stats propagation.Stats
	switch {
	case e.attenuation() > 0:
		stats = e.relightAround(lo, hi, reach(voxel.Light{255, 255, 255, 255}, e.attenuation()), true)
	default:
		if blo, bhi, ok := e.SkyBounds(); ok {
			stats = e.Relight(blo, bhi)
		} else {
			e.log.Warnf("edit %v..%v: no finite extent to relight without attenuation", lo, hi)
		}
	}
	e.end("edit", stats)
	return nil
}

// FillSphere sets every voxel whose centre lies within radius of center's
// centre to opacity.
func (e *Engine) FillSphere(center voxel.Coordinates, radius int, opacity uint8) error {
	ext := voxel.C(radius+1, radius+1, radius+1)
	c := mgl32.Vec3{float32(center.X) + 0.5, float32(center.Y) + 0.5, float32(center.Z) + 0.5}
	return e.Edit(center.Sub(ext), center.Add(ext), func(dst volume.OpacitySetter) {
		volume.Sphere(dst, c, float32(radius), opacity)
	})
}

type clippedWriter struct {
	ow     world.OpacityWriter
	lo, hi voxel.Coordinates
}

func (w clippedWriter) SetOpacity(c voxel.Coordinates, opacity uint8) {
	if inBox(c, w.lo, w.hi) {
		w.ow.SetOpacity(c, opacity)
	}
}

// shell returns the voxels that share a face with the box but lie outside it.
func shell(lo, hi voxel.Coordinates) []voxel.Coordinates {
	var out []voxel.Coordinates
	for z := lo.Z; z <= hi.Z; z++ {
		for y := lo.Y; y <= hi.Y; y++ {
			out = append(out, voxel.C(lo.X-1, y, z), voxel.C(hi.X+1, y, z))
		}
	}
	for z := lo.Z; z <= hi.Z; z++ {
		for x := lo.X; x <= hi.X; x++ {
			out = append(out, voxel.C(x, lo.Y-1, z), voxel.C(x, hi.Y+1, z))
		}
	}
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			out = append(out, voxel.C(x, y, lo.Z-1), voxel.C(x, y, hi.Z+1))
		}
	}
	return out
}

// ChunkSource supplies geometry to chunks that are streamed in and sees
// chunks about to be streamed out.
type ChunkSource interface {
	Fill(w *world.Chunked, key [3]int) error
	Evict(w *world.Chunked, key [3]int) error
}

// ChunkFiller is a ChunkSource that generates geometry and forgets evicted chunks.
type ChunkFiller func(w *world.Chunked, key [3]int)

func (f ChunkFiller) Fill(w *world.Chunked, key [3]int) error {
	if f != nil {
		f(w, key)
	}
	return nil
}

func (ChunkFiller) Evict(*world.Chunked, [3]int) error { return nil }

// Stream keeps the chunks within radius chunks of center loaded and drops
// the rest. New chunks are filled from src (which may be nil) and then lit
// from the sky, the registered emitters inside them and their loaded
// neighbours. Emitters in unloaded chunks stay registered. Errors from src
// are collected; the affected chunks stay loaded but empty.
func (e *Engine) Stream(center voxel.Coordinates, radius int, src ChunkSource) (loaded, unloaded [][3]int, err error) {
	w, ok := e.world.(*world.Chunked)
	if !ok {
		return nil, nil, fmt.Errorf("stream around %v: %w", center, ErrNotChunked)
	}

	e.begin("stream")
	var errs []error
	loaded, unloaded = w.Stream(center, radius, func(key [3]int) {
		if src == nil {
			return
		}
		if err := src.Evict(w, key); err != nil {
			e.log.Warnf("stream: evict %v: %v", key, err)
			errs = append(errs, err)
		}
	})
	if src != nil {
		for _, key := range loaded {
			if err := src.Fill(w, key); err != nil {
				e.log.Warnf("stream: fill %v: %v", key, err)
				errs = append(errs, err)
			}
		}
	}
	var boxes []box
	for _, key := range e.staleChunks(w, loaded, unloaded) {
		lo, hi := world.ChunkBounds(key)
		boxes = append(boxes, box{lo, hi})
	}
	stats := e.relightBoxes(boxes)
	e.end("stream", stats)
	if len(loaded) > 0 || len(unloaded) > 0 {
		e.log.Infof("stream: loaded %d chunks, unloaded %d around %v", len(loaded), len(unloaded), center)
	}
	return loaded, unloaded, errors.Join(errs...)
}

// staleChunks returns the loaded chunks whose light a streaming step may
// have invalidated: the new chunks, the chunks below any chunk that came or
// went (their sky changed) and every loaded chunk within light reach of
// those.
func (e *Engine) staleChunks(w *world.Chunked, loaded, unloaded [][3]int) [][3]int {
	changed := append(slices.Clone(loaded), unloaded...)
	if len(changed) == 0 {
		return nil
	}
	if e.attenuation() == 0 {
		return w.Keys()
	}

	base := make(map[[3]int]bool)
	for _, key := range changed {
		base[key] = true
	}
	if e.skyEnabled() {
		for _, key := range w.Keys() {
			for _, c := range changed {
				if key[0] == c[0] && key[2] == c[2] && key[1] < c[1] {
					base[key] = true
					break
				}
			}
		}
	}

	d := (reach(voxel.Light{255, 255, 255, 255}, e.attenuation()) + world.ChunkSize - 1) / world.ChunkSize
	stale := make(map[[3]int]bool)
	for key := range base {
		for dx := -d; dx <= d; dx++ {
			for dy := -d; dy <= d; dy++ {
				for dz := -d; dz <= d; dz++ {
					n := [3]int{key[0] + dx, key[1] + dy, key[2] + dz}
					if w.IsLoaded(n) {
						stale[n] = true
					}
				}
			}
		}
	}
	out := make([][3]int, 0, len(stale))
	for key := range stale {
		out = append(out, key)
	}
	slices.SortFunc(out, func(a, b [3]int) int { return slices.Compare(a[:], b[:]) })
	return out
}

// Uploads hands every lightmap that changed since the last call to fn.
// Maps whose content hashes to the value last uploaded are skipped. A Grid
// reports under key {0, 0, 0}.
func (e *Engine) Uploads(fn func(key [3]int, data []byte)) int {
	e.begin("upload")
	n := 0
	send := func(key [3]int, lm *lightmap.Lightmap) {
		sum := lm.Checksum()
		if prev, ok := e.uploaded[key]; ok && prev == sum {
			return
		}
		e.uploaded[key] = sum
		fn(key, lm.AsBytes())
		n++
	}

	switch w := e.world.(type) {
	case *world.Chunked:
		for key := range e.uploaded {
			if !w.IsLoaded(key) {
				delete(e.uploaded, key)
			}
		}
		for _, key := range w.DirtyChunks() {
			if ch, ok := w.Chunk(key); ok {
				send(key, ch.Light)
			}
		}
		w.ClearDirty()
	case *world.Grid:
		send([3]int{}, w.Lightmap())
	default:
		e.log.Warnf("upload: %T exposes no lightmaps", e.world)
	}

	e.profiler.EndScope("upload")
	e.profiler.AddCount("upload.maps", n)
	e.log.Debugf("upload: %d lightmaps", n)
	return n
}

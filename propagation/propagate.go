// Package propagation spreads and retracts voxel light over a world.World.
//
// Light moves between face-adjacent voxels only. Entering a voxel costs
// attenuation plus that voxel's opacity, saturating at 255; fully opaque
// voxels are never entered. All routines run single-threaded to completion
// and use explicit FIFO worklists.
package propagation

import (
	"github.com/gammazero/deque"
	"github.com/gekko3d/voxlight/voxel"
	"github.com/gekko3d/voxlight/world"
)

// Stats counts the work a propagation call performed.
type Stats struct {
	Visited int // worklist entries processed
	Updated int // light writes that changed a voxel
	Seeds   int // seeds fed into the final flood fill
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Visited += o.Visited
	s.Updated += o.Updated
	s.Seeds += o.Seeds
}

// Propagate floods light outward from seeds until no voxel can be brightened.
//
// Each seed is merged into its voxel by per-channel maximum. A neighbour is
// rewritten and re-queued only when the candidate beats it in some channel,
// so the call terminates even with zero attenuation.
func Propagate(w world.World, seeds []voxel.Seed, attenuation uint8) Stats {
	var queue deque.Deque[voxel.Coordinates]
	stats := Stats{Seeds: len(seeds)}

	for _, s := range seeds {
		cur := w.Light(s.Pos)
		merged := cur.Max(s.Light)
		if merged != cur {
			w.SetLight(s.Pos, merged)
			stats.Updated++
		}
		queue.PushBack(s.Pos)
	}

	flood(w, &queue, attenuation, &stats)
	return stats
}

// flood drains the worklist, relaxing every face-adjacent neighbour.
func flood(w world.World, queue *deque.Deque[voxel.Coordinates], attenuation uint8, stats *Stats) {
	for queue.Len() > 0 {
		p := queue.PopFront()
		stats.Visited++

		l := w.Light(p)
		if l.IsZero() {
			continue
		}

		for _, n := range p.Neighbors() {
			opacity := w.Opacity(n)
			if opacity == voxel.Opaque {
				continue
			}

			candidate := l.Sub(voxel.StepCost(attenuation, opacity))
			if candidate.IsZero() {
				continue
			}

			cur := w.Light(n)
			if candidate.Exceeds(cur) {
				w.SetLight(n, cur.Max(candidate))
				stats.Updated++
				queue.PushBack(n)
			}
		}
	}
}

// Seeds builds seeds that re-emit the light currently stored at each coordinate.
func Seeds(w world.World, coords []voxel.Coordinates) []voxel.Seed {
	seeds := make([]voxel.Seed, 0, len(coords))
	for _, c := range coords {
		seeds = append(seeds, voxel.Seed{Pos: c, Light: w.Light(c)})
	}
	return seeds
}

package propagation

import (
	"github.com/gammazero/deque"
	"github.com/gekko3d/voxlight/voxel"
	"github.com/gekko3d/voxlight/world"
)

type removal struct {
	pos voxel.Coordinates
	old voxel.Light
}

// Unpropagate retracts light that flowed out of the given voxels, then
// re-floods the cleared area from whatever independent light borders it.
//
// Siphon: a lit neighbour is treated as derived from the voxel being cleared
// when its value equals exactly old minus the step cost into it. Derived
// voxels are cleared and the siphon continues from them. Any other lit
// neighbour is kept and becomes a refill seed.
//
// Refill: the refill seeds are propagated with their current light.
//
// The equality test is a heuristic. Light from two sources that happens to
// match the derived value is cleared as well and only comes back if the
// refill reaches it. Light rewritten independently since it was first
// propagated stops the siphon early.
func Unpropagate(w world.World, seeds []voxel.Coordinates, attenuation uint8) Stats {
	var queue deque.Deque[removal]
	var refill []voxel.Coordinates
	var stats Stats

	for _, c := range seeds {
		old := w.Light(c)
		if !old.IsZero() {
			w.SetLight(c, voxel.Light{})
			stats.Updated++
		}
		queue.PushBack(removal{pos: c, old: old})
	}

	for queue.Len() > 0 {
		r := queue.PopFront()
		stats.Visited++

		for _, n := range r.pos.Neighbors() {
			nl := w.Light(n)
			if nl.IsZero() {
				continue
			}

			derived := r.old.Sub(voxel.StepCost(attenuation, w.Opacity(n)))
			if nl == derived {
				w.SetLight(n, voxel.Light{})
				stats.Updated++
				queue.PushBack(removal{pos: n, old: nl})
			} else {
				refill = append(refill, n)
			}
		}
	}

	if len(refill) > 0 {
		stats.Add(Propagate(w, Seeds(w, refill), attenuation))
	}
	return stats
}

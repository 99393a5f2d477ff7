package voxel

// Opaque is the opacity value that blocks light unconditionally.
const Opaque uint8 = 255

// Channel indices into Light.
const (
	R = iota
	G
	B
	Sky
	Channels
)

// Light is a per-voxel light value: RGB plus a sky accessibility channel.
// Every channel saturates to [0,255].
type Light [Channels]uint8

// Seed is a transient propagation input: a voxel and the light it emits.
type Seed struct {
	Pos   Coordinates
	Light Light
}

// RGB builds a light value with an empty sky channel.
func RGB(r, g, b uint8) Light {
	return Light{r, g, b, 0}
}

// Color returns the RGB channels.
func (l Light) Color() [3]uint8 {
	return [3]uint8{l[R], l[G], l[B]}
}

func (l Light) IsZero() bool {
	return l == Light{}
}

// Sub subtracts n from every channel, clamping at zero.
func (l Light) Sub(n uint8) Light {
	var out Light
	for i, v := range l {
		if v > n {
			out[i] = v - n
		}
	}
	return out
}

// Max returns the per-channel maximum of l and o.
func (l Light) Max(o Light) Light {
	for i, v := range o {
		if v > l[i] {
			l[i] = v
		}
	}
	return l
}

// Exceeds reports whether l is strictly brighter than o in at least one channel.
func (l Light) Exceeds(o Light) bool {
	for i, v := range l {
		if v > o[i] {
			return true
		}
	}
	return false
}

// AddSat is 8-bit saturating addition.
func AddSat(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}

// StepCost is the cost of moving light into a voxel of the given opacity.
func StepCost(attenuation, opacity uint8) uint8 {
	return AddSat(attenuation, opacity)
}

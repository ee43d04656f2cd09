package wheel

import "math"

// Layout fixes the wheel geometry: how many segments the rim is divided
// into and where the fixed pointer sits, in degrees. Segment i occupies
// the arc [i*Arc, (i+1)*Arc) in the wheel's own frame, with its center at
// (i+0.5)*Arc.
//
// A positive rotation angle turns the wheel clockwise on screen, so the
// wheel-frame position under the pointer at rotation a is PointerAngle+a.
// FinalAngle and SegmentAt are exact inverses under that convention.
type Layout struct {
	Segments     int
	PointerAngle float64
}

// Arc is the angular width of one segment in degrees.
func (l Layout) Arc() float64 {
	return 360.0 / float64(l.Segments)
}

// SegmentCenter returns the wheel-frame angle of the center of segment
// index.
func (l Layout) SegmentCenter(index int) float64 {
	return (float64(index) + 0.5) * l.Arc()
}

// FinalAngle computes the cumulative rotation at which a spin comes to
// rest with the center of segment target under the pointer. The spin
// starts from rest, winds back by windUp degrees, then makes spins full
// forward revolutions plus the remainder needed to reach the target.
// The result is cumulative, not normalized: it can exceed 360 by several
// revolutions and grows monotonically across consecutive spins.
func (l Layout) FinalAngle(target int, rest, windUp float64, spins int) float64 {
	start := rest - windUp
	remainder := norm360(l.SegmentCenter(target) - l.PointerAngle - start)
	return start + float64(spins)*360.0 + remainder
}

// SegmentAt returns the index of the segment under the pointer when the
// wheel rotation is angle. It accepts any finite angle, including
// negative and multi-revolution values.
func (l Layout) SegmentAt(angle float64) int {
	under := norm360(l.PointerAngle + angle)
	idx := int(math.Floor(under / l.Arc()))
	// Guard the idx == Segments edge that floating point can produce when
	// under is a hair below 360.
	return ((idx % l.Segments) + l.Segments) % l.Segments
}

// PegAt returns the index of the peg (segment boundary) nearest the
// pointer at the given rotation. Peg k sits at the boundary between
// segments k-1 and k; crossing detection drives the tick sound.
func (l Layout) PegAt(angle float64) int {
	under := norm360(l.PointerAngle + angle)
	return int(math.Round(under/l.Arc())) % l.Segments
}

// norm360 maps any finite angle onto [0, 360).
func norm360(a float64) float64 {
	a = math.Mod(a, 360.0)
	if a < 0 {
		a += 360.0
	}
	return a
}

package wheel

import (
	"math"
	"testing"
)

func TestFinalAngleRoundTripExhaustive(t *testing.T) {
	layout := Layout{Segments: 54, PointerAngle: 270}
	rests := []float64{0, 33.3, 359.9, 720, -123.4, 1500}
	for _, rest := range rests {
		for spins := 4; spins <= 8; spins++ {
			for target := 0; target < layout.Segments; target++ {
				final := layout.FinalAngle(target, rest, 100, spins)
				if got := layout.SegmentAt(final); got != target {
					t.Fatalf("rest=%g spins=%d: FinalAngle(%d)=%g lands on %d",
						rest, spins, target, final, got)
				}
			}
		}
	}
}

func TestFinalAngleIsForwardOfWindUp(t *testing.T) {
	layout := Layout{Segments: 54, PointerAngle: 270}
	for target := 0; target < layout.Segments; target++ {
		rest := 42.0
		final := layout.FinalAngle(target, rest, 100, 4)
		start := rest - 100
		if final < start+4*360 {
			t.Fatalf("target %d: final %g below minimum forward travel", target, final)
		}
		if final >= start+5*360 {
			t.Fatalf("target %d: final %g exceeds requested revolutions", target, final)
		}
	}
}

func TestSegmentAtPeriodicity(t *testing.T) {
	layout := Layout{Segments: 54, PointerAngle: 270}
	angles := []float64{0, 12.5, 181.1, 359.999}
	for _, a := range angles {
		want := layout.SegmentAt(a)
		for _, k := range []float64{-2, -1, 1, 3, 10} {
			if got := layout.SegmentAt(a + 360*k); got != want {
				t.Fatalf("SegmentAt(%g+%g*360) = %d, want %d", a, k, got, want)
			}
		}
	}
}

func TestSegmentAtSixSegmentWheel(t *testing.T) {
	// Small wheel worked by hand: 6 segments of 60 degrees, pointer at
	// 90. Starting at rest 0 with a 10 degree wind-up and 4 revolutions
	// onto segment 2, the solved final angle is exactly 1500.
	layout := Layout{Segments: 6, PointerAngle: 90}
	final := layout.FinalAngle(2, 0, 10, 4)
	if math.Abs(final-1500) > 1e-9 {
		t.Fatalf("FinalAngle = %g, want 1500", final)
	}
	if got := layout.SegmentAt(final); got != 2 {
		t.Fatalf("SegmentAt(%g) = %d, want 2", final, got)
	}
}

func TestSegmentCenterIsInsideSegment(t *testing.T) {
	layout := Layout{Segments: 54, PointerAngle: 270}
	for i := 0; i < layout.Segments; i++ {
		center := layout.SegmentCenter(i)
		if idx := int(math.Floor(center / layout.Arc())); idx != i {
			t.Fatalf("center of segment %d falls in segment %d", i, idx)
		}
	}
}

func TestNorm360(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{360, 0},
		{-90, 270},
		{720.5, 0.5},
		{-720, 0},
	}
	for _, c := range cases {
		if got := norm360(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("norm360(%g) = %g, want %g", c.in, got, c.want)
		}
	}
}

func TestPegAtWrapsAtRim(t *testing.T) {
	layout := Layout{Segments: 54, PointerAngle: 270}
	// Just below a full revolution the nearest peg is peg 0 again.
	arc := layout.Arc()
	if got := layout.PegAt(90 - arc/4); got != 0 {
		t.Fatalf("PegAt near wrap = %d, want 0", got)
	}
	if got := layout.PegAt(90 + arc/4); got != 0 {
		t.Fatalf("PegAt past wrap = %d, want 0", got)
	}
}

package wheel

import "math"

// Easing curves for the spin animation. Input is normalized progress in
// [0, 1]; output is the eased fraction of the total motion.

// EaseOutQuint decelerates hard at the end.
func EaseOutQuint(x float64) float64 {
	return 1 - math.Pow(1-x, 5)
}

// EaseOutCubic is the main deceleration curve of the forward spin.
func EaseOutCubic(x float64) float64 {
	return 1 - math.Pow(1-x, 3)
}

// EaseInOutQuad accelerates then decelerates symmetrically. Used for the
// backward wind-up.
func EaseInOutQuad(x float64) float64 {
	if x < 0.5 {
		return 2 * x * x
	}
	return 1 - math.Pow(-2*x+2, 2)/2
}

// EaseOutBack overshoots the target slightly before settling on it.
func EaseOutBack(x float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	return 1 + c3*math.Pow(x-1, 3) + c1*math.Pow(x-1, 2)
}

// SettleWobble returns a dampened sine oscillation, in degrees, that is
// superimposed on the wheel angle near the end of a spin. u is overall
// spin progress; the wobble is zero before start and fades out
// exponentially over the remaining fraction.
func SettleWobble(u, amplitude, start float64) float64 {
	if amplitude <= 0 || u < start {
		return 0
	}
	t := (u - start) / (1 - start)
	return amplitude * math.Sin(math.Pi*t) * math.Exp(-3.0*t)
}

package main

import "math"

// easeOut is the standard ease-out curve 1-(1-t)^p for t in [0,1].
func easeOut(t, p float64) float64 {
	return 1 - math.Pow(1-t, p)
}

// slideOffset computes the text position at a given step of the slide-in:
// start + (end-start) * easeOut(step/steps, p). Step 0 is exactly start and
// step == steps is exactly end.
func slideOffset(start, end float64, step, steps int, p float64) float64 {
	if steps <= 0 {
		return end
	}
	t := float64(step) / float64(steps)
	return start + (end-start)*easeOut(t, p)
}

// imageScale computes the image scale at progress t in [0,1]. With bounce
// enabled this is a three-phase curve: linear growth to the overshoot
// multiplier, linear settle-back to the intermediate scale, then an eased
// settle to exactly 1.0. Without bounce it is a plain ease-out ramp.
// The result is clamped to be non-negative and lands on exactly 1.0 at t=1.
func imageScale(t float64, b BounceSpec) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}

	var s float64
	switch {
	case !b.Enabled:
		s = easeOut(t, 2)
	case t <= b.GrowUntil:
		s = t / b.GrowUntil * b.Overshoot
	case t <= b.SettleUntil:
		u := (t - b.GrowUntil) / (b.SettleUntil - b.GrowUntil)
		s = b.Overshoot + (b.Intermediate-b.Overshoot)*u
	default:
		u := (t - b.SettleUntil) / (1 - b.SettleUntil)
		s = b.Intermediate + (1-b.Intermediate)*easeOut(u, 2)
	}

	return math.Max(0, s)
}

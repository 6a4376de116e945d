package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Lerp interpolates between a and b. t == 0 returns a and t == 1 returns b
// exactly, which the plain a + (b-a)*t form does not guarantee.
func Lerp[T constraints.Float](a, b, t T) T {
	return a*(1-t) + b*t
}

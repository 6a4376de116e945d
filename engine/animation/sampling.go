package animation

import (
	"sort"

	"github.com/spaghettifunk/anima-runtime/engine/math"
)

// GetInterpolatedTransform samples ch at tick, blending between the two
// bracketing keys. Tracks without keys keep the value from original.
func GetInterpolatedTransform(tick float64, ch *Channel, original math.Transform) math.Transform {
	return math.TransformFromPositionRotationScale(
		interpolatedVector(tick, ch.PositionKeys, original.Position),
		interpolatedRotation(tick, ch.RotationKeys, original.Rotation),
		interpolatedVector(tick, ch.ScaleKeys, original.Scale),
	)
}

// GetPoseToPoseTransform samples ch at tick without interpolation: each
// track takes the key at or immediately before tick.
func GetPoseToPoseTransform(tick float64, ch *Channel, original math.Transform) math.Transform {
	out := original
	if i, ok := precedingVectorKey(tick, ch.PositionKeys); ok {
		out.Position = ch.PositionKeys[i].Value
	}
	if i, ok := precedingQuatKey(tick, ch.RotationKeys); ok {
		out.Rotation = ch.RotationKeys[i].Value
	}
	if i, ok := precedingVectorKey(tick, ch.ScaleKeys); ok {
		out.Scale = ch.ScaleKeys[i].Value
	}
	out.IsDirty = true
	return out
}

// bracket returns i such that times(i) <= tick < times(i+1), clamped to the
// ends, and reports whether tick lands exactly on key i or outside the range
// (in which case no interpolation is needed).
func bracket(n int, time func(int) float64, tick float64) (int, bool) {
	if n == 1 || tick <= time(0) {
		return 0, true
	}
	if tick >= time(n-1) {
		return n - 1, true
	}
	// first key strictly after tick
	next := sort.Search(n, func(i int) bool { return time(i) > tick })
	prev := next - 1
	return prev, time(prev) == tick
}

func blendFactor(t0, t1, tick float64) float32 {
	span := t1 - t0
	if span <= 0 {
		return 1
	}
	return float32(math.Clamp((tick-t0)/span, 0, 1))
}

func interpolatedVector(tick float64, keys []VectorKey, original math.Vec3) math.Vec3 {
	if len(keys) == 0 {
		return original
	}
	i, exact := bracket(len(keys), func(i int) float64 { return keys[i].Time }, tick)
	if exact {
		return keys[i].Value
	}
	a, b := keys[i], keys[i+1]
	return a.Value.Lerp(b.Value, blendFactor(a.Time, b.Time, tick))
}

func interpolatedRotation(tick float64, keys []QuatKey, original math.Quaternion) math.Quaternion {
	if len(keys) == 0 {
		return original
	}
	i, exact := bracket(len(keys), func(i int) float64 { return keys[i].Time }, tick)
	if exact {
		return keys[i].Value
	}
	a, b := keys[i], keys[i+1]
	return a.Value.Slerp(b.Value, blendFactor(a.Time, b.Time, tick))
}

func precedingVectorKey(tick float64, keys []VectorKey) (int, bool) {
	if len(keys) == 0 {
		return 0, false
	}
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > tick }) - 1
	if i < 0 {
		i = 0
	}
	return i, true
}

func precedingQuatKey(tick float64, keys []QuatKey) (int, bool) {
	if len(keys) == 0 {
		return 0, false
	}
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > tick }) - 1
	if i < 0 {
		i = 0
	}
	return i, true
}

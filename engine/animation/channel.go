package animation

import (
	"sort"

	"github.com/spaghettifunk/anima-runtime/engine/math"
)

// VectorKey is a position or scale sample at a tick.
type VectorKey struct {
	Time  float64
	Value math.Vec3
}

// QuatKey is a rotation sample at a tick.
type QuatKey struct {
	Time  float64
	Value math.Quaternion
}

// Channel is the track of one bone: position, rotation and scale samples,
// each sorted by time. The three tracks may have different lengths.
type Channel struct {
	Name         string
	PositionKeys []VectorKey
	RotationKeys []QuatKey
	ScaleKeys    []VectorKey
}

// HasKeys reports whether the channel can contribute a transform at all.
func (c *Channel) HasKeys() bool {
	return len(c.PositionKeys) > 0 || len(c.RotationKeys) > 0 || len(c.ScaleKeys) > 0
}

func (c *Channel) sortKeys() {
	sort.SliceStable(c.PositionKeys, func(i, j int) bool { return c.PositionKeys[i].Time < c.PositionKeys[j].Time })
	sort.SliceStable(c.RotationKeys, func(i, j int) bool { return c.RotationKeys[i].Time < c.RotationKeys[j].Time })
	sort.SliceStable(c.ScaleKeys, func(i, j int) bool { return c.ScaleKeys[i].Time < c.ScaleKeys[j].Time })
}

// PrevKeyframe returns the latest key time strictly before tick on any track,
// or false when there is none.
func (c *Channel) PrevKeyframe(tick float64) (float64, bool) {
	best, found := 0.0, false
	visit := func(t float64) {
		if t < tick && (!found || t > best) {
			best, found = t, true
		}
	}
	for _, k := range c.PositionKeys {
		visit(k.Time)
	}
	for _, k := range c.RotationKeys {
		visit(k.Time)
	}
	for _, k := range c.ScaleKeys {
		visit(k.Time)
	}
	return best, found
}

// NextKeyframe returns the earliest key time strictly after tick on any
// track, or false when there is none.
func (c *Channel) NextKeyframe(tick float64) (float64, bool) {
	best, found := 0.0, false
	visit := func(t float64) {
		if t > tick && (!found || t < best) {
			best, found = t, true
		}
	}
	for _, k := range c.PositionKeys {
		visit(k.Time)
	}
	for _, k := range c.RotationKeys {
		visit(k.Time)
	}
	for _, k := range c.ScaleKeys {
		visit(k.Time)
	}
	return best, found
}

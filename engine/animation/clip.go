package animation

import (
	"fmt"

	"github.com/spaghettifunk/anima-runtime/engine/core"
)

// AnimatorClip is a named window [Start, End] in ticks of one animation,
// e.g. "Idle", "Walk" or "Attack" cut from a single imported take.
type AnimatorClip struct {
	Name          string
	AnimationName string
	Start         float64
	End           float64
	Speed         float32
	Loop          bool
	Interruptible bool
}

func NewAnimatorClip(name, animationName string, start, end float64, loop bool) AnimatorClip {
	return AnimatorClip{
		Name:          name,
		AnimationName: animationName,
		Start:         start,
		End:           end,
		Speed:         1.0,
		Loop:          loop,
		Interruptible: true,
	}
}

func (c AnimatorClip) Duration() float64 {
	return c.End - c.Start
}

// Validate checks the clip against the animation it refers to.
func (c AnimatorClip) Validate(anim *Animation) error {
	if c.Name == "" {
		return fmt.Errorf("%w: clip without name", core.ErrInvalidAnimation)
	}
	if anim == nil || anim.Name != c.AnimationName {
		return fmt.Errorf("%w: clip '%s' refers to unknown animation '%s'", core.ErrAnimationNotFound, c.Name, c.AnimationName)
	}
	if c.Start < 0 || c.End < c.Start || c.End > anim.Duration {
		return fmt.Errorf("%w: clip '%s' window [%f, %f] outside [0, %f]", core.ErrInvalidAnimation, c.Name, c.Start, c.End, anim.Duration)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("%w: clip '%s' has non-positive speed", core.ErrInvalidAnimation, c.Name)
	}
	return nil
}

package animation

import (
	"fmt"
	"slices"

	"github.com/spaghettifunk/anima-runtime/engine/core"
)

// Ticks per second assumed when an asset does not specify one.
const DefaultTicksPerSecond float64 = 25.0

// Animation is an imported asset: a set of bone channels, a duration in
// ticks and the tick rate. It is read-only once created and may be shared
// by any number of animators. Its lifetime belongs to the resource manager,
// which marks it unloaded instead of freeing it under a live animator.
type Animation struct {
	UID            core.UID
	Name           string
	Duration       float64
	TicksPerSecond float64

	channels map[string]*Channel
	order    []string
	unloaded bool
}

// NewAnimation validates the channels, sorts their keys and builds the
// asset. Channel names must be unique.
func NewAnimation(name string, duration, ticksPerSecond float64, channels []Channel) (*Animation, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: animation without name", core.ErrInvalidAnimation)
	}
	if duration < 0 {
		return nil, fmt.Errorf("%w: '%s' has negative duration %f", core.ErrInvalidAnimation, name, duration)
	}
	if ticksPerSecond <= 0 {
		ticksPerSecond = DefaultTicksPerSecond
	}

	a := &Animation{
		UID:            core.NewUID(),
		Name:           name,
		Duration:       duration,
		TicksPerSecond: ticksPerSecond,
		channels:       make(map[string]*Channel, len(channels)),
		order:          make([]string, 0, len(channels)),
	}
	for i := range channels {
		ch := channels[i]
		if ch.Name == "" {
			return nil, fmt.Errorf("%w: '%s' channel %d has no name", core.ErrInvalidAnimation, name, i)
		}
		if _, dup := a.channels[ch.Name]; dup {
			return nil, fmt.Errorf("%w: '%s' has duplicate channel '%s'", core.ErrInvalidAnimation, name, ch.Name)
		}
		ch.PositionKeys = slices.Clone(ch.PositionKeys)
		ch.RotationKeys = slices.Clone(ch.RotationKeys)
		ch.ScaleKeys = slices.Clone(ch.ScaleKeys)
		ch.sortKeys()
		a.channels[ch.Name] = &ch
		a.order = append(a.order, ch.Name)
	}
	return a, nil
}

func (a *Animation) Channel(name string) (*Channel, bool) {
	ch, ok := a.channels[name]
	return ch, ok
}

// ChannelNames returns the channel names in asset order.
func (a *Animation) ChannelNames() []string {
	return a.order
}

func (a *Animation) ChannelCount() int {
	return len(a.order)
}

// DurationSeconds is the duration converted with the asset tick rate.
func (a *Animation) DurationSeconds() float64 {
	return a.Duration / a.TicksPerSecond
}

// MarkUnloaded is called by the resource manager, on the frame thread, when
// the asset is dropped. Animators holding it clear it on their next update.
func (a *Animation) MarkUnloaded() {
	a.unloaded = true
}

func (a *Animation) IsUnloaded() bool {
	return a.unloaded
}

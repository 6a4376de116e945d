package loaders

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-runtime/engine/animation"
	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/math"
)

// AnimationExtension marks TOML animation files.
const AnimationExtension = ".anim"

/**
 * @brief On-disk layout of an animation file:
 *
 *	name = "Walk"
 *	duration = 20.0
 *	ticks_per_second = 10.0
 *
 *	[[channels]]
 *	name = "Hip"
 *	position_keys = [{ time = 0.0, value = [0.0, 0.0, 0.0] }]
 *	rotation_keys = [{ time = 0.0, value = [0.0, 0.0, 0.0, 1.0] }]
 */
type AnimationFile struct {
	Name           string        `toml:"name"`
	Duration       float64       `toml:"duration"`
	TicksPerSecond float64       `toml:"ticks_per_second"`
	Channels       []ChannelFile `toml:"channels"`
}

type ChannelFile struct {
	Name         string    `toml:"name"`
	PositionKeys []KeyFile `toml:"position_keys,omitempty"`
	RotationKeys []KeyFile `toml:"rotation_keys,omitempty"`
	ScaleKeys    []KeyFile `toml:"scale_keys,omitempty"`
}

// KeyFile holds three values for position and scale keys, four (x, y, z, w)
// for rotation keys.
type KeyFile struct {
	Time  float64   `toml:"time"`
	Value []float32 `toml:"value"`
}

type AnimationLoader struct{}

func (AnimationLoader) Extension() string {
	return AnimationExtension
}

func (l AnimationLoader) Load(path string) (*animation.Animation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Decode(data, path)
}

// Decode parses data. source names the file in errors and provides the
// animation name when the file has none.
func (AnimationLoader) Decode(data []byte, source string) (*animation.Animation, error) {
	var file AnimationFile
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", core.ErrInvalidAnimation, source, err)
	}
	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	channels := make([]animation.Channel, 0, len(file.Channels))
	for _, cf := range file.Channels {
		ch := animation.Channel{Name: cf.Name}
		var err error
		if ch.PositionKeys, err = vectorKeys(cf.PositionKeys); err != nil {
			return nil, fmt.Errorf("%w: %s: channel '%s' position: %s", core.ErrInvalidAnimation, source, cf.Name, err)
		}
		if ch.RotationKeys, err = quatKeys(cf.RotationKeys); err != nil {
			return nil, fmt.Errorf("%w: %s: channel '%s' rotation: %s", core.ErrInvalidAnimation, source, cf.Name, err)
		}
		if ch.ScaleKeys, err = vectorKeys(cf.ScaleKeys); err != nil {
			return nil, fmt.Errorf("%w: %s: channel '%s' scale: %s", core.ErrInvalidAnimation, source, cf.Name, err)
		}
		channels = append(channels, ch)
	}

	anim, err := animation.NewAnimation(file.Name, file.Duration, file.TicksPerSecond, channels)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return anim, nil
}

// Encode writes anim in the layout Decode reads.
func (AnimationLoader) Encode(anim *animation.Animation) ([]byte, error) {
	file := AnimationFile{
		Name:           anim.Name,
		Duration:       anim.Duration,
		TicksPerSecond: anim.TicksPerSecond,
	}
	for _, name := range anim.ChannelNames() {
		ch, _ := anim.Channel(name)
		cf := ChannelFile{Name: name}
		for _, k := range ch.PositionKeys {
			cf.PositionKeys = append(cf.PositionKeys, KeyFile{Time: k.Time, Value: []float32{k.Value.X, k.Value.Y, k.Value.Z}})
		}
		for _, k := range ch.RotationKeys {
			cf.RotationKeys = append(cf.RotationKeys, KeyFile{Time: k.Time, Value: []float32{k.Value.X, k.Value.Y, k.Value.Z, k.Value.W}})
		}
		for _, k := range ch.ScaleKeys {
			cf.ScaleKeys = append(cf.ScaleKeys, KeyFile{Time: k.Time, Value: []float32{k.Value.X, k.Value.Y, k.Value.Z}})
		}
		file.Channels = append(file.Channels, cf)
	}
	return toml.Marshal(file)
}

func vectorKeys(keys []KeyFile) ([]animation.VectorKey, error) {
	out := make([]animation.VectorKey, 0, len(keys))
	for i, k := range keys {
		if len(k.Value) != 3 {
			return nil, fmt.Errorf("key %d has %d values, want 3", i, len(k.Value))
		}
		out = append(out, animation.VectorKey{Time: k.Time, Value: math.NewVec3(k.Value[0], k.Value[1], k.Value[2])})
	}
	return out, nil
}

func quatKeys(keys []KeyFile) ([]animation.QuatKey, error) {
	out := make([]animation.QuatKey, 0, len(keys))
	for i, k := range keys {
		if len(k.Value) != 4 {
			return nil, fmt.Errorf("key %d has %d values, want 4", i, len(k.Value))
		}
		q := math.NewQuat(k.Value[0], k.Value[1], k.Value[2], k.Value[3])
		out = append(out, animation.QuatKey{Time: k.Time, Value: q})
	}
	return out, nil
}

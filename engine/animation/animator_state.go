package animation

import (
	"maps"
	"slices"

	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/serialization"
)

// SaveState writes the configuration of the animator. Assets are stored by
// name only; the cursor, bone links and display data are never saved.
func (a *Animator) SaveState(root *serialization.Node) bool {
	names := root.SetArray("animations")
	for _, anim := range a.animations {
		names.AppendString(anim.Name)
	}
	for _, name := range a.pendingAnimations {
		names.AppendString(name)
	}

	clips := root.SetArray("clips")
	for _, name := range sortedKeys(a.clips) {
		c := a.clips[name]
		node := clips.AppendNode()
		node.SetString("name", c.Name)
		node.SetString("animation", c.AnimationName)
		node.SetNumber("start", c.Start)
		node.SetNumber("end", c.End)
		node.SetNumber("speed", float64(c.Speed))
		node.SetBool("loop", c.Loop)
		node.SetBool("interruptible", c.Interruptible)
	}

	root.SetString("current_animation", a.GetAnimationName())
	clipName := a.pendingClipName
	if a.currentClip != nil {
		clipName = a.currentClip.Name
	}
	root.SetString("current_clip", clipName)
	root.SetString("root_bone", a.rootBoneName)

	root.SetNumber("playback_speed", float64(a.playbackSpeed))
	root.SetBool("interpolate", a.interpolate)
	root.SetBool("loop_animation", a.loopAnimation)
	root.SetBool("play_on_start", a.playOnStart)
	root.SetBool("camera_culling", a.cameraCulling)
	root.SetBool("show_bones", a.showBones)
	return true
}

// LoadState restores what SaveState wrote. The node is validated before
// anything is applied: a malformed clip list leaves the animator untouched
// and returns false. Animations the provider cannot resolve yet are kept by
// name and resolved on a later update.
func (a *Animator) LoadState(root *serialization.Node) bool {
	var names []string
	if arr, ok := root.GetArray("animations"); ok {
		for i := 0; i < arr.Len(); i++ {
			name, ok := arr.GetString(i)
			if !ok {
				core.LogDebug("animator state: animations[%d] is not a string", i)
				return false
			}
			names = append(names, name)
		}
	}

	var clips []AnimatorClip
	if arr, ok := root.GetArray("clips"); ok {
		for i := 0; i < arr.Len(); i++ {
			node, ok := arr.GetNode(i)
			if !ok {
				core.LogDebug("animator state: clips[%d] is not an object", i)
				return false
			}
			clip, ok := readClip(node)
			if !ok || !contains(names, clip.AnimationName) {
				core.LogDebug("animator state: clip %d is malformed or refers to an unknown animation", i)
				return false
			}
			clips = append(clips, clip)
		}
	}

	currentName, _ := root.GetString("current_animation")
	clipName, _ := root.GetString("current_clip")
	if clipName != "" && !clipNamed(clips, clipName) {
		core.LogDebug("animator state: current clip '%s' is not defined", clipName)
		return false
	}

	if v, ok := root.GetNumber("playback_speed"); ok {
		a.playbackSpeed = float32(v)
	}
	if v, ok := root.GetBool("interpolate"); ok {
		a.interpolate = v
	}
	if v, ok := root.GetBool("loop_animation"); ok {
		a.loopAnimation = v
	}
	if v, ok := root.GetBool("play_on_start"); ok {
		a.playOnStart = v
	}
	if v, ok := root.GetBool("camera_culling"); ok {
		a.cameraCulling = v
	}
	if v, ok := root.GetBool("show_bones"); ok {
		a.showBones = v
	}
	if v, ok := root.GetString("root_bone"); ok {
		a.rootBoneName = v
		a.rootBone = nil
	}

	a.ClearCurrentAnimation()
	a.animations = nil
	a.animationBones = make(map[core.UID][]BoneLink)
	a.clips = make(map[string]*AnimatorClip, len(clips))
	for i := range clips {
		c := clips[i]
		a.clips[c.Name] = &c
	}
	a.pendingAnimations = names
	a.pendingCurrentName = currentName
	a.pendingClipName = clipName
	a.started = false

	a.resolvePending()
	return true
}

// resolvePending turns names restored by LoadState into assets as soon as
// the provider knows them.
func (a *Animator) resolvePending() {
	if len(a.pendingAnimations) == 0 && a.pendingCurrentName == "" && a.pendingClipName == "" {
		return
	}
	if a.provider == nil {
		return
	}

	remaining := a.pendingAnimations[:0]
	for _, name := range a.pendingAnimations {
		anim, ok := a.provider.GetAnimation(name)
		if !ok {
			remaining = append(remaining, name)
			continue
		}
		a.addAnimation(anim)
	}
	a.pendingAnimations = remaining
	if len(remaining) > 0 {
		return
	}

	switch {
	case a.pendingClipName != "":
		name := a.pendingClipName
		if !a.SetCurrentClip(name) {
			core.LogWarn("animator on '%s': could not restore clip '%s'", a.Owner().Name, name)
			a.pendingClipName = ""
		}
		a.pendingCurrentName = ""
	case a.pendingCurrentName != "":
		name := a.pendingCurrentName
		if !a.SetCurrentAnimationByName(name) {
			core.LogWarn("animator on '%s': could not restore animation '%s'", a.Owner().Name, name)
		}
		a.pendingCurrentName = ""
	}
}

func readClip(node *serialization.Node) (AnimatorClip, bool) {
	name, ok1 := node.GetString("name")
	animName, ok2 := node.GetString("animation")
	start, ok3 := node.GetNumber("start")
	end, ok4 := node.GetNumber("end")
	if !ok1 || !ok2 || !ok3 || !ok4 || name == "" || end < start || start < 0 {
		return AnimatorClip{}, false
	}
	clip := NewAnimatorClip(name, animName, start, end, false)
	if v, ok := node.GetNumber("speed"); ok {
		clip.Speed = float32(v)
	}
	if clip.Speed <= 0 {
		return AnimatorClip{}, false
	}
	if v, ok := node.GetBool("loop"); ok {
		clip.Loop = v
	}
	if v, ok := node.GetBool("interruptible"); ok {
		clip.Interruptible = v
	}
	return clip, true
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func clipNamed(clips []AnimatorClip, name string) bool {
	for _, c := range clips {
		if c.Name == name {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

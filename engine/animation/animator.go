package animation

import (
	m "math"

	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/math"
	"github.com/spaghettifunk/anima-runtime/engine/scene"
	"github.com/tanema/gween/ease"
)

type PlaybackState uint8

const (
	PlaybackStopped PlaybackState = iota
	PlaybackPlaying
	PlaybackPaused
	// One-shot state while Step advances a single tick.
	PlaybackStepping
)

func (s PlaybackState) String() string {
	switch s {
	case PlaybackStopped:
		return "stopped"
	case PlaybackPlaying:
		return "playing"
	case PlaybackPaused:
		return "paused"
	case PlaybackStepping:
		return "stepping"
	default:
		return "unknown"
	}
}

// AnimationProvider resolves shared animation assets by name. The resource
// manager implements it.
type AnimationProvider interface {
	GetAnimation(name string) (*Animation, bool)
}

// Culler tells the animator whether its owner is visible to any camera.
type Culler interface {
	IsVisible(g *scene.GameObject) bool
}

// Animator drives skeletal animation: it samples the channels of the current
// animation every frame and writes the result into the transforms of the
// bone game objects found under the root bone.
type Animator struct {
	scene.BaseComponent

	time     scene.Time
	provider AnimationProvider
	culler   Culler

	animations     []*Animation
	animationBones map[core.UID][]BoneLink
	clips          map[string]*AnimatorClip

	currentBones  []BoneLink
	blendingBones []BoneLink
	blendSource   map[*scene.GameObject]math.Transform

	currentClip        *AnimatorClip
	currentAnimation   *Animation
	blendingAnimation  *Animation
	rootBone           *scene.GameObject
	rootBoneName       string
	pendingAnimations  []string
	pendingCurrentName string
	pendingClipName    string

	blendFrames     uint32
	blendFramesLeft uint32
	blendCurve      ease.TweenFunc
	lastBlendFactor float32

	state   PlaybackState
	started bool

	rawTick         float64
	animationTick   float64
	blendingRawTick float64
	blendingTick    float64

	playbackSpeed float32
	interpolate   bool
	loopAnimation bool
	playOnStart   bool
	cameraCulling bool
	showBones     bool
}

// NewAnimator creates an animator for owner. time supplies the frame delta;
// provider may be nil when animations are only added directly.
func NewAnimator(owner *scene.GameObject, time scene.Time, provider AnimationProvider) *Animator {
	return &Animator{
		BaseComponent:  scene.NewBaseComponent(owner, scene.ComponentTypeAnimator),
		time:           time,
		provider:       provider,
		animationBones: make(map[core.UID][]BoneLink),
		clips:          make(map[string]*AnimatorClip),
		blendCurve:     ease.Linear,
		playbackSpeed:  1.0,
		interpolate:    true,
		loopAnimation:  true,
	}
}

// Factory returns a scene.ComponentFactory building animators that share
// time, provider and culler, for loading scenes from disk. culler may be nil.
func Factory(time scene.Time, provider AnimationProvider, culler Culler) scene.ComponentFactory {
	return func(owner *scene.GameObject) scene.Component {
		a := NewAnimator(owner, time, provider)
		if culler != nil {
			a.SetCuller(culler)
		}
		return a
	}
}

func (a *Animator) SetProvider(provider AnimationProvider) {
	a.provider = provider
}

func (a *Animator) SetCuller(culler Culler) {
	a.culler = culler
}

// SetBlendCurve changes how the blend weight grows over the blend frames.
// The curve is evaluated with begin 0, change 1 and must return 1 at the end.
func (a *Animator) SetBlendCurve(curve ease.TweenFunc) {
	if curve == nil {
		curve = ease.Linear
	}
	a.blendCurve = curve
}

func (a *Animator) Update() bool {
	a.dropUnloaded()
	a.resolvePending()

	if !a.started {
		a.started = true
		if a.playOnStart && a.currentAnimation != nil {
			a.Play()
		}
	}

	if a.state != PlaybackPlaying {
		return true
	}
	dt := a.time.DeltaTime()
	if !a.StepAnimation(dt) {
		return false
	}
	if a.blendingAnimation != nil {
		return a.BlendAnimation(dt)
	}
	return true
}

func (a *Animator) CleanUp() bool {
	a.animations = nil
	a.animationBones = make(map[core.UID][]BoneLink)
	a.clips = make(map[string]*AnimatorClip)
	a.currentBones = nil
	a.blendingBones = nil
	a.blendSource = nil
	a.currentClip = nil
	a.currentAnimation = nil
	a.blendingAnimation = nil
	a.rootBone = nil
	a.state = PlaybackStopped
	return true
}

// --- Playback

func (a *Animator) Play() bool {
	if a.currentAnimation == nil {
		core.LogDebug("animator on '%s' has no current animation to play", a.Owner().Name)
		return false
	}
	a.state = PlaybackPlaying
	return true
}

func (a *Animator) Pause() bool {
	switch a.state {
	case PlaybackPlaying:
		a.state = PlaybackPaused
		return true
	case PlaybackPaused:
		return true
	default:
		return false
	}
}

// Step advances a paused animator by exactly one tick and re-poses the
// bones, independently of wall-clock time and playback speed.
func (a *Animator) Step() bool {
	if a.state != PlaybackPaused || a.currentAnimation == nil || !a.ensureCurrentBones() {
		return false
	}
	a.state = PlaybackStepping
	a.advance(1)
	a.poseCurrent()
	a.state = PlaybackPaused
	return true
}

// Stop resets the cursor to the start, drops any blend and poses the bones
// at tick zero.
func (a *Animator) Stop() bool {
	a.state = PlaybackStopped
	a.rawTick = 0
	a.animationTick = a.windowStart()
	a.ClearBlendingAnimation()
	if a.currentAnimation != nil && a.ensureCurrentBones() {
		a.poseCurrent()
	}
	return true
}

// StepToPrevKeyframe moves a paused cursor to the nearest earlier keyframe on
// any bone of the current animation.
func (a *Animator) StepToPrevKeyframe() bool {
	if a.state == PlaybackPlaying || a.currentAnimation == nil || !a.ensureCurrentBones() {
		return false
	}
	target, found := 0.0, false
	for _, link := range a.currentBones {
		if t, ok := link.Channel.PrevKeyframe(a.animationTick); ok && (!found || t > target) {
			target, found = t, true
		}
	}
	if !found || target < a.windowStart() {
		return false
	}
	a.rawTick = target - a.windowStart()
	a.animationTick = target
	a.poseCurrent()
	return true
}

// StepToNextKeyframe moves a paused cursor to the nearest later keyframe on
// any bone of the current animation.
func (a *Animator) StepToNextKeyframe() bool {
	if a.state == PlaybackPlaying || a.currentAnimation == nil || !a.ensureCurrentBones() {
		return false
	}
	target, found := 0.0, false
	for _, link := range a.currentBones {
		if t, ok := link.Channel.NextKeyframe(a.animationTick); ok && (!found || t < target) {
			target, found = t, true
		}
	}
	if !found || target > a.windowStart()+a.windowDuration() {
		return false
	}
	a.rawTick = target - a.windowStart()
	a.animationTick = target
	a.poseCurrent()
	return true
}

// StepAnimation advances the cursor by dt seconds and writes the sampled
// local transforms into the bones of the current animation.
func (a *Animator) StepAnimation(dt float32) bool {
	if a.currentAnimation == nil {
		return false
	}
	if !a.ensureCurrentBones() {
		return false
	}
	speed := float64(a.playbackSpeed)
	if a.currentClip != nil {
		speed *= float64(a.currentClip.Speed)
	}
	a.advance(float64(dt) * speed * a.currentAnimation.TicksPerSecond)

	if a.isCulled() {
		return true
	}
	a.poseCurrent()
	return true
}

// advance moves the raw cursor by ticks and derives animationTick: wrapped
// into [0, duration) when looping, otherwise held at the end.
func (a *Animator) advance(ticks float64) {
	duration := a.windowDuration()
	a.rawTick += ticks
	if a.rawTick < 0 {
		a.rawTick = 0
	}
	local := a.rawTick
	switch {
	case duration <= 0:
		local = 0
		a.rawTick = 0
	case a.loops():
		local = m.Mod(a.rawTick, duration)
	case a.rawTick >= duration:
		a.rawTick = duration
		local = duration
	}
	a.animationTick = a.windowStart() + local
}

func (a *Animator) poseCurrent() {
	for _, link := range a.currentBones {
		link.GameObject.Transform = a.sample(a.animationTick, link)
	}
}

func (a *Animator) sample(tick float64, link BoneLink) math.Transform {
	if a.interpolate {
		return GetInterpolatedTransform(tick, link.Channel, link.GameObject.Transform)
	}
	return GetPoseToPoseTransform(tick, link.Channel, link.GameObject.Transform)
}

func (a *Animator) loops() bool {
	if a.currentClip != nil {
		return a.currentClip.Loop
	}
	return a.loopAnimation
}

func (a *Animator) windowStart() float64 {
	if a.currentClip != nil {
		return a.currentClip.Start
	}
	return 0
}

func (a *Animator) windowDuration() float64 {
	if a.currentClip != nil {
		return a.currentClip.Duration()
	}
	if a.currentAnimation != nil {
		return a.currentAnimation.Duration
	}
	return 0
}

func (a *Animator) isCulled() bool {
	return a.cameraCulling && a.culler != nil && !a.culler.IsVisible(a.Owner())
}

// --- Blending

// SetBlendingAnimation starts a cross-fade from the current animation to
// target over blendFrames updates. Calling it while a blend is running
// restarts the fade towards the new target, starting from the pose the bones
// hold right now. Without a current animation, or with zero frames, target
// becomes current immediately.
func (a *Animator) SetBlendingAnimation(target *Animation, blendFrames uint32) bool {
	if target == nil {
		return false
	}
	a.addAnimation(target)
	if a.currentAnimation == nil || blendFrames == 0 {
		return a.SetCurrentAnimation(target)
	}

	if a.blendingAnimation != nil {
		a.blendSource = make(map[*scene.GameObject]math.Transform, len(a.blendingBones)+len(a.currentBones))
		for _, link := range a.currentBones {
			a.blendSource[link.GameObject] = link.GameObject.Transform
		}
		for _, link := range a.blendingBones {
			a.blendSource[link.GameObject] = link.GameObject.Transform
		}
	}

	a.blendingAnimation = target
	a.blendFrames = blendFrames
	a.blendFramesLeft = blendFrames
	a.blendingRawTick = 0
	a.blendingTick = 0
	a.lastBlendFactor = 0
	a.blendingBones = a.bonesFor(target)

	// Bones only the target animates are not rewritten by StepAnimation, so
	// they fade from the pose they hold now.
	animated := make(map[*scene.GameObject]struct{}, len(a.currentBones))
	for _, link := range a.currentBones {
		animated[link.GameObject] = struct{}{}
	}
	for _, link := range a.blendingBones {
		if _, ok := animated[link.GameObject]; ok {
			continue
		}
		if _, ok := a.blendSource[link.GameObject]; ok {
			continue
		}
		if a.blendSource == nil {
			a.blendSource = make(map[*scene.GameObject]math.Transform, len(a.blendingBones))
		}
		a.blendSource[link.GameObject] = link.GameObject.Transform
	}
	return true
}

// BlendAnimation samples the blending animation, mixes it over the pose
// written by StepAnimation and counts one blend frame down. On the last
// frame the weight is exactly 1 and the blending animation becomes current.
// The target's cursor advances with the animator playback speed only; the
// speed of the current clip does not apply to it, since the clip is dropped
// once the target takes over.
func (a *Animator) BlendAnimation(dt float32) bool {
	target := a.blendingAnimation
	if target == nil || a.blendFrames == 0 {
		return false
	}

	a.blendingRawTick += float64(dt) * float64(a.playbackSpeed) * target.TicksPerSecond
	if target.Duration > 0 {
		if a.loopAnimation {
			a.blendingTick = m.Mod(a.blendingRawTick, target.Duration)
		} else {
			a.blendingRawTick = m.Min(a.blendingRawTick, target.Duration)
			a.blendingTick = a.blendingRawTick
		}
	}

	if a.blendFramesLeft > 0 {
		a.blendFramesLeft--
	}
	elapsed := float32(a.blendFrames - a.blendFramesLeft)
	factor := math.Clamp(a.blendCurve(elapsed, 0, 1, float32(a.blendFrames)), 0, 1)
	if a.blendFramesLeft == 0 {
		factor = 1
	}
	a.lastBlendFactor = factor

	if !a.isCulled() {
		for _, link := range a.blendingBones {
			from := link.GameObject.Transform
			if src, ok := a.blendSource[link.GameObject]; ok {
				from = src
			}
			to := a.sample(a.blendingTick, link)
			link.GameObject.Transform = math.LerpTransform(from, to, factor)
		}
	}

	if a.blendFramesLeft == 0 {
		a.currentAnimation = target
		a.currentBones = a.blendingBones
		a.currentClip = nil
		a.rawTick = a.blendingRawTick
		a.animationTick = a.blendingTick
		a.clearBlend()
	}
	return true
}

// BlendFactor is the weight applied on the last blended frame.
func (a *Animator) BlendFactor() float32 {
	return a.lastBlendFactor
}

func (a *Animator) IsBlending() bool {
	return a.blendingAnimation != nil
}

func (a *Animator) BlendFramesLeft() uint32 {
	return a.blendFramesLeft
}

func (a *Animator) clearBlend() {
	a.blendingAnimation = nil
	a.blendingBones = nil
	a.blendSource = nil
	a.blendFrames = 0
	a.blendFramesLeft = 0
	a.blendingRawTick = 0
	a.blendingTick = 0
}

// --- Current animation

// AddAnimation registers a shared asset with the animator. Adding the same
// asset twice is a no-op.
func (a *Animator) AddAnimation(anim *Animation) {
	if anim == nil {
		return
	}
	a.addAnimation(anim)
}

func (a *Animator) addAnimation(anim *Animation) {
	for _, known := range a.animations {
		if known == anim {
			return
		}
	}
	a.animations = append(a.animations, anim)
}

func (a *Animator) Animations() []*Animation {
	return a.animations
}

// FindAnimation looks name up among the added animations and, failing that,
// asks the provider.
func (a *Animator) FindAnimation(name string) (*Animation, bool) {
	for _, anim := range a.animations {
		if anim.Name == name {
			return anim, true
		}
	}
	if a.provider != nil {
		if anim, ok := a.provider.GetAnimation(name); ok {
			a.addAnimation(anim)
			return anim, true
		}
	}
	return nil, false
}

// SetCurrentAnimation selects anim, resets the cursor and drops any blend
// and clip. Bones are linked lazily on the next update.
func (a *Animator) SetCurrentAnimation(anim *Animation) bool {
	if anim == nil {
		return false
	}
	a.addAnimation(anim)
	a.currentAnimation = anim
	a.currentClip = nil
	a.currentBones = a.animationBones[anim.UID]
	a.rawTick = 0
	a.animationTick = 0
	a.pendingCurrentName = ""
	a.clearBlend()
	return true
}

func (a *Animator) SetCurrentAnimationByName(name string) bool {
	anim, ok := a.FindAnimation(name)
	if !ok {
		core.LogDebug("animator on '%s': animation '%s' not found", a.Owner().Name, name)
		return false
	}
	return a.SetCurrentAnimation(anim)
}

func (a *Animator) ClearCurrentAnimation() {
	a.currentAnimation = nil
	a.currentClip = nil
	a.currentBones = nil
	a.rawTick = 0
	a.animationTick = 0
	a.state = PlaybackStopped
	a.clearBlend()
}

func (a *Animator) ClearBlendingAnimation() {
	a.clearBlend()
}

func (a *Animator) GetCurrentAnimation() *Animation {
	return a.currentAnimation
}

func (a *Animator) GetBlendingAnimation() *Animation {
	return a.blendingAnimation
}

// --- Clips

// AddClip registers clip; it replaces a clip with the same name. The clip's
// animation must be known to the animator or its provider.
func (a *Animator) AddClip(clip AnimatorClip) bool {
	anim, ok := a.FindAnimation(clip.AnimationName)
	if !ok {
		core.LogDebug("clip '%s': animation '%s' not found", clip.Name, clip.AnimationName)
		return false
	}
	if err := clip.Validate(anim); err != nil {
		core.LogDebug("clip '%s' rejected: %s", clip.Name, err)
		return false
	}
	c := clip
	a.clips[clip.Name] = &c
	return true
}

func (a *Animator) GetClip(name string) (AnimatorClip, bool) {
	c, ok := a.clips[name]
	if !ok {
		return AnimatorClip{}, false
	}
	return *c, true
}

// SetCurrentClip makes the clip's animation current and confines playback
// to the clip window.
func (a *Animator) SetCurrentClip(name string) bool {
	clip, ok := a.clips[name]
	if !ok {
		return false
	}
	anim, ok := a.FindAnimation(clip.AnimationName)
	if !ok {
		return false
	}
	a.SetCurrentAnimation(anim)
	a.currentClip = clip
	a.animationTick = clip.Start
	a.pendingClipName = ""
	return true
}

func (a *Animator) GetCurrentClip() (AnimatorClip, bool) {
	if a.currentClip == nil {
		return AnimatorClip{}, false
	}
	return *a.currentClip, true
}

// --- Root bone

// SetRootBone designates the object whose subtree holds the bones. When
// unset the owner is used.
func (a *Animator) SetRootBone(root *scene.GameObject) {
	a.rootBone = root
	a.rootBoneName = ""
	if root != nil {
		a.rootBoneName = root.Name
	}
	a.invalidateBones()
}

func (a *Animator) RootBone() *scene.GameObject {
	if a.rootBone == nil && a.rootBoneName != "" {
		a.rootBone = a.Owner().FindInHierarchy(a.rootBoneName)
	}
	if a.rootBone == nil {
		return a.Owner()
	}
	return a.rootBone
}

// --- Asset lifetime

func (a *Animator) dropUnloaded() {
	if a.blendingAnimation != nil && a.blendingAnimation.IsUnloaded() {
		core.LogWarn("blending animation '%s' was unloaded, dropping blend", a.blendingAnimation.Name)
		a.clearBlend()
	}
	if a.currentAnimation != nil && a.currentAnimation.IsUnloaded() {
		if fresh, ok := a.reloaded(a.currentAnimation); ok {
			core.LogInfo("animator on '%s' switched to the reloaded '%s'", a.Owner().Name, fresh.Name)
			a.rebind(fresh)
		} else {
			core.LogWarn("current animation '%s' was unloaded, clearing animator on '%s'", a.currentAnimation.Name, a.Owner().Name)
			a.ClearCurrentAnimation()
		}
	}
	kept := a.animations[:0]
	for _, anim := range a.animations {
		if anim.IsUnloaded() {
			delete(a.animationBones, anim.UID)
			continue
		}
		kept = append(kept, anim)
	}
	a.animations = kept
}

// reloaded returns the live asset the provider now serves under the name of
// the unloaded stale, if any.
func (a *Animator) reloaded(stale *Animation) (*Animation, bool) {
	if a.provider == nil {
		return nil, false
	}
	fresh, ok := a.provider.GetAnimation(stale.Name)
	if !ok || fresh == stale || fresh.IsUnloaded() {
		return nil, false
	}
	return fresh, true
}

// rebind replaces the current animation with a reloaded copy, keeping the
// playback state, the clip and the cursor.
func (a *Animator) rebind(fresh *Animation) {
	state, rawTick, clip := a.state, a.rawTick, a.currentClip
	a.SetCurrentAnimation(fresh)
	if clip != nil && clip.Validate(fresh) == nil {
		a.currentClip = clip
	}
	a.state = state
	a.rawTick = rawTick
	a.advance(0)
}

// --- Getters and setters

func (a *Animator) State() PlaybackState {
	return a.state
}

func (a *Animator) GetAnimationName() string {
	if a.currentAnimation != nil {
		return a.currentAnimation.Name
	}
	return a.pendingCurrentName
}

// GetAnimationTime is the position of the cursor in seconds from the start
// of the animation (or clip).
func (a *Animator) GetAnimationTime() float64 {
	if a.currentAnimation == nil {
		return 0
	}
	return (a.animationTick - a.windowStart()) / a.currentAnimation.TicksPerSecond
}

func (a *Animator) GetAnimationTick() float64 {
	return a.animationTick
}

func (a *Animator) GetCurrentTicksPerSecond() float64 {
	if a.currentAnimation == nil {
		return 0
	}
	return a.currentAnimation.TicksPerSecond
}

func (a *Animator) GetCurrentDuration() float64 {
	return a.windowDuration()
}

func (a *Animator) GetPlaybackSpeed() float32 { return a.playbackSpeed }
func (a *Animator) GetInterpolate() bool      { return a.interpolate }
func (a *Animator) GetLoopAnimation() bool    { return a.loopAnimation }
func (a *Animator) GetPlayOnStart() bool      { return a.playOnStart }
func (a *Animator) GetCameraCulling() bool    { return a.cameraCulling }
func (a *Animator) GetShowBones() bool        { return a.showBones }

func (a *Animator) SetPlaybackSpeed(speed float32) {
	if speed < 0 {
		speed = 0
	}
	a.playbackSpeed = speed
}

func (a *Animator) SetInterpolate(set bool)   { a.interpolate = set }
func (a *Animator) SetLoopAnimation(set bool) { a.loopAnimation = set }
func (a *Animator) SetPlayOnStart(set bool)   { a.playOnStart = set }
func (a *Animator) SetCameraCulling(set bool) { a.cameraCulling = set }
func (a *Animator) SetShowBones(set bool)     { a.showBones = set }

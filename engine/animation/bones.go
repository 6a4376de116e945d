package animation

import (
	"iter"

	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/math"
	"github.com/spaghettifunk/anima-runtime/engine/scene"
)

// BoneLink pairs a channel of an animation with the game object standing in
// for that bone.
type BoneLink struct {
	Channel    *Channel
	GameObject *scene.GameObject
}

// FindCurrentAnimationBones (re)links the channels of the current animation
// to the bones under the root bone.
func (a *Animator) FindCurrentAnimationBones() bool {
	if a.currentAnimation == nil {
		return false
	}
	delete(a.animationBones, a.currentAnimation.UID)
	a.currentBones = a.bonesFor(a.currentAnimation)
	return true
}

func (a *Animator) ensureCurrentBones() bool {
	if a.currentAnimation == nil {
		return false
	}
	if a.currentBones == nil {
		a.currentBones = a.bonesFor(a.currentAnimation)
	}
	return true
}

// bonesFor returns the cached links of anim, building them on first use.
// The result is never nil, so an animation whose channels matched no bone
// is not searched again every frame.
func (a *Animator) bonesFor(anim *Animation) []BoneLink {
	if links, ok := a.animationBones[anim.UID]; ok {
		return links
	}
	root := a.RootBone()
	links := LinkBones(anim, root)
	sorted := SortBoneLinksByHierarchy(links, root)
	a.animationBones[anim.UID] = sorted
	return sorted
}

func (a *Animator) invalidateBones() {
	a.animationBones = make(map[core.UID][]BoneLink)
	a.currentBones = nil
	if a.blendingAnimation != nil {
		a.blendingBones = a.bonesFor(a.blendingAnimation)
	}
}

// LinkBones matches every channel of anim with the first game object of the
// same name in the subtree of root. Channels without a bone or without keys
// are logged and dropped.
func LinkBones(anim *Animation, root *scene.GameObject) []BoneLink {
	byName := make(map[string]*scene.GameObject)
	root.Walk(func(g *scene.GameObject) bool {
		if _, seen := byName[g.Name]; !seen {
			byName[g.Name] = g
		}
		return true
	})

	links := make([]BoneLink, 0, anim.ChannelCount())
	for _, name := range anim.ChannelNames() {
		ch, _ := anim.Channel(name)
		if !ch.HasKeys() {
			core.LogWarn("animation '%s': channel '%s' has no keys, skipping", anim.Name, name)
			continue
		}
		bone, ok := byName[name]
		if !ok {
			core.LogWarn("animation '%s': no bone named '%s' under '%s'", anim.Name, name, root.Name)
			continue
		}
		links = append(links, BoneLink{Channel: ch, GameObject: bone})
	}
	return links
}

// SortBoneLinksByHierarchy orders links so that every bone comes after its
// ancestors: links are emitted in the depth-first order in which their game
// objects are visited from root. Links whose bone is outside the subtree of
// root are dropped.
func SortBoneLinksByHierarchy(links []BoneLink, root *scene.GameObject) []BoneLink {
	byObject := make(map[*scene.GameObject][]BoneLink, len(links))
	for _, link := range links {
		byObject[link.GameObject] = append(byObject[link.GameObject], link)
	}
	sorted := make([]BoneLink, 0, len(links))
	if root == nil {
		return sorted
	}
	root.Walk(func(g *scene.GameObject) bool {
		sorted = append(sorted, byObject[g]...)
		return true
	})
	return sorted
}

// BoneLinks returns the sorted links of the current animation.
func (a *Animator) BoneLinks() []BoneLink {
	a.ensureCurrentBones()
	return a.currentBones
}

// GetDisplayBones yields one segment per bone whose closest bone ancestor is
// also linked, from the ancestor's world position to the bone's. Positions
// are read while iterating, so the sequence reflects the transforms at the
// time it is consumed.
func (a *Animator) GetDisplayBones() iter.Seq[math.LineSegment] {
	links := a.BoneLinks()
	return func(yield func(math.LineSegment) bool) {
		linked := make(map[*scene.GameObject]struct{}, len(links))
		for _, link := range links {
			linked[link.GameObject] = struct{}{}
		}
		root := a.RootBone()
		for _, link := range links {
			bone := link.GameObject
			if bone == root {
				continue
			}
			for p := bone.Parent(); p != nil; p = p.Parent() {
				if _, ok := linked[p]; ok {
					seg := math.LineSegment{A: p.WorldPosition(), B: bone.WorldPosition()}
					if !yield(seg) {
						return
					}
					break
				}
				if p == root {
					break
				}
			}
		}
	}
}

// RefreshBoneDisplay relinks the bones of the current animation, e.g. after
// the hierarchy under the root bone changed.
func (a *Animator) RefreshBoneDisplay() bool {
	if a.currentAnimation == nil {
		return false
	}
	return a.FindCurrentAnimationBones()
}

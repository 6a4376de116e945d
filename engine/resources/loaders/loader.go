package loaders

import "github.com/spaghettifunk/anima-runtime/engine/animation"

/** @brief A loader for one kind of animation file. */
type ResourceLoader interface {
	/** @brief The file extension, with the dot, handled by this loader. */
	Extension() string
	Load(path string) (*animation.Animation, error)
	Decode(data []byte, source string) (*animation.Animation, error)
}

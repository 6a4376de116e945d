package resources

import (
	"path/filepath"
	"time"

	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/resources/loaders"
)

type ResourceType int

/** @brief Resource types known to the manager. */
const (
	/** @brief Not a resource file; ignored. */
	ResourceTypeNone ResourceType = iota
	/** @brief TOML animation file. */
	ResourceTypeAnimation
	/** @brief Saved scene, JSON or TOML. */
	ResourceTypeScene
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeAnimation:
		return "animation"
	case ResourceTypeScene:
		return "scene"
	default:
		return "none"
	}
}

/**
 * @brief Bookkeeping for a file loaded by the manager.
 */
type Resource struct {
	/** @brief The identifier of the loaded asset. */
	UID core.UID
	/** @brief The name the asset is registered under. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	Type     ResourceType
	LoadedAt time.Time
}

func determineResourceType(path string) ResourceType {
	switch filepath.Ext(path) {
	case loaders.AnimationExtension:
		return ResourceTypeAnimation
	case ".json", ".toml":
		return ResourceTypeScene
	default:
		return ResourceTypeNone
	}
}

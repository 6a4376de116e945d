package engine

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-runtime/engine/core"
)

type ApplicationConfig struct {
	// The application name, also used as the name of the start scene.
	Name     string        `toml:"name"`
	LogLevel core.LogLevel `toml:"log_level"`
	// Frames per second Run aims for. Zero runs frames back to back.
	TargetFPS uint32 `toml:"target_fps"`
	// Directory scanned for animation files on Initialize. Optional.
	AssetPath string `toml:"asset_path"`
	// Reload animation files under AssetPath when they change.
	WatchAssets bool `toml:"watch_assets"`
	// Workers of the job system used for loading.
	Workers int `toml:"workers"`
	// Run stops after this many frames. Zero runs until cancelled.
	MaxFrames uint64 `toml:"max_frames"`
	// Saved scene (.json or .toml) loaded on Initialize. Optional.
	Scene string `toml:"scene"`
}

func DefaultApplicationConfig() ApplicationConfig {
	return ApplicationConfig{
		Name:      "Anima",
		LogLevel:  core.LogLevelInfo,
		TargetFPS: 60,
		Workers:   2,
	}
}

// LoadApplicationConfig reads a TOML config file. Fields missing from the
// file keep their default values.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseApplicationConfig(data)
}

func ParseApplicationConfig(data []byte) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name must not be empty", core.ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", core.ErrInvalidConfig, c.Workers)
	}
	switch c.LogLevel {
	case core.LogLevelDebug, core.LogLevelInfo, core.LogLevelWarn, core.LogLevelError:
	default:
		return fmt.Errorf("%w: unknown log level '%s'", core.ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

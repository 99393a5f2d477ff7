package voxlight

import (
	"errors"
	"fmt"
	"os"

	"github.com/gekko3d/voxlight/terrain"
	"github.com/gekko3d/voxlight/voxel"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Attenuation is the per-step loss applied on top of each voxel's opacity.
	Attenuation uint8   `yaml:"attenuation"`
	VoxelSize   float32 `yaml:"voxel_size"`
	// ExactRemoval makes RemoveLight recompute the light's whole reach
	// instead of siphoning it out. Removal under an enabled sky always
	// recomputes.
	ExactRemoval bool          `yaml:"exact_removal"`
	Sky          SkyConfig     `yaml:"sky"`
	Log          LogConfig     `yaml:"log"`
	Terrain      TerrainConfig `yaml:"terrain"`
}

type SkyConfig struct {
	Enabled bool `yaml:"enabled"`
	// Color is R, G, B, Sky.
	Color [4]uint8 `yaml:"color,flow"`
	// Floor bounds sky columns from below in worlds without a finite extent.
	Floor int `yaml:"floor"`
	// Ceiling is where sky columns start in worlds without a finite extent.
	Ceiling int `yaml:"ceiling"`
}

type LogConfig struct {
	Prefix string `yaml:"prefix"`
	Debug  bool   `yaml:"debug"`
}

type TerrainConfig struct {
	Seed      int64   `yaml:"seed"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Depth     int     `yaml:"depth"`
	Base      int     `yaml:"base"`
	Amplitude float64 `yaml:"amplitude"`
	Scale     float64 `yaml:"scale"`
	Octaves   int     `yaml:"octaves"`

	WaterLevel int  `yaml:"water_level"`
	Caves      bool `yaml:"caves"`
}

func (t TerrainConfig) Params() terrain.Params {
	return terrain.Params{
		Seed:       t.Seed,
		Base:       t.Base,
		Amplitude:  t.Amplitude,
		Scale:      t.Scale,
		Octaves:    t.Octaves,
		WaterLevel: t.WaterLevel,
		Caves:      t.Caves,
	}
}

func DefaultConfig() Config {
	return Config{
		Attenuation: 17,
		VoxelSize:   0.1,
		Sky: SkyConfig{
			Enabled: true,
			Color:   [4]uint8{200, 200, 180, 255},
			Floor:   0,
			Ceiling: 127,
		},
		Log: LogConfig{Prefix: "voxlight"},
		Terrain: TerrainConfig{
			Seed:      1,
			Width:     64,
			Height:    64,
			Depth:     64,
			Base:      20,
			Amplitude: 12,
			Scale:     0.03,
			Octaves:   4,
			// below the lowest possible ground: dry
			WaterLevel: -1,
			Caves:      true,
		},
	}
}

// SkyLight is the configured sky colour as a light value.
func (c Config) SkyLight() voxel.Light {
	return voxel.Light(c.Sky.Color)
}

// LoadConfig reads a YAML file over DefaultConfig. Keys missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := ParseConfig(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML into cfg and validates the result.
func ParseConfig(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	return cfg.Validate()
}

var ErrInvalidConfig = errors.New("invalid config")

func (c Config) Validate() error {
	if c.VoxelSize <= 0 {
		return fmt.Errorf("%w: voxel_size must be positive, got %v", ErrInvalidConfig, c.VoxelSize)
	}
	if c.Sky.Ceiling < c.Sky.Floor {
		return fmt.Errorf("%w: sky ceiling %d below floor %d", ErrInvalidConfig, c.Sky.Ceiling, c.Sky.Floor)
	}
	t := c.Terrain
	if t.Width <= 0 || t.Height <= 0 || t.Depth <= 0 {
		return fmt.Errorf("%w: terrain dimensions %dx%dx%d", ErrInvalidConfig, t.Width, t.Height, t.Depth)
	}
	if t.Octaves < 1 {
		return fmt.Errorf("%w: terrain octaves must be at least 1", ErrInvalidConfig)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-theft-craft/worldgen/internal/world/storage"
)

// Config holds the sandbox configuration.
type Config struct {
	WorldName      string        `yaml:"world_name"`
	Seed           int64         `yaml:"seed"`
	LoadRadius     int           `yaml:"load_radius"`   // chunks
	UnloadRadius   int           `yaml:"unload_radius"` // chunks, >= load_radius
	TickRate       time.Duration `yaml:"tick_rate"`
	Workers        int           `yaml:"workers"`  // 0 = one per CPU
	DataDir        string        `yaml:"data_dir"` // "" = platform data directory
	StorageBackend string        `yaml:"storage_backend"`
	BiomeMode      string        `yaml:"biome_mode"`
	MeshScale      float32       `yaml:"mesh_scale"`
	DiagAddr       string        `yaml:"diag_addr"` // "" disables the stats stream
	FlightSpeed    float32       `yaml:"flight_speed"`
	Pregenerate    int           `yaml:"pregenerate"` // radius in chunks, 0 = off
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		WorldName:      "world",
		LoadRadius:     8,
		UnloadRadius:   8,
		TickRate:       50 * time.Millisecond,
		StorageBackend: "file",
		BiomeMode:      "single",
		MeshScale:      1,
		FlightSpeed:    12,
	}
}

// Load reads a YAML config file. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["world"] {
		cfg.WorldName = fromFile.WorldName
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["load-radius"] {
		cfg.LoadRadius = fromFile.LoadRadius
	}
	if !explicitFlags["unload-radius"] {
		cfg.UnloadRadius = fromFile.UnloadRadius
	}
	if !explicitFlags["tick-rate"] {
		cfg.TickRate = fromFile.TickRate
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["data-dir"] {
		cfg.DataDir = fromFile.DataDir
	}
	if !explicitFlags["storage"] {
		cfg.StorageBackend = fromFile.StorageBackend
	}
	if !explicitFlags["biomes"] {
		cfg.BiomeMode = fromFile.BiomeMode
	}
	if !explicitFlags["mesh-scale"] {
		cfg.MeshScale = fromFile.MeshScale
	}
	if !explicitFlags["diag"] {
		cfg.DiagAddr = fromFile.DiagAddr
	}
	if !explicitFlags["speed"] {
		cfg.FlightSpeed = fromFile.FlightSpeed
	}
	if !explicitFlags["pregen"] {
		cfg.Pregenerate = fromFile.Pregenerate
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := storage.ValidateWorldName(c.WorldName); err != nil {
		return fmt.Errorf("world name: %w", err)
	}
	switch {
	case c.LoadRadius < 1:
		return fmt.Errorf("load radius must be positive, got %d", c.LoadRadius)
	case c.UnloadRadius < c.LoadRadius:
		return fmt.Errorf("unload radius %d is smaller than load radius %d", c.UnloadRadius, c.LoadRadius)
	case c.TickRate <= 0:
		return fmt.Errorf("tick rate must be positive, got %s", c.TickRate)
	case c.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	case c.StorageBackend != "file" && c.StorageBackend != "leveldb":
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	case c.BiomeMode != "single" && c.BiomeMode != "climate":
		return fmt.Errorf("unknown biome mode %q", c.BiomeMode)
	case c.MeshScale <= 0:
		return fmt.Errorf("mesh scale must be positive, got %v", c.MeshScale)
	case c.Pregenerate < 0:
		return fmt.Errorf("pregenerate radius must not be negative, got %d", c.Pregenerate)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/danmuck/savestate/internal/page"
)

// Config is the resolved tool configuration. File values are overlaid on
// the defaults, then SAVESTATE_* environment variables on top.
type Config struct {
	CapacityBits int     `env:"SAVESTATE_CAPACITY_BITS"`
	StorePath    string  `env:"SAVESTATE_STORE_PATH"`
	HoldTicks    int     `env:"SAVESTATE_HOLD_TICKS"`
	Jitter       float64 `env:"SAVESTATE_JITTER"`
}

type fileConfig struct {
	CapacityBits int     `toml:"capacity_bits"`
	StorePath    string  `toml:"store_path"`
	HoldTicks    int     `toml:"hold_ticks"`
	Jitter       float64 `toml:"jitter"`
}

func Default() Config {
	return Config{
		CapacityBits: page.BitsPerPage,
		StorePath:    "savestate.db",
		HoldTicks:    1,
	}
}

// Load resolves configuration from path, or from defaults alone when path
// is empty, then applies the environment and validates.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StorePath = strings.TrimSpace(cfg.StorePath)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if meta.IsDefined("capacity_bits") {
		cfg.CapacityBits = raw.CapacityBits
	}
	if meta.IsDefined("store_path") {
		cfg.StorePath = raw.StorePath
	}
	if meta.IsDefined("hold_ticks") {
		cfg.HoldTicks = raw.HoldTicks
	}
	if meta.IsDefined("jitter") {
		cfg.Jitter = raw.Jitter
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}
	return nil
}

func Validate(cfg Config) error {
	if cfg.CapacityBits <= 0 || cfg.CapacityBits > page.BitsPerPage {
		return fmt.Errorf("capacity_bits must be in 1..%d, got %d", page.BitsPerPage, cfg.CapacityBits)
	}
	if cfg.HoldTicks < 1 {
		return fmt.Errorf("hold_ticks must be at least 1, got %d", cfg.HoldTicks)
	}
	if cfg.Jitter < 0 || cfg.Jitter >= 0.5 {
		return fmt.Errorf("jitter must be in [0, 0.5), got %g", cfg.Jitter)
	}
	return nil
}

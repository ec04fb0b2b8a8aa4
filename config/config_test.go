package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}
	if cfg.World.Width <= 0 || cfg.World.Height <= 0 {
		t.Errorf("default world %gx%g", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Derived.GridW <= 0 || cfg.Derived.GridH <= 0 {
		t.Errorf("derived grid %dx%d", cfg.Derived.GridW, cfg.Derived.GridH)
	}
	if len(cfg.Neural.HiddenLayers) == 0 {
		t.Error("defaults declare no hidden layers")
	}
}

func TestUserFileOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	override := []byte("world:\n  seed: 99\npopulation:\n  initial: 7\n")
	if err := os.WriteFile(path, override, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.World.Seed != 99 {
		t.Errorf("seed = %d, want 99", cfg.World.Seed)
	}
	if cfg.Population.Initial != 7 {
		t.Errorf("initial population = %d, want 7", cfg.Population.Initial)
	}

	// Untouched fields keep their defaults.
	defaults := Default()
	if cfg.World.Width != defaults.World.Width {
		t.Errorf("width = %g, default %g", cfg.World.Width, defaults.World.Width)
	}
	if cfg.Entity.MaxEnergy != defaults.Entity.MaxEnergy {
		t.Errorf("max_energy = %g, default %g", cfg.Entity.MaxEnergy, defaults.Entity.MaxEnergy)
	}
}

func TestValidateRejectsDegenerateConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.World.Width = 0 }},
		{"negative height", func(c *Config) { c.World.Height = -1 }},
		{"zero tile size", func(c *Config) { c.World.TileSize = 0 }},
		{"zero max energy", func(c *Config) { c.Entity.MaxEnergy = 0 }},
		{"empty hidden layer", func(c *Config) { c.Neural.HiddenLayers = []int{12, 0} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("validate accepted a degenerate config")
			}
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("loading a missing file did not fail")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := Default()
	cfg.World.Seed = 1234
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading config: %v", err)
	}
	if loaded.World.Seed != 1234 {
		t.Errorf("seed = %d after round trip, want 1234", loaded.World.Seed)
	}
}

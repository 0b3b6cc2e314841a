package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config must validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RunConfig)
		field  string
	}{
		{"zero iterations", func(c *RunConfig) { c.MaxIterations = 0 }, "maxIterations"},
		{"negative tolerance", func(c *RunConfig) { c.Tolerance = -1e-9 }, "tolerance"},
		{"zero patience", func(c *RunConfig) { c.Patience = 0 }, "patience"},
		{"zero learn rate", func(c *RunConfig) { c.LearnRate = 0 }, "learnRate"},
		{"negative grad step", func(c *RunConfig) { c.GradStep = -1 }, "gradStep"},
		{"tiny seeding population", func(c *RunConfig) {
			c.Seeding.Enabled = true
			c.Seeding.Population = 5
		}, "seeding.population"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Expected *ConfigError, got %v", err)
			}
			if cerr.Field != tc.field {
				t.Errorf("Expected error on field %q, got %q", tc.field, cerr.Field)
			}
		})
	}
}

func TestWithDefaultsFillsPartialConfig(t *testing.T) {
	partial := RunConfig{MaxIterations: 5}
	cfg := partial.WithDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Partial config must validate after WithDefaults, got %v", err)
	}
	if cfg.MaxIterations != 5 {
		t.Errorf("Expected explicit maxIterations 5 to survive, got %d", cfg.MaxIterations)
	}
	if cfg.Tolerance != Default().Tolerance {
		t.Errorf("Expected default tolerance, got %g", cfg.Tolerance)
	}
	if cfg.Patience != Default().Patience {
		t.Errorf("Expected default patience, got %d", cfg.Patience)
	}
	if cfg.DataDir != Default().DataDir {
		t.Errorf("Expected default data dir, got %q", cfg.DataDir)
	}
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	full := Default()
	full.MaxIterations = 7
	full.Tolerance = 1e-3
	full.LearnRate = 0.9

	cfg := full.WithDefaults()
	if cfg.MaxIterations != 7 || cfg.Tolerance != 1e-3 || cfg.LearnRate != 0.9 {
		t.Errorf("Explicit values changed: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	content := []byte("maxIterations: 250\ntolerance: 1e-8\nseeding:\n  enabled: true\n  population: 30\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxIterations != 250 {
		t.Errorf("Expected maxIterations 250, got %d", cfg.MaxIterations)
	}
	if cfg.Tolerance != 1e-8 {
		t.Errorf("Expected tolerance 1e-8, got %g", cfg.Tolerance)
	}
	if !cfg.Seeding.Enabled || cfg.Seeding.Population != 30 {
		t.Errorf("Expected seeding enabled with population 30, got %+v", cfg.Seeding)
	}

	// Untouched keys keep their defaults.
	if cfg.LearnRate != Default().LearnRate {
		t.Errorf("Expected default learn rate, got %g", cfg.LearnRate)
	}
	if cfg.Seeding.Seed != Default().Seeding.Seed {
		t.Errorf("Expected default seeding seed, got %d", cfg.Seeding.Seed)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

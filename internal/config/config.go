package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// RunConfig holds every knob of an optimization run. It is constructed
// once, validated, and injected into the collaborators; nothing reads
// ambient global state.
type RunConfig struct {
	// Convergence loop.
	MaxIterations int     `koanf:"maxIterations" json:"maxIterations"`
	Tolerance     float64 `koanf:"tolerance" json:"tolerance"`
	Patience      int     `koanf:"patience" json:"patience"`

	// Gradient-descent optimizer.
	LearnRate float64 `koanf:"learnRate" json:"learnRate"`
	GradStep  float64 `koanf:"gradStep" json:"gradStep"`

	// Optional Mayfly global search for the starting point.
	Seeding SeedingConfig `koanf:"seeding" json:"seeding"`

	// DataDir is where run records and traces are persisted.
	DataDir string `koanf:"dataDir" json:"dataDir"`
}

// SeedingConfig configures the optional global-search seeding stage.
type SeedingConfig struct {
	Enabled    bool  `koanf:"enabled" json:"enabled"`
	Iterations int   `koanf:"iterations" json:"iterations"`
	Population int   `koanf:"population" json:"population"`
	Seed       int64 `koanf:"seed" json:"seed"`
}

// Default returns the configuration used when no file or flags override it.
func Default() RunConfig {
	return RunConfig{
		MaxIterations: 100,
		Tolerance:     1e-6,
		Patience:      1,
		LearnRate:     0.4,
		GradStep:      1e-4,
		Seeding: SeedingConfig{
			Enabled:    false,
			Iterations: 100,
			Population: 20,
			Seed:       42,
		},
		DataDir: "./data",
	}
}

// WithDefaults fills unset fields from Default, so partial configs (an API
// payload naming only some keys) still validate. A zero value counts as
// unset, which means an exact-zero tolerance cannot be expressed through a
// partial config; pass a complete config for that.
func (c RunConfig) WithDefaults() RunConfig {
	d := Default()
	if c.MaxIterations == 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Tolerance == 0 {
		c.Tolerance = d.Tolerance
	}
	if c.Patience == 0 {
		c.Patience = d.Patience
	}
	if c.LearnRate == 0 {
		c.LearnRate = d.LearnRate
	}
	if c.GradStep == 0 {
		c.GradStep = d.GradStep
	}
	if c.Seeding.Iterations == 0 {
		c.Seeding.Iterations = d.Seeding.Iterations
	}
	if c.Seeding.Population == 0 {
		c.Seeding.Population = d.Seeding.Population
	}
	if c.Seeding.Seed == 0 {
		c.Seeding.Seed = d.Seeding.Seed
	}
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	return c
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Field + " " + e.Reason
}

// Validate checks the invariants the loop and optimizers rely on.
func (c *RunConfig) Validate() error {
	if c.MaxIterations < 1 {
		return &ConfigError{Field: "maxIterations", Reason: "must be at least 1"}
	}
	if c.Tolerance < 0 {
		return &ConfigError{Field: "tolerance", Reason: "cannot be negative"}
	}
	if c.Patience < 1 {
		return &ConfigError{Field: "patience", Reason: "must be at least 1"}
	}
	if c.LearnRate <= 0 {
		return &ConfigError{Field: "learnRate", Reason: "must be positive"}
	}
	if c.GradStep <= 0 {
		return &ConfigError{Field: "gradStep", Reason: "must be positive"}
	}
	if c.Seeding.Enabled {
		if c.Seeding.Iterations < 1 {
			return &ConfigError{Field: "seeding.iterations", Reason: "must be at least 1"}
		}
		// mayfly v0.1.0 needs at least 20 individuals.
		if c.Seeding.Population < 20 {
			return &ConfigError{Field: "seeding.population", Reason: "must be at least 20"}
		}
	}
	return nil
}

// Load reads a YAML config file on top of the defaults. Keys absent from
// the file keep their default value.
func Load(path string) (RunConfig, error) {
	cfg := Default()

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return cfg, fmt.Errorf("loading config %s: %w", path, err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Package config loads engine-wide defaults from the environment via
// kelseyhightower/envconfig, the same pattern the reference rate limiter
// uses for its own tunables, prefixed NNDESCENT_ so it doesn't collide with
// whatever else the host process configures.
package config

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/vspinu/rnndescent/internal/errors"
)

// BuildConfig controls the NND build loop's defaults. Callers of
// internal/nnd.Build may override any field after loading; fields left
// zero-valued before Validate runs are filled from here only when Load is
// used as the entry point, not when a BuildOptions literal is constructed
// directly.
type BuildConfig struct {
	K               int     `envconfig:"BUILD_K" default:"20"`
	RhoSampleRate   float64 `envconfig:"BUILD_RHO" default:"0.5"`
	Delta           float64 `envconfig:"BUILD_DELTA" default:"0.001"`
	MaxIterations   int     `envconfig:"BUILD_MAX_ITERATIONS" default:"0"`
	Workers         int     `envconfig:"BUILD_WORKERS" default:"0"`
	Seed            uint64  `envconfig:"BUILD_SEED" default:"0"`
	LowMemory       bool    `envconfig:"BUILD_LOW_MEMORY" default:"false"`
}

// QueryConfig controls the NND query loop's defaults.
type QueryConfig struct {
	K             int     `envconfig:"QUERY_K" default:"10"`
	Epsilon       float64 `envconfig:"QUERY_EPSILON" default:"0.1"`
	MaxIterations int     `envconfig:"QUERY_MAX_ITERATIONS" default:"0"`
	Workers       int     `envconfig:"QUERY_WORKERS" default:"0"`
	Seed          uint64  `envconfig:"QUERY_SEED" default:"0"`
}

// LoadBuildConfig reads a BuildConfig from the environment, applying
// defaults for unset variables, then validates it.
func LoadBuildConfig() (*BuildConfig, error) {
	var cfg BuildConfig
	if err := envconfig.Process("nndescent", &cfg); err != nil {
		return nil, errors.WrapConfigurationError(err, "config.LoadBuildConfig", "failed to read environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadQueryConfig reads a QueryConfig from the environment, applying
// defaults for unset variables, then validates it.
func LoadQueryConfig() (*QueryConfig, error) {
	var cfg QueryConfig
	if err := envconfig.Process("nndescent", &cfg); err != nil {
		return nil, errors.WrapConfigurationError(err, "config.LoadQueryConfig", "failed to read environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks BuildConfig invariants: K must be positive, the sample
// rate and convergence threshold must be fractions, and iteration/worker
// counts must not be negative (zero means "pick automatically").
func (c *BuildConfig) Validate() error {
	if c.K <= 0 {
		return errors.NewValidationError("BuildConfig.Validate", "k must be positive")
	}
	if c.RhoSampleRate <= 0 || c.RhoSampleRate > 1 {
		return errors.NewValidationError("BuildConfig.Validate", "rho must be in (0, 1]")
	}
	if c.Delta < 0 || c.Delta > 1 {
		return errors.NewValidationError("BuildConfig.Validate", "delta must be in [0, 1]")
	}
	if c.MaxIterations < 0 {
		return errors.NewValidationError("BuildConfig.Validate", "max_iterations must not be negative")
	}
	if c.Workers < 0 {
		return errors.NewValidationError("BuildConfig.Validate", "workers must not be negative")
	}
	return nil
}

// Validate checks QueryConfig invariants.
func (c *QueryConfig) Validate() error {
	if c.K <= 0 {
		return errors.NewValidationError("QueryConfig.Validate", "k must be positive")
	}
	if c.Epsilon < 0 {
		return errors.NewValidationError("QueryConfig.Validate", "epsilon must not be negative")
	}
	if c.MaxIterations < 0 {
		return errors.NewValidationError("QueryConfig.Validate", "max_iterations must not be negative")
	}
	if c.Workers < 0 {
		return errors.NewValidationError("QueryConfig.Validate", "workers must not be negative")
	}
	return nil
}

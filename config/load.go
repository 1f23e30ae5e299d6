package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment variables.
// Config file search order:
//  1. ./bondfactor.yaml
//  2. ~/.bondfactor/bondfactor.yaml
//
// Environment variables override file values and are prefixed BONDFACTOR_,
// e.g. BONDFACTOR_YIELD_TOLERANCE. A missing config file is not an error.
func Load() (Config, error) {
	v := newViper()

	v.SetConfigName("bondfactor")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join(homeDir(), ".bondfactor"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("Load: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("LoadFromFile: %w", err)
	}
	return unmarshal(v)
}

// Validate rejects parameter combinations the solvers cannot work with.
func (c Config) Validate() error {
	if c.YieldTolerance <= 0 {
		return fmt.Errorf("Validate: yield_tolerance must be positive, got %v", c.YieldTolerance)
	}
	if c.YieldMaxIterations <= 0 {
		return fmt.Errorf("Validate: yield_max_iterations must be positive, got %d", c.YieldMaxIterations)
	}
	if c.YieldFloor >= c.YieldCeiling {
		return fmt.Errorf("Validate: yield_floor %v not below yield_ceiling %v", c.YieldFloor, c.YieldCeiling)
	}
	if c.DerivativeThreshold <= 0 {
		return fmt.Errorf("Validate: derivative_threshold must be positive, got %v", c.DerivativeThreshold)
	}
	if c.FiniteDifferenceBumpBP <= 0 {
		return fmt.Errorf("Validate: finite_difference_bump_bp must be positive, got %v", c.FiniteDifferenceBumpBP)
	}
	if c.KeyRateBumpBP <= 0 {
		return fmt.Errorf("Validate: key_rate_bump_bp must be positive, got %v", c.KeyRateBumpBP)
	}
	if c.ReconciliationTolerance <= 0 {
		return fmt.Errorf("Validate: reconciliation_tolerance must be positive, got %v", c.ReconciliationTolerance)
	}
	if c.VarianceThreshold <= 0 || c.VarianceThreshold > 1 {
		return fmt.Errorf("Validate: variance_threshold %v outside (0, 1]", c.VarianceThreshold)
	}
	return nil
}

// ---------------------------------------------------------------------------
// helpers (unexported)
// ---------------------------------------------------------------------------

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BONDFACTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("yield_tolerance", DefaultConfig.YieldTolerance)
	v.SetDefault("yield_max_iterations", DefaultConfig.YieldMaxIterations)
	v.SetDefault("yield_floor", DefaultConfig.YieldFloor)
	v.SetDefault("yield_ceiling", DefaultConfig.YieldCeiling)
	v.SetDefault("derivative_threshold", DefaultConfig.DerivativeThreshold)
	v.SetDefault("finite_difference_bump_bp", DefaultConfig.FiniteDifferenceBumpBP)
	v.SetDefault("key_rate_bump_bp", DefaultConfig.KeyRateBumpBP)
	v.SetDefault("reconciliation_tolerance", DefaultConfig.ReconciliationTolerance)
	v.SetDefault("variance_threshold", DefaultConfig.VarianceThreshold)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

package config

// Config holds solver and sensitivity calculation parameters shared across
// the engine. The mapstructure tags are the keys used by file/env
// configuration at the CLI boundary.
type Config struct {
	// YieldTolerance is the price tolerance for Newton-Raphson convergence
	// when solving a yield from a target price.
	YieldTolerance float64 `mapstructure:"yield_tolerance"`

	// YieldMaxIterations is the maximum iterations for yield solving.
	YieldMaxIterations int `mapstructure:"yield_max_iterations"`

	// YieldFloor and YieldCeiling clamp the Newton iterate to keep the
	// per-period rate well away from -100%.
	YieldFloor   float64 `mapstructure:"yield_floor"`
	YieldCeiling float64 `mapstructure:"yield_ceiling"`

	// DerivativeThreshold is the minimum derivative magnitude.
	// Below this, Newton iteration stops to avoid division by near-zero.
	DerivativeThreshold float64 `mapstructure:"derivative_threshold"`

	// FiniteDifferenceBumpBP is the default yield bump, in basis points,
	// for finite-difference duration and convexity.
	FiniteDifferenceBumpBP float64 `mapstructure:"finite_difference_bump_bp"`

	// KeyRateBumpBP is the default per-tenor bump, in basis points, for
	// key-rate sensitivity profiles.
	KeyRateBumpBP float64 `mapstructure:"key_rate_bump_bp"`

	// ReconciliationTolerance is the maximum relative gap allowed between
	// the sum of key-rate sensitivities and the parallel DV01 before the
	// profile is flagged inconsistent.
	ReconciliationTolerance float64 `mapstructure:"reconciliation_tolerance"`

	// VarianceThreshold is the default cumulative variance-explained ratio
	// used to retain factors when the caller does not supply one.
	VarianceThreshold float64 `mapstructure:"variance_threshold"`
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	YieldTolerance:          1e-12,
	YieldMaxIterations:      100,
	YieldFloor:              -0.50,
	YieldCeiling:            1.00,
	DerivativeThreshold:     1e-15,
	FiniteDifferenceBumpBP:  1.0,
	KeyRateBumpBP:           1.0,
	ReconciliationTolerance: 0.01,
	VarianceThreshold:       0.85,
}

// cfg is the active configuration. Defaults to DefaultConfig.
var cfg = DefaultConfig

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	return cfg
}

package risga

import (
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// ConfigurationError reports an invalid option, found by the single
// validation pass at pipeline start.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %q: %s", e.Key, e.Reason)
}

// Config manages pipeline configuration using Viper. The recognized key
// set is fixed; unknown keys are never consulted, so a typo cannot fall
// back to a silent default.
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults.
func NewConfig() *Config {
	v := viper.New()

	v.SetDefault("device", "cpu")
	v.SetDefault("random_seed", int64(42))
	v.SetDefault("k", 10)

	// RIS parameters
	v.SetDefault("ris.theta", 0) // 0 = let the theta scheduler decide
	v.SetDefault("ris.epsilon", 0.1)
	v.SetDefault("ris.ell", 1.0)
	v.SetDefault("ris.max_rounds", 24)

	// GA parameters
	v.SetDefault("ga.population_size", 100)
	v.SetDefault("ga.generations", 50)
	v.SetDefault("ga.crossover_rate", 0.8)
	v.SetDefault("ga.mutation_rate", 0.1)
	v.SetDefault("ga.tournament_size", 3)
	v.SetDefault("ga.elite_size", 5)
	v.SetDefault("ga.seed_fraction", 0.1)
	v.SetDefault("ga.patience", 10)
	v.SetDefault("ga.convergence_threshold", 1e-4)

	// Multi-objective weights
	v.SetDefault("objectives.influence_weight", 0.4)
	v.SetDefault("objectives.cost_weight", 0.3)
	v.SetDefault("objectives.equity_weight", 0.3)

	// Performance parameters
	v.SetDefault("performance.num_workers", runtime.NumCPU())

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.enable_progress", true)

	return &Config{v: v}
}

// LoadFromFile loads configuration from file.
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Getters for core parameters
func (c *Config) Device() string   { return c.v.GetString("device") }
func (c *Config) RandomSeed() int64 { return c.v.GetInt64("random_seed") }
func (c *Config) K() int           { return c.v.GetInt("k") }

// Getters for RIS parameters
func (c *Config) Theta() int        { return c.v.GetInt("ris.theta") }
func (c *Config) Epsilon() float64  { return c.v.GetFloat64("ris.epsilon") }
func (c *Config) Ell() float64      { return c.v.GetFloat64("ris.ell") }
func (c *Config) MaxRounds() int    { return c.v.GetInt("ris.max_rounds") }

// Getters for GA parameters
func (c *Config) PopulationSize() int           { return c.v.GetInt("ga.population_size") }
func (c *Config) Generations() int              { return c.v.GetInt("ga.generations") }
func (c *Config) CrossoverRate() float64        { return c.v.GetFloat64("ga.crossover_rate") }
func (c *Config) MutationRate() float64         { return c.v.GetFloat64("ga.mutation_rate") }
func (c *Config) TournamentSize() int           { return c.v.GetInt("ga.tournament_size") }
func (c *Config) EliteSize() int                { return c.v.GetInt("ga.elite_size") }
func (c *Config) SeedFraction() float64         { return c.v.GetFloat64("ga.seed_fraction") }
func (c *Config) Patience() int                 { return c.v.GetInt("ga.patience") }
func (c *Config) ConvergenceThreshold() float64 { return c.v.GetFloat64("ga.convergence_threshold") }

// Getters for objective weights
func (c *Config) InfluenceWeight() float64 { return c.v.GetFloat64("objectives.influence_weight") }
func (c *Config) CostWeight() float64      { return c.v.GetFloat64("objectives.cost_weight") }
func (c *Config) EquityWeight() float64    { return c.v.GetFloat64("objectives.equity_weight") }

func (c *Config) NumWorkers() int { return c.v.GetInt("performance.num_workers") }

func (c *Config) LogLevel() string      { return c.v.GetString("logging.level") }
func (c *Config) EnableProgress() bool  { return c.v.GetBool("logging.enable_progress") }

// Set allows dynamic configuration changes.
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Validate checks the full option set once, before a run starts.
func (c *Config) Validate() error {
	if c.K() <= 0 {
		return ConfigurationError{Key: "k", Reason: fmt.Sprintf("must be positive, got %d", c.K())}
	}
	if c.Theta() < 0 {
		return ConfigurationError{Key: "ris.theta", Reason: fmt.Sprintf("must be non-negative, got %d", c.Theta())}
	}
	if eps := c.Epsilon(); eps <= 0 || eps >= 1 {
		return ConfigurationError{Key: "ris.epsilon", Reason: fmt.Sprintf("must be in (0,1), got %f", eps)}
	}
	if c.Ell() <= 0 {
		return ConfigurationError{Key: "ris.ell", Reason: fmt.Sprintf("must be positive, got %f", c.Ell())}
	}
	if c.MaxRounds() <= 0 {
		return ConfigurationError{Key: "ris.max_rounds", Reason: fmt.Sprintf("must be positive, got %d", c.MaxRounds())}
	}
	if c.PopulationSize() < 2 {
		return ConfigurationError{Key: "ga.population_size", Reason: fmt.Sprintf("must be at least 2, got %d", c.PopulationSize())}
	}
	if c.PopulationSize() < 2*c.EliteSize() {
		return ConfigurationError{Key: "ga.elite_size",
			Reason: fmt.Sprintf("population size %d must be at least twice elite size %d", c.PopulationSize(), c.EliteSize())}
	}
	if c.Generations() <= 0 {
		return ConfigurationError{Key: "ga.generations", Reason: fmt.Sprintf("must be positive, got %d", c.Generations())}
	}
	if r := c.CrossoverRate(); r < 0 || r > 1 {
		return ConfigurationError{Key: "ga.crossover_rate", Reason: fmt.Sprintf("must be in [0,1], got %f", r)}
	}
	if r := c.MutationRate(); r < 0 || r > 1 {
		return ConfigurationError{Key: "ga.mutation_rate", Reason: fmt.Sprintf("must be in [0,1], got %f", r)}
	}
	if c.TournamentSize() < 1 {
		return ConfigurationError{Key: "ga.tournament_size", Reason: fmt.Sprintf("must be at least 1, got %d", c.TournamentSize())}
	}
	if f := c.SeedFraction(); f < 0 || f > 1 {
		return ConfigurationError{Key: "ga.seed_fraction", Reason: fmt.Sprintf("must be in [0,1], got %f", f)}
	}

	sum := c.InfluenceWeight() + c.CostWeight() + c.EquityWeight()
	if c.InfluenceWeight() < 0 || c.CostWeight() < 0 || c.EquityWeight() < 0 {
		return ConfigurationError{Key: "objectives", Reason: "weights must be non-negative"}
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return ConfigurationError{Key: "objectives", Reason: fmt.Sprintf("weights must sum to 1, got %f", sum)}
	}

	if c.NumWorkers() < 1 {
		return ConfigurationError{Key: "performance.num_workers", Reason: fmt.Sprintf("must be at least 1, got %d", c.NumWorkers())}
	}

	return nil
}

// CreateLogger creates a zerolog logger based on config.
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "risga").Logger()
}

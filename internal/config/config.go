package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/docmind/docmind/internal/provider/azure"
)

// Config represents the analysis core configuration.
type Config struct {
	Azure    azure.Config
	Analysis AnalysisConfig
}

// AnalysisConfig contains orchestrator settings.
type AnalysisConfig struct {
	// MinContentLength is the minimum document length accepted for analysis.
	MinContentLength int `env:"ANALYSIS_MIN_CONTENT_LENGTH" envDefault:"50"`

	// MaxConcurrency caps simultaneous outstanding completion calls during
	// the secondary-facet fan-out.
	MaxConcurrency int64 `env:"ANALYSIS_MAX_CONCURRENCY" envDefault:"4"`

	// DefaultModel is the logical model used when options leave it unset.
	DefaultModel string `env:"ANALYSIS_DEFAULT_MODEL" envDefault:"gpt-4o-mini"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*AnalysisConfig
	*azure.Config
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Analysis,
		&cfg.Azure,
	}
}

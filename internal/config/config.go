package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Match    MatchConfig
}

type AppConfig struct {
	AppName     string `env:"APP_NAME" envDefault:"talent-match"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	Debug       bool   `env:"APP_DEBUG" envDefault:"false"`
}

type DatabaseConfig struct {
	URL                     string `env:"DATABASE_URL,required"`
	StatementTimeoutSeconds int    `env:"DB_STATEMENT_TIMEOUT_SECONDS" envDefault:"5"`
	PoolMaxConns            int    `env:"DB_POOL_MAX_CONNS" envDefault:"0"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	// TTL for the hot tier sitting in front of the durable match cache.
	HotTTLSeconds int `env:"REDIS_HOT_TTL_SECONDS" envDefault:"60"`
}

// MatchConfig carries the tunable numeric behavior of the scorer and cache.
// The skill/title/semantic/vector weights are normalized to sum to 1 as a
// group; distance is an independent additive term, so composites can exceed
// 1.0 when it is large.
type MatchConfig struct {
	WeightSkills   float64 `env:"WEIGHT_SKILLS" envDefault:"0.85"`
	WeightTitle    float64 `env:"WEIGHT_TITLE_SIM" envDefault:"0.15"`
	WeightSemantic float64 `env:"WEIGHT_SEMANTIC" envDefault:"0"`
	WeightVector   float64 `env:"WEIGHT_VECTOR" envDefault:"0"`
	WeightDistance float64 `env:"WEIGHT_DISTANCE" envDefault:"0.35"`

	MustCategoryWeight   float64 `env:"MUST_CATEGORY_WEIGHT" envDefault:"0.7"`
	NeededCategoryWeight float64 `env:"NEEDED_CATEGORY_WEIGHT" envDefault:"0.3"`

	CacheTTLSeconds  int  `env:"MATCH_CACHE_TTL" envDefault:"900"`
	DefaultTopK      int  `env:"MATCH_DEFAULT_TOP_K" envDefault:"5"`
	MaxCounterparts  int  `env:"MATCH_MAX_COUNTERPARTS" envDefault:"1000"`
	AllowPlaceholder bool `env:"MATCH_ALLOW_PLACEHOLDER" envDefault:"false"`

	CityCoordinateFile string `env:"CITY_COORDINATE_FILE"`
	SkillVocabSeedFile string `env:"SKILL_VOCAB_SEED_FILE"`
	TitleVocabSeedFile string `env:"TITLE_VOCAB_SEED_FILE"`

	BackfillWorkers int `env:"BACKFILL_WORKERS" envDefault:"4"`
	BackfillRPS     int `env:"BACKFILL_RPS" envDefault:"0"`
}

var errInvalidConfig = errors.New("invalid configuration")

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg.App); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg.Database); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg.Redis); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg.Match); err != nil {
		return Config{}, err
	}
	if err := cfg.Match.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects weight sets the scorer is not prepared to handle. Scoring
// assumes weights were validated here and are non-negative.
func (m MatchConfig) Validate() error {
	named := []struct {
		name string
		w    float64
	}{
		{"WEIGHT_SKILLS", m.WeightSkills},
		{"WEIGHT_TITLE_SIM", m.WeightTitle},
		{"WEIGHT_SEMANTIC", m.WeightSemantic},
		{"WEIGHT_VECTOR", m.WeightVector},
		{"WEIGHT_DISTANCE", m.WeightDistance},
		{"MUST_CATEGORY_WEIGHT", m.MustCategoryWeight},
		{"NEEDED_CATEGORY_WEIGHT", m.NeededCategoryWeight},
	}
	for _, nw := range named {
		if nw.w < 0 {
			return fmt.Errorf("%w: %s must not be negative", errInvalidConfig, nw.name)
		}
	}
	if m.WeightSkills+m.WeightTitle+m.WeightSemantic+m.WeightVector <= 0 {
		return fmt.Errorf("%w: component weights must have a positive sum", errInvalidConfig)
	}
	if m.MustCategoryWeight+m.NeededCategoryWeight <= 0 {
		return fmt.Errorf("%w: category weights must have a positive sum", errInvalidConfig)
	}
	if m.CacheTTLSeconds < 0 {
		return fmt.Errorf("%w: MATCH_CACHE_TTL must not be negative", errInvalidConfig)
	}
	if m.DefaultTopK <= 0 {
		return fmt.Errorf("%w: MATCH_DEFAULT_TOP_K must be positive", errInvalidConfig)
	}
	return nil
}

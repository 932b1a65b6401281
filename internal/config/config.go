package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/weeklyreps/internal/challenge"

	"github.com/BurntSushi/toml"
)

const (
	StorageMemory   = "memory"
	StorageSheets   = "sheets"
	StoragePostgres = "postgres"
	StorageSqlite   = "sqlite"
)

const (
	defaultBaseline    = "2025-12-15"
	defaultSheetsRange = "Sheet1"
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// cross-origin callers of the JSON API, same-origin is always allowed
	AllowedOrigins []string `toml:"allowed_origins"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// redis (submission rate limiting)
	RedisHost             string `toml:"redis_host"`
	RedisPort             string `toml:"redis_port"`
	SubmitRateLimitPerMin int    `toml:"submit_rate_limit_per_min"`
	// storage
	Storage               string `toml:"storage"`
	MirrorPath            string `toml:"mirror_path"`
	StorageTimeoutSeconds int    `toml:"storage_timeout_seconds"`
	// google sheets
	SheetsSpreadsheetID   string `toml:"sheets_spreadsheet_id"`
	SheetsRange           string `toml:"sheets_range"`
	SheetsCacheTTLSeconds int    `toml:"sheets_cache_ttl_seconds"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	// sqlite
	SqlitePath string `toml:"sqlite_path"`

	Challenge ChallengeConfig `toml:"challenge"`
}

type ChallengeConfig struct {
	Baseline  string           `toml:"baseline"`
	Timezone  string           `toml:"timezone"`
	Roster    []string         `toml:"roster"`
	Exercises []ExerciseConfig `toml:"exercises"`
}

type ExerciseConfig struct {
	Key          string `toml:"key"`
	DisplayName  string `toml:"display_name"`
	WeeklyTarget int    `toml:"weekly_target"`
	Order        int    `toml:"order"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML config file, picks the section for env, applies defaults
// and validates it, including the challenge setup.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing in [%s]", env, path)
	}
	cfg.Environment = strings.ToLower(env)

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Storage == "" {
		c.Storage = StorageMemory
	}
	if c.SheetsRange == "" {
		c.SheetsRange = defaultSheetsRange
	}
	if c.StorageTimeoutSeconds <= 0 {
		c.StorageTimeoutSeconds = 10
	}
	if c.Challenge.Baseline == "" {
		c.Challenge.Baseline = defaultBaseline
	}
	if c.Challenge.Timezone == "" {
		c.Challenge.Timezone = "UTC"
	}
	if len(c.Challenge.Exercises) == 0 {
		for _, t := range challenge.DefaultTargets() {
			c.Challenge.Exercises = append(c.Challenge.Exercises, ExerciseConfig{
				Key:          t.Key,
				DisplayName:  t.DisplayName,
				WeeklyTarget: t.WeeklyTarget,
				Order:        t.DisplayOrder,
			})
		}
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	switch c.Storage {
	case StorageMemory:
	case StorageSheets:
		if c.SheetsSpreadsheetID == "" {
			return errors.New("sheets storage selected, but sheets_spreadsheet_id not set")
		}
	case StoragePostgres:
		if c.PostgresHost == "" || c.PostgresDBName == "" {
			return errors.New("postgres storage selected, but postgres_host or postgres_db_name not set")
		}
	case StorageSqlite:
		if c.SqlitePath == "" {
			return errors.New("sqlite storage selected, but sqlite_path not set")
		}
	default:
		return fmt.Errorf("unknown storage: %s", c.Storage)
	}

	if _, err := c.Challenge.Build(); err != nil {
		return fmt.Errorf("challenge config: %w", err)
	}

	return nil
}

// StorageTimeout bounds a single read or write against the storage backend.
func (c *Config) StorageTimeout() time.Duration {
	return time.Duration(c.StorageTimeoutSeconds) * time.Second
}

// Build turns the challenge section into the immutable challenge setup.
func (c ChallengeConfig) Build() (challenge.Challenge, error) {
	baseline, err := challenge.ParseDate(c.Baseline)
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("baseline: %w", err)
	}

	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("timezone: %w", err)
	}

	if len(c.Roster) == 0 {
		return challenge.Challenge{}, errors.New("roster empty")
	}
	seen := make(map[string]bool, len(c.Roster))
	roster := make([]string, 0, len(c.Roster))
	for _, p := range c.Roster {
		p = strings.TrimSpace(p)
		if p == "" {
			return challenge.Challenge{}, errors.New("roster contains an empty name")
		}
		if seen[strings.ToLower(p)] {
			return challenge.Challenge{}, fmt.Errorf("roster contains [%s] twice", p)
		}
		seen[strings.ToLower(p)] = true
		roster = append(roster, p)
	}

	targets := make([]challenge.Target, 0, len(c.Exercises))
	for _, e := range c.Exercises {
		targets = append(targets, challenge.Target{
			Key:          e.Key,
			DisplayName:  e.DisplayName,
			WeeklyTarget: e.WeeklyTarget,
			DisplayOrder: e.Order,
		})
	}
	targetConfig, err := challenge.NewTargetConfig(targets...)
	if err != nil {
		return challenge.Challenge{}, err
	}

	return challenge.Challenge{
		Calendar: challenge.NewCalendar(baseline, location),
		Targets:  targetConfig,
		Roster:   roster,
	}, nil
}

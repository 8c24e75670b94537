// Package config assembles runtime settings from defaults, an optional YAML
// file and RECORDPREP_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/recordprep/internal/batch"
	"github.com/recordprep/internal/normalize"
	"github.com/recordprep/internal/parse"
	"github.com/recordprep/internal/schema"
	"github.com/recordprep/internal/validation"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RECORDPREP_"

// Config is the complete runtime configuration.
type Config struct {
	Mapping  MappingConfig     `yaml:"mapping"`
	Cleaning normalize.Options `yaml:"cleaning"`
	Rules    validation.Rules  `yaml:"rules"`
	Batch    BatchConfig       `yaml:"batch"`
	Parsing  ParsingConfig     `yaml:"parsing"`
	Server   ServerConfig      `yaml:"server"`
	Auth     AuthConfig        `yaml:"auth"`
	Database DatabaseConfig    `yaml:"database"`
	Log      LogConfig         `yaml:"log"`
}

// MappingConfig tunes column mapping and combined-field detection.
type MappingConfig struct {
	Threshold  float64 `yaml:"threshold"`
	Scorer     string  `yaml:"scorer"`
	SampleSize int     `yaml:"sample_size"`
	// Extra header spellings per canonical field, tried after the built-in
	// synonyms.
	AddressSynonyms map[string][]string `yaml:"address_synonyms"`
	NameSynonyms    map[string][]string `yaml:"name_synonyms"`
}

type BatchConfig struct {
	Workers int `yaml:"workers"`
}

type ParsingConfig struct {
	// Libpostal enables the libpostal address strategy. The binary must be
	// built with the libpostal tag.
	Libpostal bool `yaml:"libpostal"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	// APIKey, when set, is required in the X-API-Key header of API calls.
	APIKey string `yaml:"api_key"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver         string `yaml:"driver"`
	DSN            string `yaml:"dsn"`
	MaxConnections int    `yaml:"max_connections"`
}

// Enabled reports whether a result sink is configured.
func (d DatabaseConfig) Enabled() bool { return d.DSN != "" }

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Logger builds a zap logger: JSON output in production, console output in
// development.
func (l LogConfig) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log.level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Mapping: MappingConfig{
			Threshold:  schema.DefaultThreshold,
			Scorer:     "levenshtein",
			SampleSize: schema.DefaultSampleSize,
		},
		Cleaning: normalize.DefaultOptions(),
		Batch:    BatchConfig{Workers: 1},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxBodyBytes:    10 << 20,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{Driver: "sqlite", MaxConnections: 10},
		Log:      LogConfig{Level: "info"},
	}
}

// Load returns Default overlaid with the YAML file at path (skipped when path
// is empty) and then with environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Mapping.Threshold = GetEnvFloat(EnvPrefix+"MAPPING_THRESHOLD", c.Mapping.Threshold)
	c.Mapping.Scorer = GetEnv(EnvPrefix+"MAPPING_SCORER", c.Mapping.Scorer)
	c.Mapping.SampleSize = GetEnvInt(EnvPrefix+"SAMPLE_SIZE", c.Mapping.SampleSize)
	c.Cleaning.Transliterate = GetEnvBool(EnvPrefix+"TRANSLITERATE", c.Cleaning.Transliterate)
	c.Cleaning.CorrectStates = GetEnvBool(EnvPrefix+"CORRECT_STATES", c.Cleaning.CorrectStates)
	c.Rules.RejectPOBoxes = GetEnvBool(EnvPrefix+"REJECT_PO_BOXES", c.Rules.RejectPOBoxes)
	c.Batch.Workers = GetEnvInt(EnvPrefix+"WORKERS", c.Batch.Workers)
	c.Parsing.Libpostal = GetEnvBool(EnvPrefix+"LIBPOSTAL", c.Parsing.Libpostal)
	c.Server.Host = GetEnv(EnvPrefix+"HOST", c.Server.Host)
	c.Server.Port = GetEnvInt(EnvPrefix+"PORT", c.Server.Port)
	c.Auth.APIKey = GetEnv(EnvPrefix+"API_KEY", c.Auth.APIKey)
	c.Database.Driver = GetEnv(EnvPrefix+"DB_DRIVER", c.Database.Driver)
	c.Database.DSN = GetEnv(EnvPrefix+"DB_DSN", c.Database.DSN)
	c.Log.Level = GetEnv(EnvPrefix+"LOG_LEVEL", c.Log.Level)
	c.Log.Development = GetEnvBool(EnvPrefix+"LOG_DEVELOPMENT", c.Log.Development)
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Mapping.Threshold <= 0 || c.Mapping.Threshold >= 100 {
		return fmt.Errorf("mapping.threshold must be between 0 and 100, got %v", c.Mapping.Threshold)
	}
	if _, err := schema.ScorerByName(c.Mapping.Scorer); err != nil {
		return err
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}

// StandardizerOptions translates the configuration into batch options,
// opening the libpostal parser when it is enabled.
func (c Config) StandardizerOptions() (batch.Options, error) {
	scorer, err := schema.ScorerByName(c.Mapping.Scorer)
	if err != nil {
		return batch.Options{}, err
	}
	opts := batch.Options{
		Workers:              c.Batch.Workers,
		Threshold:            c.Mapping.Threshold,
		Scorer:               scorer,
		SampleSize:           c.Mapping.SampleSize,
		ExtraAddressSynonyms: c.Mapping.AddressSynonyms,
		ExtraNameSynonyms:    c.Mapping.NameSynonyms,
		Cleaning:             c.Cleaning,
		Rules:                c.Rules,
	}
	if c.Parsing.Libpostal {
		external, err := parse.NewLibpostal()
		if err != nil {
			return batch.Options{}, err
		}
		opts.ExternalAddress = external
	}
	return opts, nil
}

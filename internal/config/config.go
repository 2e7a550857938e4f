// Package config loads application configuration and installs the global
// logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Resolve  ResolveConfig  `yaml:"resolve" mapstructure:"resolve"`
	Source   SourceConfig   `yaml:"source" mapstructure:"source"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// OverpassConfig configures the Overpass query client.
type OverpassConfig struct {
	Endpoint      string  `yaml:"endpoint" mapstructure:"endpoint"`
	RateLimitQPS  float64 `yaml:"rate_limit_qps" mapstructure:"rate_limit_qps"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RetryAttempts int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
}

// Timeout returns the per-request timeout as a duration.
func (c OverpassConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ResolveConfig configures the resolution pipeline.
type ResolveConfig struct {
	Zoom          int     `yaml:"zoom" mapstructure:"zoom"`
	MatchCutoff   float64 `yaml:"match_cutoff" mapstructure:"match_cutoff"`
	MaxCandidates int     `yaml:"max_candidates" mapstructure:"max_candidates"`
	Neighborhood  bool    `yaml:"neighborhood" mapstructure:"neighborhood"`
}

// SourceConfig configures the shapefile address source.
type SourceConfig struct {
	Encoding  string `yaml:"encoding" mapstructure:"encoding"`
	Latitude  string `yaml:"latitude_field" mapstructure:"latitude_field"`
	Longitude string `yaml:"longitude_field" mapstructure:"longitude_field"`
	Number    string `yaml:"number_field" mapstructure:"number_field"`
	Street    string `yaml:"street_field" mapstructure:"street_field"`
	Qualifier string `yaml:"qualifier_field" mapstructure:"qualifier_field"`
	Zip       string `yaml:"zip_field" mapstructure:"zip_field"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ADDRESSER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("overpass.endpoint", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.rate_limit_qps", 1.0)
	v.SetDefault("overpass.timeout_secs", 180)
	v.SetDefault("overpass.retry_attempts", 2)
	v.SetDefault("resolve.zoom", 14)
	v.SetDefault("resolve.match_cutoff", 0.6)
	v.SetDefault("resolve.max_candidates", 3)
	v.SetDefault("resolve.neighborhood", true)
	v.SetDefault("source.encoding", "utf-8")
	v.SetDefault("source.latitude_field", "latitude")
	v.SetDefault("source.longitude_field", "longitude")
	v.SetDefault("source.number_field", "txt_number")
	v.SetDefault("source.street_field", "txt_street")
	v.SetDefault("source.qualifier_field", "txt_suffix")
	v.SetDefault("source.zip_field", "txt_zip")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

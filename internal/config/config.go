// Package config loads application configuration from an optional YAML file
// plus MELB_-prefixed environment variables, and bootstraps the global
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
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Routing  RoutingConfig  `yaml:"routing" mapstructure:"routing"`
	Reiv     ReivConfig     `yaml:"reiv" mapstructure:"reiv"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the persisted files.
type DataConfig struct {
	SuburbsPath string `yaml:"suburbs_path" mapstructure:"suburbs_path"`
	StorePath   string `yaml:"store_path" mapstructure:"store_path"`
}

// FetchConfig tunes the shared HTTP fetch wrapper.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retries     int    `yaml:"retries" mapstructure:"retries"`
}

// GeocodeConfig configures the geocoding endpoint and its global gate.
type GeocodeConfig struct {
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	MinDelayMs int    `yaml:"min_delay_ms" mapstructure:"min_delay_ms"`
}

// OverpassConfig configures the point-feature query endpoint.
type OverpassConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	StopRadiusM int    `yaml:"stop_radius_m" mapstructure:"stop_radius_m"`
}

// RoutingConfig configures the driving-directions endpoint.
type RoutingConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ReivConfig configures the median-price site client.
type ReivConfig struct {
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	TTLMinutes int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	MinDelayMs int    `yaml:"min_delay_ms" mapstructure:"min_delay_ms"`
}

// PipelineConfig tunes batch stage behaviour.
type PipelineConfig struct {
	MergePolicy     string `yaml:"merge_policy" mapstructure:"merge_policy"`
	CheckpointEvery int    `yaml:"checkpoint_every" mapstructure:"checkpoint_every"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// FetchTimeout returns the fetch timeout as a duration.
func (c FetchConfig) FetchTimeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// MinDelay returns the geocode gate delay as a duration.
func (c GeocodeConfig) MinDelay() time.Duration {
	return time.Duration(c.MinDelayMs) * time.Millisecond
}

// MinDelay returns the market-site gate delay as a duration.
func (c ReivConfig) MinDelay() time.Duration {
	return time.Duration(c.MinDelayMs) * time.Millisecond
}

// TTL returns the price cache TTL as a duration.
func (c ReivConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Load reads configuration: defaults, then an optional config.yaml in the
// working directory, then MELB_ environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MELB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.suburbs_path", "data/suburbs.json")
	v.SetDefault("data.store_path", "data/melbourne.db")
	v.SetDefault("fetch.user_agent", "melbourne-properties/1.0 (housing market research)")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.retries", 2)
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.min_delay_ms", 1100)
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.stop_radius_m", 1500)
	v.SetDefault("routing.base_url", "https://router.project-osrm.org")
	v.SetDefault("reiv.base_url", "https://reiv.com.au/market-insights/suburb")
	v.SetDefault("reiv.ttl_minutes", 5)
	v.SetDefault("reiv.min_delay_ms", 1000)
	v.SetDefault("pipeline.merge_policy", "retain")
	v.SetDefault("pipeline.checkpoint_every", 20)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

// InitLogger builds the global zap logger from the log section.
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

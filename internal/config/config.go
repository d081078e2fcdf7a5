package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Default reference dataset locations.
const (
	DefaultFeedURL     = "https://data-cloud.flightradar24.com/zones/fcgi/feed.js"
	DefaultAirportsURL = "https://raw.githubusercontent.com/jpatokal/openflights/master/data/airports.dat"
	DefaultCitiesURL   = "https://raw.githubusercontent.com/condwanaland/worldcities/refs/heads/main/data-raw/worldcities.csv"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Feed    FeedConfig    `yaml:"feed" mapstructure:"feed"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// SourcesConfig locates the live feed and the reference datasets. The
// reference entries accept http(s) URLs or local paths.
type SourcesConfig struct {
	FeedURL     string `yaml:"feed_url" mapstructure:"feed_url"`
	FeedFile    string `yaml:"feed_file" mapstructure:"feed_file"`
	AirportsURL string `yaml:"airports_url" mapstructure:"airports_url"`
	CitiesURL   string `yaml:"cities_url" mapstructure:"cities_url"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// Timeout returns TimeoutSecs as a duration.
func (c SourcesConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// FeedConfig filters the live feed.
type FeedConfig struct {
	// Bounds is "north,south,west,east"; empty means worldwide.
	Bounds string `yaml:"bounds" mapstructure:"bounds"`
	Limit  int    `yaml:"limit" mapstructure:"limit"`
}

// ReportConfig configures destination rankings.
type ReportConfig struct {
	Limit int `yaml:"limit" mapstructure:"limit"`
}

// ServerConfig configures the HTTP read API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the settings a command mode depends on and reports every
// problem at once. Modes: run, report, serve.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not sqlite or postgres", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	switch mode {
	case "run":
		if c.Sources.AirportsURL == "" || c.Sources.CitiesURL == "" {
			errs = append(errs, "sources.airports_url and sources.cities_url are required")
		}
		if c.Sources.FeedURL == "" && c.Sources.FeedFile == "" {
			errs = append(errs, "sources.feed_url or sources.feed_file is required")
		}
		if c.Sources.TimeoutSecs <= 0 {
			errs = append(errs, "sources.timeout_secs must be > 0")
		}
		if c.Sources.MaxRetries < 0 {
			errs = append(errs, "sources.max_retries must be >= 0")
		}
		if c.Feed.Bounds != "" && strings.Count(c.Feed.Bounds, ",") != 3 {
			errs = append(errs, fmt.Sprintf("feed.bounds must be north,south,west,east, got %q", c.Feed.Bounds))
		}
		if c.Feed.Limit < 0 {
			errs = append(errs, "feed.limit must be >= 0")
		}
	case "report":
		if c.Report.Limit <= 0 {
			errs = append(errs, "report.limit must be > 0")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Report.Limit <= 0 {
			errs = append(errs, "report.limit must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TOURISM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "tourism.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("sources.feed_url", DefaultFeedURL)
	v.SetDefault("sources.feed_file", "")
	v.SetDefault("sources.airports_url", DefaultAirportsURL)
	v.SetDefault("sources.cities_url", DefaultCitiesURL)
	v.SetDefault("sources.user_agent", "tourism-cli/1.0")
	v.SetDefault("sources.timeout_secs", 30)
	v.SetDefault("sources.max_retries", 3)
	v.SetDefault("feed.bounds", "")
	v.SetDefault("feed.limit", 5000)
	v.SetDefault("report.limit", 10)
	v.SetDefault("server.port", 8080)
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

// Package config loads application configuration from an optional
// config.yaml, ATLAS_* environment variables, and built-in defaults.
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
	ACS      ACSConfig      `yaml:"acs" mapstructure:"acs"`
	Boundary BoundaryConfig `yaml:"boundary" mapstructure:"boundary"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ACSConfig holds the fixed statistics query parameters.
type ACSConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Year      int    `yaml:"year" mapstructure:"year"`
	StateFIPS string `yaml:"state_fips" mapstructure:"state_fips"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
}

// BoundaryConfig selects and configures the geometry acquisition strategy.
type BoundaryConfig struct {
	Strategy     string `yaml:"strategy" mapstructure:"strategy"` // "shapefile" or "geojson"
	ShapefileURL string `yaml:"shapefile_url" mapstructure:"shapefile_url"`
	GeoJSONURL   string `yaml:"geojson_url" mapstructure:"geojson_url"`
	TempDir      string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// FetchConfig configures the HTTP fetcher.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// CacheConfig configures the snapshot cache.
type CacheConfig struct {
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// ServerConfig configures the map server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Timeout returns the fetch timeout as a duration.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("acs.base_url", "https://api.census.gov/data")
	v.SetDefault("acs.year", 2022)
	v.SetDefault("acs.state_fips", "18") // Indiana
	v.SetDefault("boundary.strategy", "geojson")
	v.SetDefault("boundary.shapefile_url", "https://www2.census.gov/geo/tiger/GENZ2018/shp/cb_2018_us_county_500k.zip")
	v.SetDefault("boundary.geojson_url", "https://raw.githubusercontent.com/plotly/datasets/master/geojson-counties-fips.json")
	v.SetDefault("boundary.temp_dir", "/tmp/housing-atlas")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.user_agent", "housing-atlas/1.0")
	v.SetDefault("cache.ttl_minutes", 15)
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

	if cfg.Boundary.Strategy != "shapefile" && cfg.Boundary.Strategy != "geojson" {
		return nil, eris.Errorf("config: unknown boundary strategy %q", cfg.Boundary.Strategy)
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

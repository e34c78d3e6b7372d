package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Places     PlacesConfig     `yaml:"places" mapstructure:"places"`
	Overpass   OverpassConfig   `yaml:"overpass" mapstructure:"overpass"`
	Aggregate  AggregateConfig  `yaml:"aggregate" mapstructure:"aggregate"`
	PhotoCache PhotoCacheConfig `yaml:"photo_cache" mapstructure:"photo_cache"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// PlacesConfig holds directory provider credentials and tuning.
type PlacesConfig struct {
	Key      string  `yaml:"key" mapstructure:"key"`
	BaseURL  string  `yaml:"base_url" mapstructure:"base_url"`
	Language string  `yaml:"language" mapstructure:"language"`
	Region   string  `yaml:"region" mapstructure:"region"`
	RPS      float64 `yaml:"rps" mapstructure:"rps"`
}

// OverpassConfig holds tag-store provider settings.
type OverpassConfig struct {
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// AggregateConfig bounds the aggregation pipeline.
type AggregateConfig struct {
	Radii             []int `yaml:"radii" mapstructure:"radii"`
	NearbyCap         int   `yaml:"nearby_cap" mapstructure:"nearby_cap"`
	TextCap           int   `yaml:"text_cap" mapstructure:"text_cap"`
	TextBiasRadius    int   `yaml:"text_bias_radius" mapstructure:"text_bias_radius"`
	DetailConcurrency int   `yaml:"detail_concurrency" mapstructure:"detail_concurrency"`
	UseRealData       bool  `yaml:"use_real_data" mapstructure:"use_real_data"`
}

// PhotoCacheConfig configures the photo cache backend.
type PhotoCacheConfig struct {
	Driver     string `yaml:"driver" mapstructure:"driver"` // "memory" or "sqlite"
	Path       string `yaml:"path" mapstructure:"path"`
	MaxEntries int    `yaml:"max_entries" mapstructure:"max_entries"`
	TTLHours   int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields required for the given mode ("serve" or
// "query"). All problems are reported at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.PhotoCache.Driver != "memory" && c.PhotoCache.Driver != "sqlite" {
			problems = append(problems, "photo_cache.driver must be memory or sqlite")
		}
		if c.PhotoCache.Driver == "sqlite" && c.PhotoCache.Path == "" {
			problems = append(problems, "photo_cache.path is required for the sqlite driver")
		}
		fallthrough
	case "query":
		if c.Aggregate.UseRealData && c.Places.Key == "" {
			problems = append(problems, "places.key is required when aggregate.use_real_data is set")
		}
		if c.Aggregate.DetailConcurrency < 1 || c.Aggregate.DetailConcurrency > 50 {
			problems = append(problems, "aggregate.detail_concurrency must be between 1 and 50")
		}
		for _, r := range c.Aggregate.Radii {
			if r <= 0 {
				problems = append(problems, "aggregate.radii values must be > 0")
				break
			}
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
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
	v.SetEnvPrefix("PAYMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("places.language", "ja")
	v.SetDefault("places.region", "jp")
	v.SetDefault("places.rps", 10.0)
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.rps", 1.0)
	v.SetDefault("aggregate.radii", []int{2000, 5000, 10000})
	v.SetDefault("aggregate.nearby_cap", 100)
	v.SetDefault("aggregate.text_cap", 20)
	v.SetDefault("aggregate.text_bias_radius", 50000)
	v.SetDefault("aggregate.detail_concurrency", 10)
	v.SetDefault("aggregate.use_real_data", false)
	v.SetDefault("photo_cache.driver", "memory")
	v.SetDefault("photo_cache.path", "photos.db")
	v.SetDefault("photo_cache.max_entries", 500)
	v.SetDefault("photo_cache.ttl_hours", 24)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
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

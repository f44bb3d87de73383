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
	Gemini  GeminiConfig  `yaml:"gemini" mapstructure:"gemini"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Notion  NotionConfig  `yaml:"notion" mapstructure:"notion"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Presets string        `yaml:"presets" mapstructure:"presets"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	Model     string  `yaml:"model" mapstructure:"model"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SearchConfig tunes the lead search retry ladder.
type SearchConfig struct {
	BatchSize      int           `yaml:"batch_size" mapstructure:"batch_size"`
	MinRetryBatch  int           `yaml:"min_retry_batch" mapstructure:"min_retry_batch"`
	RetryDelay     time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
	ExclusionBound int           `yaml:"exclusion_bound" mapstructure:"exclusion_bound"`
	Temperature    float64       `yaml:"temperature" mapstructure:"temperature"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// NotionConfig holds Notion API credentials and the lead database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// GeocodeConfig configures location biasing.
type GeocodeConfig struct {
	Enabled   bool    `yaml:"enabled" mapstructure:"enabled"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets and URLs have no defaults, and AutomaticEnv alone does not
	// surface defaultless keys through Unmarshal. Bind them explicitly so
	// env-only setups work without a config file.
	for _, key := range []string{"gemini.key", "notion.token", "notion.lead_db", "store.database_url"} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.rate_limit", 1.0)
	v.SetDefault("search.batch_size", 20)
	v.SetDefault("search.min_retry_batch", 5)
	v.SetDefault("search.retry_delay", 2*time.Second)
	v.SetDefault("search.exclusion_bound", 120)
	v.SetDefault("search.temperature", 0.4)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "leads.db")
	v.SetDefault("geocode.enabled", true)
	v.SetDefault("geocode.rate_limit", 5.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("presets", "presets.yaml")

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

// Package config loads service settings from defaults, an optional YAML file,
// a .env file and CLUBS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "CLUBS"

// Session storage backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Submit   SubmitConfig   `mapstructure:"submit"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CatalogConfig struct {
	// Path to a clubs YAML file; empty uses the embedded catalog
	Path string `mapstructure:"path"`
}

type SubmitConfig struct {
	JoinEndpoint    string        `mapstructure:"join_endpoint"`
	Token           string        `mapstructure:"token"`
	ContactEndpoint string        `mapstructure:"contact_endpoint"`
	ContactFormName string        `mapstructure:"contact_form_name"`
	AutoClose       time.Duration `mapstructure:"auto_close"`
}

type SessionConfig struct {
	Backend       string        `mapstructure:"backend"`
	CookieName    string        `mapstructure:"cookie_name"`
	Expiration    time.Duration `mapstructure:"expiration"`
	VisitorIdle   time.Duration `mapstructure:"visitor_idle"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("catalog.path", "")
	v.SetDefault("submit.join_endpoint", "")
	v.SetDefault("submit.token", "")
	v.SetDefault("submit.contact_endpoint", "")
	v.SetDefault("submit.contact_form_name", "contact")
	v.SetDefault("submit.auto_close", 3*time.Second)
	v.SetDefault("session.backend", BackendMemory)
	v.SetDefault("session.cookie_name", "clubs_session")
	v.SetDefault("session.expiration", 24*time.Hour)
	v.SetDefault("session.visitor_idle", 30*time.Minute)
	v.SetDefault("session.sweep_interval", 5*time.Minute)
	v.SetDefault("database.url", "")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// Load reads the configuration. An empty path looks for config.yaml in the
// working directory and ./configs; a missing file is not an error unless path
// was given explicitly.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail at first use
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}

	switch c.Session.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres session backend")
		}
	case BackendRedis:
		if c.Redis.Address == "" {
			return errors.New("redis.address is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}

	if c.Session.Expiration <= 0 {
		return errors.New("session.expiration must be positive")
	}
	if c.Session.VisitorIdle <= 0 || c.Session.SweepInterval <= 0 {
		return errors.New("session.visitor_idle and session.sweep_interval must be positive")
	}
	if c.Submit.AutoClose < 0 {
		return errors.New("submit.auto_close must not be negative")
	}
	return nil
}

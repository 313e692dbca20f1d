package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/docroute/pkg/auth"
	"github.com/JaimeStill/docroute/pkg/database"
	"github.com/JaimeStill/docroute/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvDocrouteEnv             = "DOCROUTE_ENV"
	EnvDocrouteShutdownTimeout = "DOCROUTE_SHUTDOWN_TIMEOUT"
	EnvDocrouteVersion         = "DOCROUTE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "DOCROUTE_DB_HOST",
	Port:            "DOCROUTE_DB_PORT",
	Name:            "DOCROUTE_DB_NAME",
	User:            "DOCROUTE_DB_USER",
	Password:        "DOCROUTE_DB_PASSWORD",
	SSLMode:         "DOCROUTE_DB_SSL_MODE",
	MaxOpenConns:    "DOCROUTE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "DOCROUTE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DOCROUTE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "DOCROUTE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "DOCROUTE_STORAGE_CONTAINER_NAME",
	ConnectionString: "DOCROUTE_STORAGE_CONNECTION_STRING",
	AccountURL:       "DOCROUTE_STORAGE_ACCOUNT_URL",
}

var authEnv = &auth.Env{
	Required: "DOCROUTE_AUTH_REQUIRED",
	Issuer:   "DOCROUTE_AUTH_ISSUER",
	ClientID: "DOCROUTE_AUTH_CLIENT_ID",
}

// Config is the root configuration for the docroute service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	Storage         storage.Config   `toml:"storage"`
	API             APIConfig        `toml:"api"`
	Auth            auth.Config      `toml:"auth"`
	Classifier      ClassifierConfig `toml:"classifier"`
	Dispatch        DispatchConfig   `toml:"dispatch"`
	Workbench       WorkbenchConfig  `toml:"workbench"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the DOCROUTE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvDocrouteEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Classifier.Merge(&overlay.Classifier)
	c.Dispatch.Merge(&overlay.Dispatch)
	c.Workbench.Merge(&overlay.Workbench)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Classifier.Finalize(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Dispatch.Finalize(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	if err := c.Workbench.Finalize(); err != nil {
		return fmt.Errorf("workbench: %w", err)
	}
	if c.Server.WriteTimeoutDuration() <= c.Workbench.ClassifyTimeoutDuration() {
		return fmt.Errorf("server write_timeout %s must exceed workbench classify_timeout %s",
			c.Server.WriteTimeout, c.Workbench.ClassifyTimeout)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvDocrouteShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvDocrouteVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvDocrouteEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

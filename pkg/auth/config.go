package auth

import (
	"fmt"
	"os"
	"strconv"
)

// Config controls bearer credential handling. With an Issuer set, tokens are
// verified as OIDC ID tokens for ClientID; otherwise they are treated as
// opaque and only forwarded.
type Config struct {
	Required bool   `toml:"required"`
	Issuer   string `toml:"issuer"`
	ClientID string `toml:"client_id"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Required string
	Issuer   string
	ClientID string
}

// Finalize applies environment variable overrides and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Required can only be
// switched on by an overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Required {
		c.Required = true
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Required != "" {
		if v := os.Getenv(env.Required); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Required = b
			}
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
}

func (c *Config) validate() error {
	if c.Issuer != "" && c.ClientID == "" {
		return fmt.Errorf("client_id required when issuer is set")
	}
	return nil
}

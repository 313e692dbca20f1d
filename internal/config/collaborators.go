package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

const (
	EnvClassifierURL   = "DOCROUTE_CLASSIFIER_URL"
	EnvClassifierField = "DOCROUTE_CLASSIFIER_FIELD"

	EnvDispatchDriver  = "DOCROUTE_DISPATCH_DRIVER"
	EnvDispatchURL     = "DOCROUTE_DISPATCH_URL"
	EnvDispatchNATSURL = "DOCROUTE_DISPATCH_NATS_URL"
	EnvDispatchSubject = "DOCROUTE_DISPATCH_SUBJECT"
	EnvDispatchTimeout = "DOCROUTE_DISPATCH_TIMEOUT"
)

// Dispatch drivers.
const (
	DispatchHTTP = "http"
	DispatchNATS = "nats"
)

// ClassifierConfig locates the batch classification collaborator.
type ClassifierConfig struct {
	URL   string `toml:"url"`
	Field string `toml:"field"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ClassifierConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ClassifierConfig) Merge(overlay *ClassifierConfig) {
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.Field != "" {
		c.Field = overlay.Field
	}
}

func (c *ClassifierConfig) loadDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:5000/classify-docs"
	}
	if c.Field == "" {
		c.Field = "files"
	}
}

func (c *ClassifierConfig) loadEnv() {
	if v := os.Getenv(EnvClassifierURL); v != "" {
		c.URL = v
	}
	if v := os.Getenv(EnvClassifierField); v != "" {
		c.Field = v
	}
}

func (c *ClassifierConfig) validate() error {
	return validateURL("url", c.URL)
}

// DispatchConfig selects and configures the notification sender.
type DispatchConfig struct {
	Driver  string `toml:"driver"`
	URL     string `toml:"url"`
	NATSURL string `toml:"nats_url"`
	Subject string `toml:"subject"`
	Timeout string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *DispatchConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *DispatchConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *DispatchConfig) Merge(overlay *DispatchConfig) {
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.NATSURL != "" {
		c.NATSURL = overlay.NATSURL
	}
	if overlay.Subject != "" {
		c.Subject = overlay.Subject
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *DispatchConfig) loadDefaults() {
	if c.Driver == "" {
		c.Driver = DispatchHTTP
	}
	if c.URL == "" {
		c.URL = "http://localhost:5000/send-classification"
	}
	if c.NATSURL == "" {
		c.NATSURL = "nats://127.0.0.1:4222"
	}
	if c.Subject == "" {
		c.Subject = "docroute.dispatch"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
}

func (c *DispatchConfig) loadEnv() {
	for dst, name := range map[*string]string{
		&c.Driver:  EnvDispatchDriver,
		&c.URL:     EnvDispatchURL,
		&c.NATSURL: EnvDispatchNATSURL,
		&c.Subject: EnvDispatchSubject,
		&c.Timeout: EnvDispatchTimeout,
	} {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
}

func (c *DispatchConfig) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	switch c.Driver {
	case DispatchHTTP:
		return validateURL("url", c.URL)
	case DispatchNATS:
		if c.Subject == "" {
			return fmt.Errorf("subject required for nats driver")
		}
		return validateURL("nats_url", c.NATSURL)
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s: %q must be absolute", field, raw)
	}
	return nil
}

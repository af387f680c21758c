package events

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Env maps environment variable names for event configuration.
type Env struct {
	Enabled string
	URL     string
	Prefix  string
}

// Config contains NATS publisher settings.
type Config struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Prefix  string `toml:"prefix"`
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
}

// Subject qualifies name with the configured prefix.
func (c *Config) Subject(name string) string {
	if c.Prefix == "" {
		return name
	}
	return c.Prefix + "." + name
}

func (c *Config) loadDefaults() {
	if c.URL == "" {
		c.URL = "nats://localhost:4222"
	}
	if c.Prefix == "" {
		c.Prefix = "school-feed"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Enabled = b
			}
		}
	}
	if env.URL != "" {
		if v := os.Getenv(env.URL); v != "" {
			c.URL = v
		}
	}
	if env.Prefix != "" {
		if v := os.Getenv(env.Prefix); v != "" {
			c.Prefix = v
		}
	}
}

func (c *Config) validate() error {
	if strings.ContainsAny(c.Prefix, " *>") {
		return fmt.Errorf("invalid subject prefix %q", c.Prefix)
	}
	return nil
}

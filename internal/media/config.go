package media

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	ProviderStorage    = "storage"
	ProviderCloudinary = "cloudinary"
)

// Env maps environment variable names for media configuration.
type Env struct {
	Provider        string
	PublicURL       string
	CloudinaryURL   string
	ImagesBucket    string
	DocumentsBucket string
	Serve           string
}

// Config selects the media provider and the bucket names posts upload into.
type Config struct {
	Provider        string `toml:"provider"`
	PublicURL       string `toml:"public_url"`
	CloudinaryURL   string `toml:"cloudinary_url"`
	ImagesBucket    string `toml:"images_bucket"`
	DocumentsBucket string `toml:"documents_bucket"`
	Serve           bool   `toml:"serve"`
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.PublicURL != "" {
		c.PublicURL = overlay.PublicURL
	}
	if overlay.CloudinaryURL != "" {
		c.CloudinaryURL = overlay.CloudinaryURL
	}
	if overlay.ImagesBucket != "" {
		c.ImagesBucket = overlay.ImagesBucket
	}
	if overlay.DocumentsBucket != "" {
		c.DocumentsBucket = overlay.DocumentsBucket
	}
	c.Serve = overlay.Serve
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderStorage
	}
	if c.PublicURL == "" {
		c.PublicURL = "http://localhost:8080/media"
	}
	if c.ImagesBucket == "" {
		c.ImagesBucket = "posts"
	}
	if c.DocumentsBucket == "" {
		c.DocumentsBucket = "documents"
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := getenv(env.Provider); v != "" {
		c.Provider = v
	}
	if v := getenv(env.PublicURL); v != "" {
		c.PublicURL = v
	}
	if v := getenv(env.CloudinaryURL); v != "" {
		c.CloudinaryURL = v
	}
	if v := getenv(env.ImagesBucket); v != "" {
		c.ImagesBucket = v
	}
	if v := getenv(env.DocumentsBucket); v != "" {
		c.DocumentsBucket = v
	}
	if v := getenv(env.Serve); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Serve = b
		}
	}
}

func (c *Config) validate() error {
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")

	switch c.Provider {
	case ProviderStorage:
		if c.PublicURL == "" {
			return fmt.Errorf("public_url required for %s provider", ProviderStorage)
		}
	case ProviderCloudinary:
		if c.CloudinaryURL == "" {
			return fmt.Errorf("cloudinary_url required for %s provider", ProviderCloudinary)
		}
	default:
		return fmt.Errorf("invalid provider: %s (must be %s or %s)", c.Provider, ProviderStorage, ProviderCloudinary)
	}
	return nil
}

func getenv(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}

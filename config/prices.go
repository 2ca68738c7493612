package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/nexthour/auth"
)

// PricesConfig selects the upstream price source.
type PricesConfig struct {
	// Source is the connector id: "elprisen" or "static".
	Source string `json:"source"`
	// BaseURL overrides the elprisen endpoint.
	BaseURL string `json:"base_url"`
	// StaticPath is the JSON file read by the static connector.
	StaticPath string `json:"static_path"`
	// DefaultGLN is used when a request carries no GLN number.
	DefaultGLN string `json:"default_gln"`
	// Location names the time zone in which calendar days are cut.
	Location       string `json:"location"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// Auth enables OAuth2 client credentials towards BaseURL.
	Auth auth.Conf `json:"auth"`
}

func (c *PricesConfig) SetDefaults() {
	if c.Source == "" {
		c.Source = "elprisen"
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://elprisen.somjson.dk"
	}
	if c.Location == "" {
		c.Location = "Europe/Copenhagen"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

func (c PricesConfig) Validate() error {
	switch c.Source {
	case "elprisen":
	case "static":
		if c.StaticPath == "" {
			return fmt.Errorf("static_path is required for the static source")
		}
	default:
		return fmt.Errorf("unknown source %s", c.Source)
	}
	if _, err := time.LoadLocation(c.Location); err != nil {
		return fmt.Errorf("location: %w", err)
	}
	return nil
}

// Loc returns the configured location, UTC when it cannot be loaded.
func (c PricesConfig) Loc() *time.Location {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c PricesConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

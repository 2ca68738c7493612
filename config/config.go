package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	_ "time/tzdata"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/nexthour/core/metrics"
	"github.com/kilianp07/nexthour/infra/mqtt"
)

// GLNEnv names the variable holding the default GLN number.
const GLNEnv = "GLN_NUMBER"

type Config struct {
	Server   ServerConfig   `json:"server"`
	Prices   PricesConfig   `json:"prices"`
	Graph    GraphConfig    `json:"graph"`
	Metrics  metrics.Config `json:"metrics"`
	QueryLog QueryLogConfig `json:"querylog"`
	Warmup   WarmupConfig   `json:"warmup"`
	MQTT     mqtt.Config    `json:"mqtt"`
	Sentry   SentryConfig   `json:"sentry"`
	Log      LogConfig      `json:"log"`
}

// Load reads the file at path, applies K_ environment overrides and fills in
// defaults. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if cfg.Prices.DefaultGLN == "" {
		cfg.Prices.DefaultGLN = os.Getenv(GLNEnv)
	}
	if len(cfg.Graph.Blacklist) == 0 {
		cfg.Graph.Blacklist = SplitBlacklist(os.Getenv(BlacklistEnv))
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Prices.SetDefaults()
	c.Graph.SetDefaults()
	c.QueryLog.SetDefaults()
	c.Warmup.SetDefaults()
	if c.MQTT.Broker != "" {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Prices.Validate(); err != nil {
		return fmt.Errorf("prices: %w", err)
	}
	if err := c.Graph.Validate(); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	if err := c.QueryLog.Validate(); err != nil {
		return fmt.Errorf("querylog: %w", err)
	}
	if err := c.Warmup.Validate(); err != nil {
		return fmt.Errorf("warmup: %w", err)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"
)

// BlacklistEnv names the variable holding ';'-separated edge lines to skip.
const BlacklistEnv = "BLACKLIST"

// GraphConfig defines the reachability graph. An empty EdgesPath disables
// the graph endpoints.
type GraphConfig struct {
	EdgesPath       string   `json:"edges_path"`
	Blacklist       []string `json:"blacklist"`
	CacheSize       int      `json:"cache_size"`
	CacheTTLSeconds int      `json:"cache_ttl_seconds"`
}

func (c *GraphConfig) SetDefaults() {
	if c.CacheSize <= 0 {
		c.CacheSize = 30
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = 60
	}
}

func (c GraphConfig) Validate() error {
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive")
	}
	return nil
}

func (c GraphConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// SplitBlacklist splits a ';'-separated list, dropping empty entries.
func SplitBlacklist(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

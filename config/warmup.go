package config

import "fmt"

// DefaultWarmupSchedules poll while tomorrow's prices are usually published
// and once after midnight.
var DefaultWarmupSchedules = []string{"0 */15 12-15 * * *", "0 5 0 * * *"}

// WarmupConfig defines the scheduled prefetch of price curves.
type WarmupConfig struct {
	Enabled bool `json:"enabled"`
	// Schedules are cron expressions with a seconds field.
	Schedules []string `json:"schedules"`
	// Partitions to prefetch. Empty means the default GLN only.
	Partitions []string `json:"partitions"`
}

func (c *WarmupConfig) SetDefaults() {
	if len(c.Schedules) == 0 {
		c.Schedules = append([]string(nil), DefaultWarmupSchedules...)
	}
}

func (c WarmupConfig) Validate() error {
	if c.Enabled && len(c.Schedules) == 0 {
		return fmt.Errorf("at least one schedule is required")
	}
	return nil
}

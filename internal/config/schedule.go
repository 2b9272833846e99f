package config

import (
	"errors"
	"fmt"
	"time"
)

// ScheduleConfig controls the recurring digest runs.
type ScheduleConfig struct {
	// Cron is a standard 5-field cron expression.
	Cron string `yaml:"cron"`
	// TimeZone is the location the cron expression is evaluated in.
	TimeZone string `yaml:"timezone"`
}

// DefaultScheduleConfig returns schedule defaults (daily at 09:00).
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{Cron: "0 9 * * *", TimeZone: "UTC"}
}

func (c ScheduleConfig) withEnv() ScheduleConfig {
	return ScheduleConfig{
		Cron:     GetEnv("SCHEDULE_CRON", c.Cron),
		TimeZone: GetEnv("SCHEDULE_TIMEZONE", c.TimeZone),
	}
}

// Location resolves TimeZone.
func (c ScheduleConfig) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.TimeZone)
}

// Validate validates schedule configuration. The cron expression itself is
// parsed by the scheduler.
func (c ScheduleConfig) Validate() error {
	if c.Cron == "" {
		return errors.New("SCHEDULE_CRON must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid SCHEDULE_TIMEZONE %q: %w", c.TimeZone, err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"time"
)

// ReportConfig controls what goes into a digest.
type ReportConfig struct {
	// Projects is the ordered list of project keys. Empty means discover.
	Projects []string `yaml:"projects"`
	// DiscoveryLimit bounds how many discovered projects are used when Projects is empty.
	DiscoveryLimit int `yaml:"discovery_limit"`
	// AgeThresholdDays is the minimum age of an old backlog issue.
	AgeThresholdDays int `yaml:"age_threshold_days"`
	// Status labels as configured in the tracker workflow.
	BlockedStatus    string `yaml:"blocked_status"`
	InProgressStatus string `yaml:"in_progress_status"`
	BacklogStatus    string `yaml:"backlog_status"`
	// MaxParallelQueries bounds how many projects are queried at once.
	MaxParallelQueries int `yaml:"max_parallel_queries"`
	// RunTimeout bounds digest generation. Projects not finished by then are skipped.
	RunTimeout time.Duration `yaml:"run_timeout"`
	// TimeZone names the location used for the report date.
	TimeZone string `yaml:"timezone"`
}

// DefaultReportConfig returns report defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		DiscoveryLimit:     5,
		AgeThresholdDays:   50,
		BlockedStatus:      "Blocked",
		InProgressStatus:   "In Progress",
		BacklogStatus:      "Backlog",
		MaxParallelQueries: 4,
		RunTimeout:         5 * time.Minute,
		TimeZone:           "UTC",
	}
}

// LoadReportConfigFromEnv loads report configuration from environment variables.
func LoadReportConfigFromEnv() ReportConfig {
	return DefaultReportConfig().withEnv()
}

func (c ReportConfig) withEnv() ReportConfig {
	return ReportConfig{
		Projects:           GetEnvList("REPORT_PROJECTS", c.Projects),
		DiscoveryLimit:     GetEnvInt("REPORT_DISCOVERY_LIMIT", c.DiscoveryLimit),
		AgeThresholdDays:   GetEnvInt("REPORT_AGE_THRESHOLD_DAYS", c.AgeThresholdDays),
		BlockedStatus:      GetEnv("REPORT_BLOCKED_STATUS", c.BlockedStatus),
		InProgressStatus:   GetEnv("REPORT_IN_PROGRESS_STATUS", c.InProgressStatus),
		BacklogStatus:      GetEnv("REPORT_BACKLOG_STATUS", c.BacklogStatus),
		MaxParallelQueries: GetEnvInt("REPORT_MAX_PARALLEL_QUERIES", c.MaxParallelQueries),
		RunTimeout:         GetEnvDuration("REPORT_RUN_TIMEOUT", c.RunTimeout),
		TimeZone:           GetEnv("REPORT_TIMEZONE", c.TimeZone),
	}
}

// Location resolves TimeZone, falling back to UTC when it is empty.
func (c ReportConfig) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.TimeZone)
}

// Validate validates report configuration.
func (c ReportConfig) Validate() error {
	if c.DiscoveryLimit <= 0 {
		return errors.New("REPORT_DISCOVERY_LIMIT must be greater than 0")
	}
	if c.AgeThresholdDays < 0 {
		return errors.New("REPORT_AGE_THRESHOLD_DAYS must not be negative")
	}
	if c.BlockedStatus == "" || c.InProgressStatus == "" || c.BacklogStatus == "" {
		return errors.New("status labels must not be empty")
	}
	if c.MaxParallelQueries <= 0 {
		return errors.New("REPORT_MAX_PARALLEL_QUERIES must be greater than 0")
	}
	if c.RunTimeout <= 0 {
		return errors.New("REPORT_RUN_TIMEOUT must be greater than 0")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", c.TimeZone, err)
	}
	return nil
}

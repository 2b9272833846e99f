package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	// SourceJira reads issues from the Jira REST API.
	SourceJira = "jira"
	// SourceDatabase reads issues from a mirrored issues table.
	SourceDatabase = "database"
)

// TrackerConfig describes where issues come from.
type TrackerConfig struct {
	// Source selects the issue source (jira, database).
	Source string `yaml:"source"`
	// BaseURL is the Jira server URL, e.g. https://example.atlassian.net.
	BaseURL string `yaml:"base_url"`
	// Email is the account used together with APIToken for basic auth.
	Email string `yaml:"email"`
	// APIToken is the Jira Cloud API token.
	APIToken string `yaml:"api_token"`
	// PAT is a personal access token (Jira Data Center). Takes precedence over basic auth.
	PAT string `yaml:"pat"`
	// APIVersion is the REST API version (2 or 3).
	APIVersion string `yaml:"api_version"`
	// Timeout bounds every single tracker request.
	Timeout time.Duration `yaml:"timeout"`
	// MaxResults caps the number of issues fetched per query.
	MaxResults int `yaml:"max_results"`
}

// DefaultTrackerConfig returns tracker defaults.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Source:     SourceJira,
		APIVersion: "2",
		Timeout:    30 * time.Second,
		MaxResults: 1000,
	}
}

// LoadTrackerConfigFromEnv loads tracker configuration from environment variables.
func LoadTrackerConfigFromEnv() TrackerConfig {
	return DefaultTrackerConfig().withEnv()
}

func (c TrackerConfig) withEnv() TrackerConfig {
	return TrackerConfig{
		Source:     GetEnv("TRACKER_SOURCE", c.Source),
		BaseURL:    GetEnv("JIRA_BASE_URL", c.BaseURL),
		Email:      GetEnv("JIRA_EMAIL", c.Email),
		APIToken:   GetEnv("JIRA_API_TOKEN", c.APIToken),
		PAT:        GetEnv("JIRA_PAT", c.PAT),
		APIVersion: GetEnv("JIRA_API_VERSION", c.APIVersion),
		Timeout:    GetEnvDuration("JIRA_TIMEOUT", c.Timeout),
		MaxResults: GetEnvInt("JIRA_MAX_RESULTS", c.MaxResults),
	}
}

// Validate validates tracker configuration.
func (c TrackerConfig) Validate() error {
	switch c.Source {
	case SourceDatabase:
		return nil
	case SourceJira:
	default:
		return fmt.Errorf("invalid TRACKER_SOURCE: %s (must be: jira, database)", c.Source)
	}

	if c.BaseURL == "" {
		return errors.New("JIRA_BASE_URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("JIRA_BASE_URL is not an absolute URL: %q", c.BaseURL)
	}
	if c.PAT == "" && (c.Email == "" || c.APIToken == "") {
		return errors.New("either JIRA_PAT or both JIRA_EMAIL and JIRA_API_TOKEN are required")
	}
	if c.APIVersion != "2" && c.APIVersion != "3" {
		return fmt.Errorf("invalid JIRA_API_VERSION: %s (must be: 2, 3)", c.APIVersion)
	}
	if c.Timeout <= 0 {
		return errors.New("JIRA_TIMEOUT must be greater than 0")
	}
	if c.MaxResults <= 0 {
		return errors.New("JIRA_MAX_RESULTS must be greater than 0")
	}
	return nil
}

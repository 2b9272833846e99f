package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is read when DIGEST_CONFIG_FILE is not set.
const DefaultFileName = "digest.yaml"

// Load reads the optional YAML file at path, then applies environment
// overrides and validates the result. An empty path falls back to
// DIGEST_CONFIG_FILE and then DefaultFileName; a missing default file is not
// an error, a missing explicit file is.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv("DIGEST_CONFIG_FILE")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultFileName
	}

	base, err := loadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			base = Default()
		} else {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	cfg := base.WithEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile decodes path on top of the defaults, so keys absent from the file keep them.
func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

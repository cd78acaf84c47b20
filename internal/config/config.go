package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tasnim.dev/deploy-reaper/internal/constants"
)

// PathEnv overrides the location of the config file.
const PathEnv = "DEPLOY_REAPER_CONFIG"

// Config holds optional defaults loaded from ~/.config/deploy-reaper/config.yaml.
type Config struct {
	DefaultProfile string `yaml:"default_profile"`
	DefaultRegion  string `yaml:"default_region"`
	Endpoint       string `yaml:"endpoint"`
	BucketPrefix   string `yaml:"bucket_prefix"`
	Concurrency    int    `yaml:"concurrency"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
}

// Path returns the config file location.
func Path() (string, error) {
	if p := os.Getenv(PathEnv); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "deploy-reaper", "config.yaml"), nil
}

// Load reads the config file. Returns zero-value Config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return &Config{}, nil
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Merge applies CLI flag overrides. Flags take precedence over config defaults.
func (c *Config) Merge(profile, region string) (string, string) {
	return pick(profile, c.DefaultProfile), pick(region, c.DefaultRegion)
}

func (c *Config) EndpointOr(flag string) string {
	return pick(flag, c.Endpoint)
}

func (c *Config) BucketPrefixOr(flag string) string {
	return pick(flag, c.BucketPrefix, constants.DefaultBucketPrefix)
}

func (c *Config) LogLevelOr(flag string) string {
	return pick(flag, c.LogLevel)
}

func (c *Config) LogFormatOr(flag string) string {
	return pick(flag, c.LogFormat)
}

// Workers returns the bucket concurrency, at least 1.
func (c *Config) Workers(flag int) int {
	n := c.Concurrency
	if flag > 0 {
		n = flag
	}
	if n < 1 {
		return 1
	}
	return n
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

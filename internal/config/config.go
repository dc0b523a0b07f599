package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application settings, loaded from YAML with environment
// variable overrides for deployment-specific values.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Auction struct {
		SessionDurationMin int `yaml:"session_duration_min"`
	} `yaml:"auction"`

	Storage struct {
		Driver string `yaml:"driver"` // "memory" or "sqlite"
		Path   string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Load reads and parses the configuration file. A missing file yields the
// defaults so the service can run with zero configuration.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			overrideWithEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Auction.SessionDurationMin = 60
	cfg.Storage.Driver = "memory"
	cfg.Storage.Path = "data/nightbid.db"
	cfg.Logging.Level = "info"
	return cfg
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Auction.SessionDurationMin <= 0 {
		return fmt.Errorf("session duration must be positive")
	}
	switch c.Storage.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}
	if c.Storage.Driver == "sqlite" && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required for sqlite driver")
	}
	return nil
}

// overrideWithEnv applies environment variable overrides where present.
func overrideWithEnv(cfg *Config) {
	if port := os.Getenv("NIGHTBID_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if driver := os.Getenv("NIGHTBID_STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if path := os.Getenv("NIGHTBID_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if level := os.Getenv("NIGHTBID_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

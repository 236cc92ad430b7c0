package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server and client configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
	Auth   AuthConfig   `yaml:"auth"`
	Client ClientConfig `yaml:"client"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File, when set, receives logs instead of stderr.
	File string `yaml:"file"`
}

// AuthConfig controls bearer-token auth on the reference server.
type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
	// BootstrapToken is registered for BootstrapOwner at startup if set.
	BootstrapToken string `yaml:"bootstrap_token"`
	BootstrapOwner string `yaml:"bootstrap_owner"`
}

// ClientConfig configures the tabsync CLI and MCP server.
type ClientConfig struct {
	BaseURL          string        `yaml:"base_url"`
	Username         string        `yaml:"username"`
	Role             string        `yaml:"role"`
	Token            string        `yaml:"token"`
	StorePath        string        `yaml:"store_path"`
	Family           string        `yaml:"family"`
	AutosaveInterval time.Duration `yaml:"autosave_interval"`
	Timeout          time.Duration `yaml:"timeout"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "tabsync.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Client: ClientConfig{
			BaseURL:          "http://localhost:8080",
			StorePath:        "tabsync-local.db",
			Family:           "transaction",
			AutosaveInterval: time.Second,
			Timeout:          10 * time.Second,
		},
	}

	if path := os.Getenv("TABSYNC_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"TABSYNC_SERVER_HOST":          &cfg.Server.Host,
		"TABSYNC_DB_PATH":              &cfg.DB.Path,
		"TABSYNC_LOG_LEVEL":            &cfg.Log.Level,
		"TABSYNC_LOG_FILE":             &cfg.Log.File,
		"TABSYNC_AUTH_BOOTSTRAP_TOKEN": &cfg.Auth.BootstrapToken,
		"TABSYNC_AUTH_BOOTSTRAP_OWNER": &cfg.Auth.BootstrapOwner,
		"TABSYNC_BASE_URL":             &cfg.Client.BaseURL,
		"TABSYNC_USERNAME":             &cfg.Client.Username,
		"TABSYNC_ROLE":                 &cfg.Client.Role,
		"TABSYNC_TOKEN":                &cfg.Client.Token,
		"TABSYNC_STORE_PATH":           &cfg.Client.StorePath,
		"TABSYNC_FAMILY":               &cfg.Client.Family,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if portStr := os.Getenv("TABSYNC_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid TABSYNC_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("TABSYNC_AUTH_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TABSYNC_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}

	durations := map[string]*time.Duration{
		"TABSYNC_AUTOSAVE_INTERVAL": &cfg.Client.AutosaveInterval,
		"TABSYNC_TIMEOUT":           &cfg.Client.Timeout,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}

// Addr is the server listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

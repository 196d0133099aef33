package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"options-flow/src/helpers"
	"options-flow/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values for optional configuration fields.
const (
	DefaultName            = "options-flow"
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 8000
	DefaultLogLevel        = "INFO"
	DefaultGrpcPort        = 50051
	DefaultRequestTimeout  = 10 // seconds
	DefaultCookieURL       = "https://fc.yahoo.com"
	DefaultCrumbURL        = "https://query2.finance.yahoo.com/v1/test/getcrumb"
	DefaultOptionsURL      = "https://query2.finance.yahoo.com/v7/finance/options"
	DefaultCrumbTTLMs      = 600_000
	DefaultWatchInterval   = 30 // seconds
	DefaultWatchMaxClients = 64
)

// Environment variables that override the YAML file. A .env file next to the
// process is loaded first when present.
const (
	EnvHost      = "OPTIONSFLOW_HOST"
	EnvPort      = "OPTIONSFLOW_PORT"
	EnvLogLevel  = "OPTIONSFLOW_LOG_LEVEL"
	EnvUserAgent = "OPTIONSFLOW_USER_AGENT"
	EnvGrpcPort  = "OPTIONSFLOW_GRPC_PORT"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig

	// fileValues holds the settings as read from YAML, before env overrides.
	fileValues models.MConfig
	// envOverrides lists the environment variables applied on top of the file.
	envOverrides []string
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a validated Config from YAML bytes, applying defaults and
// environment overrides.
func Parse(data []byte) (*Config, error) {
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()
	config.fileValues = modelConfig

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed: %v", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file '%s': %w", path, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.GrpcPort == 0 {
		c.GrpcPort = DefaultGrpcPort
	}
	if c.GrpcHost == "" {
		c.GrpcHost = c.Host
	}

	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = DefaultRequestTimeout
	}

	if c.Provider.CookieURL == "" {
		c.Provider.CookieURL = DefaultCookieURL
	}
	if c.Provider.CrumbURL == "" {
		c.Provider.CrumbURL = DefaultCrumbURL
	}
	if c.Provider.OptionsURL == "" {
		c.Provider.OptionsURL = DefaultOptionsURL
	}
	if c.Provider.CrumbTTLMs == 0 {
		c.Provider.CrumbTTLMs = DefaultCrumbTTLMs
	}

	if c.Watch.IntervalSeconds == 0 {
		c.Watch.IntervalSeconds = DefaultWatchInterval
	}
	if c.Watch.MaxClients == 0 {
		c.Watch.MaxClients = DefaultWatchMaxClients
	}
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvHost); v != "" {
		c.Host = v
		c.envOverrides = append(c.envOverrides, EnvHost)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToUpper(v)
		c.envOverrides = append(c.envOverrides, EnvLogLevel)
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.Network.UserAgent = v
		c.envOverrides = append(c.envOverrides, EnvUserAgent)
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Port = port
		c.envOverrides = append(c.envOverrides, EnvPort)
	}
	if v := os.Getenv(EnvGrpcPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvGrpcPort, v, err)
		}
		c.GrpcPort = port
		c.envOverrides = append(c.envOverrides, EnvGrpcPort)
	}
	return nil
}

// -----------------------------------------------------------------------------

// persistable returns the live config with env-overridden fields put back to
// their file values.
func (c *Config) persistable() models.MConfig {
	out := *c.MConfig
	for _, name := range c.envOverrides {
		switch name {
		case EnvHost:
			out.Host = c.fileValues.Host
		case EnvLogLevel:
			out.LogLevel = c.fileValues.LogLevel
		case EnvUserAgent:
			out.Network.UserAgent = c.fileValues.Network.UserAgent
		case EnvPort:
			out.Port = c.fileValues.Port
		case EnvGrpcPort:
			out.GrpcPort = c.fileValues.GrpcPort
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort <= 1024 || c.GrpcPort > 65535 {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}
	if c.GrpcPort == c.Port && c.GrpcHost == c.Host {
		return fmt.Errorf("grpc port cannot equal server port (%d)", c.Port)
	}

	// Network
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}

	// Provider
	for name, raw := range map[string]string{
		"provider.cookie_url":  c.Provider.CookieURL,
		"provider.crumb_url":   c.Provider.CrumbURL,
		"provider.options_url": c.Provider.OptionsURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.Provider.CrumbTTLMs <= 0 {
		return fmt.Errorf("provider.crumb_ttl_ms must be greater than 0")
	}

	// Watch
	if c.Watch.IntervalSeconds <= 0 {
		return fmt.Errorf("watch.interval_seconds must be greater than 0")
	}
	if c.Watch.MaxClients < 1 {
		return fmt.Errorf("watch.max_clients must be >= 1")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path.
// Values that came from the environment are written as they were in the file.
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	out := c.persistable()
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

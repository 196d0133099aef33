package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"options-flow/src/helpers"
	"options-flow/src/models"

	"gopkg.in/yaml.v3"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("name: flow-test\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Host != DefaultHost {
		t.Errorf("Host = %q, want %q", cfg.Host, DefaultHost)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.Network.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %d, want %d", cfg.Network.RequestTimeout, DefaultRequestTimeout)
	}
	if cfg.Provider.CrumbTTLMs != 600_000 {
		t.Errorf("CrumbTTLMs = %d, want 600000", cfg.Provider.CrumbTTLMs)
	}
	if cfg.Provider.OptionsURL != DefaultOptionsURL {
		t.Errorf("OptionsURL = %q", cfg.Provider.OptionsURL)
	}
	if cfg.Watch.IntervalSeconds != DefaultWatchInterval {
		t.Errorf("Watch.IntervalSeconds = %d", cfg.Watch.IntervalSeconds)
	}
}

func TestParseYAMLValues(t *testing.T) {
	yamlData := `
name: custom
host: 0.0.0.0
port: 9100
log_level: DEBUG
grpc_port: 9101
network:
  timeout: 4
  user_agent: flow/1.0
provider:
  crumb_ttl_ms: 1000
  options_url: http://localhost:9999/options
watch:
  interval_seconds: 5
  market_hours_only: true
  max_clients: 2
`
	cfg, err := Parse([]byte(yamlData))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Port != 9100 || cfg.GrpcPort != 9101 {
		t.Errorf("ports = %d/%d", cfg.Port, cfg.GrpcPort)
	}
	if cfg.GetLogLevel() != "DEBUG" {
		t.Errorf("LogLevel = %q", cfg.GetLogLevel())
	}
	if cfg.Network.RequestTimeout != 4 || cfg.Network.UserAgent != "flow/1.0" {
		t.Errorf("network = %+v", cfg.Network)
	}
	if cfg.Provider.CrumbTTLMs != 1000 {
		t.Errorf("CrumbTTLMs = %d", cfg.Provider.CrumbTTLMs)
	}
	if !cfg.Watch.MarketHoursOnly || cfg.Watch.MaxClients != 2 {
		t.Errorf("watch = %+v", cfg.Watch)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "9200")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvUserAgent, "env-agent")

	cfg, err := Parse([]byte("name: env\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Port != 9200 {
		t.Errorf("Port = %d, want 9200", cfg.Port)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("LogLevel = %q, want DEBUG", cfg.LogLevel)
	}
	if cfg.Network.UserAgent != "env-agent" {
		t.Errorf("UserAgent = %q", cfg.Network.UserAgent)
	}
}

func TestParseInvalidEnvPort(t *testing.T) {
	t.Setenv(EnvPort, "eighty")
	if _, err := Parse([]byte("name: env\n")); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"low port", "port: 80\n", "invalid server port"},
		{"bad provider url", "provider:\n  crumb_url: not-a-url\n", "provider.crumb_url"},
		{"negative ttl", "provider:\n  crumb_ttl_ms: -1\n", "crumb_ttl_ms"},
		{"negative timeout", "network:\n  timeout: -2\n", "request timeout"},
		{"port clash", "port: 9000\ngrpc_port: 9000\n", "grpc port cannot equal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
			var cfgErr *helpers.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("error %T is not a ConfigurationError", err)
			}
		})
	}
}

func TestNewConfigAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("name: saved\nport: 8100\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfig(path)
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	cfg.Watch.IntervalSeconds = 12
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := NewConfig(path)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if reloaded.Watch.IntervalSeconds != 12 || reloaded.Port != 8100 {
		t.Errorf("reloaded = %+v", reloaded.MConfig)
	}

	if _, err := NewConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveKeepsFileValuesUnderEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("name: saved\nhost: 127.0.0.1\nport: 8100\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPort, "9300")
	t.Setenv(EnvHost, "0.0.0.0")
	t.Setenv(EnvUserAgent, "env-agent")

	cfg, err := NewConfig(path)
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	if cfg.Port != 9300 || cfg.Host != "0.0.0.0" {
		t.Fatalf("env not applied: %+v", cfg.MConfig)
	}
	cfg.Watch.IntervalSeconds = 7
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var saved models.MConfig
	if err := yaml.Unmarshal(raw, &saved); err != nil {
		t.Fatalf("decode saved file: %v", err)
	}
	if saved.Port != 8100 || saved.Host != "127.0.0.1" || saved.Network.UserAgent != "" {
		t.Errorf("env values leaked into file: port %d host %q ua %q", saved.Port, saved.Host, saved.Network.UserAgent)
	}
	if saved.Watch.IntervalSeconds != 7 {
		t.Errorf("saved interval = %d, want 7", saved.Watch.IntervalSeconds)
	}
	if cfg.Port != 9300 {
		t.Errorf("Save must not change the live config, Port = %d", cfg.Port)
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("OPTIONSFLOW_TEST_LOADED=yes\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("OPTIONSFLOW_TEST_LOADED") })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("OPTIONSFLOW_TEST_LOADED"); got != "yes" {
		t.Errorf("env value = %q, want yes", got)
	}
}

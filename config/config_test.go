package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  mtp: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if !cfg.Logging.MTP {
		t.Error("logging.mtp from file was lost")
	}
	if cfg.Logging.USB {
		t.Error("logging.usb should default to false")
	}
	if cfg.Server.Listen != "localhost:9100" {
		t.Errorf("Expected default listen localhost:9100, got %q", cfg.Server.Listen)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown_timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  listen: "0.0.0.0:8080"
  read_only: true
  shutdown_timeout: 5s

device:
  pattern: "Nexus"
  uncached: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Listen != "0.0.0.0:8080" {
		t.Errorf("listen = %q", cfg.Server.Listen)
	}
	if !cfg.Server.ReadOnly {
		t.Error("read_only was lost")
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("shutdown_timeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Device.Pattern != "Nexus" || !cfg.Device.Uncached {
		t.Errorf("device section = %+v", cfg.Device)
	}
}

func TestLoad_BadListen(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  listen: "not a listen address"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected validation to reject the listen address")
	}
}

func TestLoad_BadPattern(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
device:
  pattern: "("
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected validation to reject the device pattern")
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Point XDG_CONFIG_HOME at an empty directory so the user's real
	// config cannot leak into the test.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load without a config file must fall back to defaults: %v", err)
	}
	if cfg.Server.Listen != "localhost:9100" {
		t.Errorf("listen = %q", cfg.Server.Listen)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// The file sets one value, the environment overrides it and adds
	// keys the file never mentions.
	configContent := `
server:
  listen: "localhost:9111"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("MTPD_SERVER_LISTEN", "127.0.0.1:9200")
	t.Setenv("MTPD_SERVER_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("MTPD_LOGGING_MTP", "true")
	t.Setenv("MTPD_DEVICE_PATTERN", "Nexus")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Listen != "127.0.0.1:9200" {
		t.Errorf("env must override the file, got listen %q", cfg.Server.Listen)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("shutdown_timeout from env = %v", cfg.Server.ShutdownTimeout)
	}
	if !cfg.Logging.MTP {
		t.Error("logging.mtp from env was lost")
	}
	if cfg.Device.Pattern != "Nexus" {
		t.Errorf("device.pattern from env = %q", cfg.Device.Pattern)
	}
}

func TestValidate_MissingTimeout(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Listen = "localhost:9100"
	if err := Validate(cfg); err == nil {
		t.Fatal("zero shutdown_timeout must fail validation")
	}
}

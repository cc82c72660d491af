// Package config loads the mtpserved configuration from file,
// environment and defaults.
//
// Sources in order of precedence: environment variables (MTPD_*), the
// configuration file (YAML), then defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete mtpserved configuration.
type Config struct {
	// Logging holds the per-subsystem debug switches.
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains the browse server settings.
	Server ServerConfig `mapstructure:"server"`

	// Device controls which MTP device is opened and how.
	Device DeviceConfig `mapstructure:"device"`
}

// LoggingConfig switches debug output per subsystem. Info and above is
// always emitted.
type LoggingConfig struct {
	USB  bool `mapstructure:"usb"`
	MTP  bool `mapstructure:"mtp"`
	Xfer bool `mapstructure:"xfer"`
	WWW  bool `mapstructure:"www"`
}

// ServerConfig contains the browse server settings.
type ServerConfig struct {
	// Listen is the host:port the HTTP/WebSocket server binds.
	Listen string `mapstructure:"listen" validate:"required,hostname_port"`

	// ReadOnly disables send, delete, move, rename and format.
	ReadOnly bool `mapstructure:"read_only"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// DeviceConfig controls device selection.
type DeviceConfig struct {
	// Pattern is a regexp matched against probed device ids
	// ("vid:pid vendor product serial"). Empty means any single
	// attached device.
	Pattern string `mapstructure:"pattern"`

	// Uncached opens the device without libmtp's metadata cache.
	Uncached bool `mapstructure:"uncached"`
}

// Load reads configuration from configPath (or the default location
// when empty), applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	// Every key is declared up front; viper only consults the
	// environment for keys it already knows about.
	v.SetDefault("logging.usb", false)
	v.SetDefault("logging.mtp", false)
	v.SetDefault("logging.xfer", false)
	v.SetDefault("logging.www", false)
	v.SetDefault("server.listen", "localhost:9100")
	v.SetDefault("server.read_only", false)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("device.pattern", "")
	v.SetDefault("device.uncached", false)

	// MTPD_SERVER_LISTEN=:9100 style overrides.
	v.SetEnvPrefix("MTPD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No file is fine; defaults and env carry it.
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns $XDG_CONFIG_HOME/mtpserved, falling back to
// ~/.config/mtpserved, then the current directory.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mtpserved")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mtpserved")
}

package config

import "time"

// ApplyDefaults fills unset fields with working values. Explicitly
// configured values are preserved.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = "localhost:9100"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
}

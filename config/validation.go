package config

import (
	"fmt"
	"net/url"
)

// ValidateConfig checks that required settings are present and well formed
func ValidateConfig(cfg *Config) error {
	if cfg.ServerPort == "" {
		return fmt.Errorf("server port is required")
	}
	if cfg.DBHost == "" || cfg.DBName == "" || cfg.DBUser == "" {
		return fmt.Errorf("database host, name and user are required")
	}
	if IsProduction() && cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if cfg.ChromeWSURL != "" {
		u, err := url.Parse(cfg.ChromeWSURL)
		if err != nil {
			return fmt.Errorf("invalid CHROME_WS_URL: %w", err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("CHROME_WS_URL must use ws:// or wss://, got %q", u.Scheme)
		}
	}
	if cfg.RenderTimeout <= 0 {
		return fmt.Errorf("render timeout must be positive")
	}
	return nil
}

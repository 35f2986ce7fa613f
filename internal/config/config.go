// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

// Package config loads Polyloc configuration via Koanf v2 with layered
// sources (highest priority wins): environment variables, YAML config file,
// built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration for the Polyloc server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds the embedded document store settings.
type DatabaseConfig struct {
	// Path is the BadgerDB data directory.
	Path string `koanf:"path"`

	// InMemory runs the store without disk persistence. Test/dev only.
	InMemory bool `koanf:"in_memory"`

	// GCInterval controls how often value-log garbage collection runs.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// APIConfig holds request handling defaults.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
	MaxImportFiles  int `koanf:"max_import_files"`
}

// SecurityConfig holds authentication and transport-security settings.
type SecurityConfig struct {
	// TokenSecret signs email-verification and password-reset tokens.
	TokenSecret string `koanf:"token_secret"`

	// TokenTTL bounds the lifetime of verification/reset tokens.
	TokenTTL time.Duration `koanf:"token_ttl"`

	SessionTimeout  time.Duration `koanf:"session_timeout"`
	SessionCookie   string        `koanf:"session_cookie"`
	CookieSecure    bool          `koanf:"cookie_secure"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsDevelopment returns true when the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" && !c.Database.InMemory {
		return fmt.Errorf("database.path is required unless database.in_memory is set")
	}
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be positive, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if !c.IsDevelopment() && len(c.Security.TokenSecret) < 32 {
		return fmt.Errorf("security.token_secret must be at least 32 characters outside development")
	}
	return nil
}

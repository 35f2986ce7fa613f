// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8604 {
		t.Errorf("Expected default port 8604, got %d", cfg.Server.Port)
	}
	if cfg.API.DefaultPageSize != 20 || cfg.API.MaxPageSize != 100 {
		t.Errorf("Unexpected page size defaults: %d/%d", cfg.API.DefaultPageSize, cfg.API.MaxPageSize)
	}
	if cfg.Security.SessionCookie != "polyloc_session" {
		t.Errorf("Expected default session cookie name, got %q", cfg.Security.SessionCookie)
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected development environment by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9001")
	t.Setenv("LOGGING_LEVEL", "debug")
	t.Setenv("SECURITY_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("Expected env port 9001, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected env log level debug, got %q", cfg.Logging.Level)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("Expected CORS origins %v, got %v", want, cfg.Security.CORSOrigins)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "99999")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "port") {
		t.Errorf("Expected port validation error, got %v", err)
	}
}

func TestValidateRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("SERVER_ENVIRONMENT", "production")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "token_secret") {
		t.Errorf("Expected token secret validation error, got %v", err)
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SERVER_PORT", "server.port"},
		{"SECURITY_TOKEN_SECRET", "security.token_secret"},
		{"DATABASE_IN_MEMORY", "database.in_memory"},
		{"UNRELATED_VAR", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

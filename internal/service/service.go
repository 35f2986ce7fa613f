// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

// Package service orchestrates the store, tree builders and exporters into
// the operations the API exposes: project and hierarchy management, project
// views with breadcrumbs and pagination, archive export and file import.
package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/polyloc/polyloc/internal/config"
	"github.com/polyloc/polyloc/internal/store"
)

// Domain errors raised by the service layer on top of the store sentinels.
var (
	ErrInvalidParent     = errors.New("parent must be a folder or component")
	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrParentNotFound    = errors.New("parent not found")
)

// Service is the application core wired between the HTTP layer and the
// store.
type Service struct {
	store *store.Store
	cfg   *config.APIConfig
}

// New creates the service.
func New(st *store.Store, cfg *config.APIConfig) *Service {
	return &Service{store: st, cfg: cfg}
}

// Store exposes the underlying store for callers that need raw access,
// such as the catalog seeding handler.
func (s *Service) Store() *store.Store {
	return s.store
}

// newID returns a fresh random hex id for nodes and values created on the
// server side (imports, value upserts without a client id).
func newID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in no state to
		// continue serving writes.
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// clampPageSize normalizes a client-supplied page size into configured
// bounds. Zero or negative means the default.
func (s *Service) clampPageSize(perPage int) int {
	if perPage <= 0 {
		return s.cfg.DefaultPageSize
	}
	if perPage > s.cfg.MaxPageSize {
		return s.cfg.MaxPageSize
	}
	return perPage
}

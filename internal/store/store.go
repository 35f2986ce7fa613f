// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

// Package store implements the document store for projects, nodes, values
// and the language catalog on top of BadgerDB.
//
// Every collection lives in the same keyspace under a distinct prefix, with
// documents stored as JSON. Secondary index keys (parent -> node) make child
// listings a prefix scan instead of a full collection walk. Multi-step
// mutations (entity create with initial values, entity update with value
// upserts, cascade deletes) run inside a single Badger transaction so they
// are atomic from the caller's perspective.
//
// Key layout:
//
//	project:<projectID>                         Project document
//	project_user:<userID>:<projectID>           ownership index -> projectID
//	node:<projectID>:<nodeID>                   Node document
//	node_parent:<projectID>:<parentID>:<nodeID> child index -> nodeID
//	value:<projectID>:<keyID>:<languageID>      Value document
//	rawlang:<languageID>                        RawLanguage document
//
// Value documents are keyed by (keyID, languageID) rather than by the
// client-supplied value id, which makes the one-value-per-language-per-key
// invariant structural: concurrent writers converge by last-write-wins on
// the same key.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/polyloc/polyloc/internal/config"
)

// Key prefixes for the shared BadgerDB keyspace.
const (
	projectKeyPrefix     = "project:"
	projectUserKeyPrefix = "project_user:"
	nodeKeyPrefix        = "node:"
	nodeParentKeyPrefix  = "node_parent:"
	valueKeyPrefix       = "value:"
	rawLangKeyPrefix     = "rawlang:"
)

// Sentinel errors surfaced to the service and API layers.
var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectExists    = errors.New("project already exists")
	ErrNodeNotFound     = errors.New("node not found")
	ErrNodeExists       = errors.New("node already exists")
	ErrLanguageNotFound = errors.New("language not found")
)

// Store is the process-wide document store handle. All components borrow it;
// none open or close connections themselves.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the BadgerDB-backed store at the configured path.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithLogger(nil)
	if cfg.InMemory {
		opts.Dir = ""
		opts.ValueDir = ""
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", cfg.Path, err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an already-open BadgerDB instance. Used by tests.
func NewWithDB(db *badger.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying BadgerDB handle for components that manage
// their own key prefixes, such as the auth stores.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunGC triggers one round of value-log garbage collection. Badger returns
// ErrNoRewrite when nothing was collected, which is not an error for us.
func (s *Store) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// now returns the current unix timestamp in milliseconds, the resolution
// used for createdAt/updatedAt fields.
func now() int64 {
	return time.Now().UnixMilli()
}

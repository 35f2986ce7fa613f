// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package store

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/polyloc/polyloc/internal/models"
)

func valueKey(projectID, keyID, languageID string) []byte {
	return []byte(valueKeyPrefix + projectID + ":" + keyID + ":" + languageID)
}

// upsertValuesTxn writes value documents inside txn. The storage key is the
// (keyID, languageID) pair, so writing an existing pair replaces it and the
// one-value-per-language-per-key invariant holds by construction. Values
// without an id get a fresh random one for API consumers that address values
// individually.
func upsertValuesTxn(txn *badger.Txn, values []models.Value) error {
	for i := range values {
		v := &values[i]
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal value: %w", err)
		}
		if err := txn.Set(valueKey(v.ProjectID, v.KeyID, v.LanguageID), data); err != nil {
			return fmt.Errorf("set value: %w", err)
		}
	}
	return nil
}

// UpsertValues writes a batch of values in one transaction.
func (s *Store) UpsertValues(values []models.Value) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return upsertValuesTxn(txn, values)
	})
}

// collectValuesTxn scans every value of a project and returns those matching
// the filter.
func collectValuesTxn(txn *badger.Txn, projectID string, match func(*models.Value) bool) ([]models.Value, error) {
	opts := badger.DefaultIteratorOptions
	prefix := []byte(valueKeyPrefix + projectID + ":")
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var values []models.Value
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var value models.Value
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &value)
		}); err != nil {
			return nil, fmt.Errorf("unmarshal value: %w", err)
		}
		if match == nil || match(&value) {
			values = append(values, value)
		}
	}
	return values, nil
}

// deleteValuesTxn removes every value of a project matching the filter.
func deleteValuesTxn(txn *badger.Txn, projectID string, match func(*models.Value) bool) error {
	values, err := collectValuesTxn(txn, projectID, match)
	if err != nil {
		return err
	}
	for i := range values {
		v := &values[i]
		if err := txn.Delete(valueKey(v.ProjectID, v.KeyID, v.LanguageID)); err != nil {
			return fmt.Errorf("delete value: %w", err)
		}
	}
	return nil
}

// ListAllValues returns every value of a project.
func (s *Store) ListAllValues(projectID string) ([]models.Value, error) {
	var values []models.Value
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		values, err = collectValuesTxn(txn, projectID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

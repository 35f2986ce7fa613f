// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package store

import (
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/polyloc/polyloc/internal/models"
)

func rawLangKey(id string) []byte {
	return []byte(rawLangKeyPrefix + id)
}

// InsertRawLanguages stores catalog entries, overwriting any with the same
// id. Used by the seeding endpoint and startup bootstrap.
func (s *Store) InsertRawLanguages(langs []models.RawLanguage) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, lang := range langs {
			data, err := json.Marshal(lang)
			if err != nil {
				return fmt.Errorf("marshal raw language: %w", err)
			}
			if err := txn.Set(rawLangKey(lang.ID), data); err != nil {
				return fmt.Errorf("set raw language: %w", err)
			}
		}
		return nil
	})
}

// ListRawLanguages returns the full catalog sorted by label.
func (s *Store) ListRawLanguages() ([]models.RawLanguage, error) {
	var langs []models.RawLanguage

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(rawLangKeyPrefix)
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var lang models.RawLanguage
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &lang)
			}); err != nil {
				return fmt.Errorf("unmarshal raw language: %w", err)
			}
			langs = append(langs, lang)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(langs, func(i, j int) bool {
		return langs[i].Label < langs[j].Label
	})
	return langs, nil
}

// CountRawLanguages reports the catalog size without unmarshaling documents.
func (s *Store) CountRawLanguages() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := []byte(rawLangKeyPrefix)
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

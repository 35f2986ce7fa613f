// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package store

import (
	"github.com/dgraph-io/badger/v4"

	"github.com/polyloc/polyloc/internal/models"
)

// AggregateFilter narrows an aggregation pass. Nil slices mean no filter on
// that dimension; an empty non-nil slice matches nothing.
type AggregateFilter struct {
	ParentIDs []string
	KeyIDs    []string
}

func stringSet(ids []string) map[string]struct{} {
	if ids == nil {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Aggregate collects a project's values into the key -> language -> value
// map consumed by the tree builders and the API. One scan over the value
// prefix, grouped in process: first by key id, then by language id. Running
// it twice over unchanged data yields an identical map, since the storage
// key already guarantees at most one value per (key, language) pair.
func (s *Store) Aggregate(userID, projectID string, filter AggregateFilter) (models.ValueMap, error) {
	parents := stringSet(filter.ParentIDs)
	keys := stringSet(filter.KeyIDs)

	result := make(models.ValueMap)
	err := s.db.View(func(txn *badger.Txn) error {
		values, err := collectValuesTxn(txn, projectID, func(v *models.Value) bool {
			if v.UserID != userID {
				return false
			}
			if parents != nil {
				if _, ok := parents[v.ParentID]; !ok {
					return false
				}
			}
			if keys != nil {
				if _, ok := keys[v.KeyID]; !ok {
					return false
				}
			}
			return true
		})
		if err != nil {
			return err
		}

		for _, v := range values {
			langs, ok := result[v.KeyID]
			if !ok {
				langs = make(map[string]models.Value)
				result[v.KeyID] = langs
			}
			langs[v.LanguageID] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package store

import (
	"errors"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/polyloc/polyloc/internal/models"
)

// SearchParams controls one search pass over a project's hierarchy.
// InKeys/InValues pick the match surfaces (string node labels, translated
// value strings); InFolders/InComponents extend label matching to container
// node types. With no surface selected a search matches nothing.
type SearchParams struct {
	Term          string
	CaseSensitive bool
	Exact         bool
	InKeys        bool
	InValues      bool
	InFolders     bool
	InComponents  bool
}

// SearchResult is one matched node together with its resolved ancestor
// chain, root-first, so callers can render a breadcrumb without extra
// lookups.
type SearchResult struct {
	Node      *models.Node   `json:"node"`
	Ancestors []*models.Node `json:"ancestors"`
}

// matches applies the term against a candidate string per the params.
func (p SearchParams) matches(candidate string) bool {
	term := p.Term
	if !p.CaseSensitive {
		term = strings.ToLower(term)
		candidate = strings.ToLower(candidate)
	}
	if p.Exact {
		return candidate == term
	}
	return strings.Contains(candidate, term)
}

// labelSearchable reports whether the node's label participates in label
// matching under the params.
func (p SearchParams) labelSearchable(t models.NodeType) bool {
	switch t {
	case models.NodeTypeString:
		return p.InKeys
	case models.NodeTypeFolder:
		return p.InFolders
	case models.NodeTypeComponent:
		return p.InComponents
	}
	return false
}

// Search scans a project's nodes and values for the term and returns the
// union of label matches and value matches, each with its ancestor chain. A
// value match surfaces the owning string node. Results are ordered by the
// default node ordering.
func (s *Store) Search(userID, projectID string, params SearchParams) ([]SearchResult, error) {
	if params.Term == "" {
		return []SearchResult{}, nil
	}

	matchedIDs := make(map[string]struct{})
	var matched []*models.Node

	err := s.db.View(func(txn *badger.Txn) error {
		nodes, err := collectNodesTxn(txn, projectID, func(n *models.Node) bool {
			return n.UserID == userID && params.labelSearchable(n.Type) && params.matches(n.Label)
		})
		if err != nil {
			return err
		}
		for _, n := range nodes {
			matchedIDs[n.ID] = struct{}{}
			matched = append(matched, n)
		}

		if !params.InValues {
			return nil
		}

		values, err := collectValuesTxn(txn, projectID, func(v *models.Value) bool {
			return v.UserID == userID && params.matches(v.Value)
		})
		if err != nil {
			return err
		}
		for i := range values {
			keyID := values[i].KeyID
			if _, seen := matchedIDs[keyID]; seen {
				continue
			}
			node, err := getNodeTxn(txn, projectID, keyID)
			if errors.Is(err, ErrNodeNotFound) {
				// Orphaned value, skip.
				continue
			}
			if err != nil {
				return err
			}
			matchedIDs[keyID] = struct{}{}
			matched = append(matched, node)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortNodes(matched, "", false)

	results := make([]SearchResult, 0, len(matched))
	for _, node := range matched {
		ancestors, err := s.ResolveAncestorChain(node)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{Node: node, Ancestors: ancestors})
	}
	return results, nil
}

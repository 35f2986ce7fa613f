// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/polyloc/polyloc/internal/models"
)

func nodeKey(projectID, nodeID string) []byte {
	return []byte(nodeKeyPrefix + projectID + ":" + nodeID)
}

func nodeParentKey(projectID, parentID, nodeID string) []byte {
	return []byte(nodeParentKeyPrefix + projectID + ":" + parentID + ":" + nodeID)
}

// getNodeTxn reads and unmarshals a node document inside txn.
func getNodeTxn(txn *badger.Txn, projectID, nodeID string) (*models.Node, error) {
	item, err := txn.Get(nodeKey(projectID, nodeID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get node: %w", err)
	}

	var node models.Node
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &node)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal node: %w", err)
	}
	return &node, nil
}

// setNodeTxn marshals and writes a node document plus its parent index key.
func setNodeTxn(txn *badger.Txn, node *models.Node) error {
	data, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("marshal node: %w", err)
	}
	if err := txn.Set(nodeKey(node.ProjectID, node.ID), data); err != nil {
		return fmt.Errorf("set node: %w", err)
	}
	if err := txn.Set(nodeParentKey(node.ProjectID, node.ParentID, node.ID), []byte(node.ID)); err != nil {
		return fmt.Errorf("set node index: %w", err)
	}
	return nil
}

// createNodeTxn inserts a node inside txn, rejecting duplicate ids.
func createNodeTxn(txn *badger.Txn, node *models.Node) error {
	_, err := txn.Get(nodeKey(node.ProjectID, node.ID))
	if err == nil {
		return ErrNodeExists
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("check node: %w", err)
	}
	return setNodeTxn(txn, node)
}

// CreateNode inserts a node together with its optional initial values. Node
// and values land in one transaction so a failed value write never leaves a
// half-created entity.
func (s *Store) CreateNode(node *models.Node, values []models.Value) error {
	ts := now()
	node.CreatedAt = ts
	node.UpdatedAt = ts

	return s.db.Update(func(txn *badger.Txn) error {
		if err := createNodeTxn(txn, node); err != nil {
			return err
		}
		return upsertValuesTxn(txn, values)
	})
}

// InsertNodes bulk-inserts nodes and values, used by the import pipelines.
// All documents commit atomically.
func (s *Store) InsertNodes(nodes []*models.Node, values []models.Value) error {
	ts := now()
	return s.db.Update(func(txn *badger.Txn) error {
		for _, node := range nodes {
			node.CreatedAt = ts
			node.UpdatedAt = ts
			if err := createNodeTxn(txn, node); err != nil {
				return err
			}
		}
		return upsertValuesTxn(txn, values)
	})
}

// GetNode returns one node by id.
func (s *Store) GetNode(projectID, nodeID string) (*models.Node, error) {
	var node *models.Node
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		node, err = getNodeTxn(txn, projectID, nodeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// NodePatch carries the mutable node fields of an entity update. Nil fields
// are left unchanged.
type NodePatch struct {
	Label       *string
	Description *string
}

// UpdateNode applies a patch to one node and upserts the supplied values in
// the same transaction.
func (s *Store) UpdateNode(projectID, nodeID string, patch NodePatch, values []models.Value) (*models.Node, error) {
	var node *models.Node
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		node, err = getNodeTxn(txn, projectID, nodeID)
		if err != nil {
			return err
		}
		if patch.Label != nil {
			node.Label = *patch.Label
		}
		if patch.Description != nil {
			node.Description = *patch.Description
		}
		node.UpdatedAt = now()
		if err := setNodeTxn(txn, node); err != nil {
			return err
		}
		return upsertValuesTxn(txn, values)
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// DeleteSubtree removes a node, every descendant node and every value
// attached to any of them, in one transaction. Descendants are matched by
// pathCache prefix: everything below the deleted node carries a pathCache
// starting with the node's own child path. Returns the number of deleted
// nodes (the root included), or ErrNodeNotFound if the root does not exist.
func (s *Store) DeleteSubtree(projectID, nodeID string) (int, error) {
	deleted := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		root, err := getNodeTxn(txn, projectID, nodeID)
		if err != nil {
			return err
		}
		descendantPrefix := root.ChildPathCache()

		nodes, err := collectNodesTxn(txn, projectID, func(n *models.Node) bool {
			return n.ID == nodeID || underPath(n.PathCache, descendantPrefix)
		})
		if err != nil {
			return err
		}

		for _, n := range nodes {
			if err := txn.Delete(nodeKey(projectID, n.ID)); err != nil {
				return fmt.Errorf("delete node: %w", err)
			}
			if err := txn.Delete(nodeParentKey(projectID, n.ParentID, n.ID)); err != nil {
				return fmt.Errorf("delete node index: %w", err)
			}
		}
		deleted = len(nodes)

		return deleteValuesTxn(txn, projectID, func(v *models.Value) bool {
			return v.KeyID == nodeID || underPath(v.PathCache, descendantPrefix)
		})
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// underPath reports whether pathCache lies at or below the given chain.
// A plain prefix check would conflate sibling ids that share a prefix
// ("ab" vs "abc"), so the match must end exactly at the chain or continue
// with a separator.
func underPath(pathCache, chain string) bool {
	if pathCache == chain {
		return true
	}
	return strings.HasPrefix(pathCache, chain+"/")
}

// collectNodesTxn scans every node of a project and returns those matching
// the filter. Values are copied out of the iterator.
func collectNodesTxn(txn *badger.Txn, projectID string, match func(*models.Node) bool) ([]*models.Node, error) {
	opts := badger.DefaultIteratorOptions
	prefix := []byte(nodeKeyPrefix + projectID + ":")
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var nodes []*models.Node
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var node models.Node
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &node)
		}); err != nil {
			return nil, fmt.Errorf("unmarshal node: %w", err)
		}
		if match == nil || match(&node) {
			n := node
			nodes = append(nodes, &n)
		}
	}
	return nodes, nil
}

// ListSubtree returns a node together with every descendant, matched by
// pathCache prefix. Returns ErrNodeNotFound if the root does not exist.
func (s *Store) ListSubtree(projectID, nodeID string) ([]*models.Node, error) {
	var nodes []*models.Node
	err := s.db.View(func(txn *badger.Txn) error {
		root, err := getNodeTxn(txn, projectID, nodeID)
		if err != nil {
			return err
		}
		descendantPrefix := root.ChildPathCache()

		nodes, err = collectNodesTxn(txn, projectID, func(n *models.Node) bool {
			return n.ID == nodeID || underPath(n.PathCache, descendantPrefix)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// ListAllNodes returns every node of a project. Tree builders and export
// consume the whole collection at once.
func (s *Store) ListAllNodes(projectID string) ([]*models.Node, error) {
	var nodes []*models.Node
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		nodes, err = collectNodesTxn(txn, projectID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// SortField names a column the child listing can be ordered by.
type SortField string

const (
	SortByLabel     SortField = "label"
	SortByType      SortField = "type"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

// ListChildrenParams controls filtering, ordering and pagination of a child
// listing. Zero values mean: all types, default {type asc, label asc}
// ordering, first page with the caller's page size.
type ListChildrenParams struct {
	HideFolders    bool
	HideComponents bool
	HideStrings    bool
	SortBy         SortField
	Descending     bool
	Page           int
	PerPage        int
}

func (p ListChildrenParams) allows(t models.NodeType) bool {
	switch t {
	case models.NodeTypeFolder:
		return !p.HideFolders
	case models.NodeTypeComponent:
		return !p.HideComponents
	case models.NodeTypeString:
		return !p.HideStrings
	}
	return false
}

// ListChildren returns the direct children of parentID ordered and paged per
// params, plus the pre-pagination total. The parent index makes this a
// prefix scan over exactly the child set.
func (s *Store) ListChildren(projectID, parentID string, params ListChildrenParams) ([]*models.Node, int, error) {
	var children []*models.Node

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(nodeParentKeyPrefix + projectID + ":" + parentID + ":")
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var nodeID string
			if err := it.Item().Value(func(val []byte) error {
				nodeID = string(val)
				return nil
			}); err != nil {
				return fmt.Errorf("read node index: %w", err)
			}

			node, err := getNodeTxn(txn, projectID, nodeID)
			if errors.Is(err, ErrNodeNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if params.allows(node.Type) {
				children = append(children, node)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sortNodes(children, params.SortBy, params.Descending)
	total := len(children)

	if params.PerPage > 0 {
		page := params.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * params.PerPage
		if start >= len(children) {
			children = []*models.Node{}
		} else {
			end := start + params.PerPage
			if end > len(children) {
				end = len(children)
			}
			children = children[start:end]
		}
	}

	return children, total, nil
}

// sortNodes orders nodes by the requested field with id as the final
// tiebreaker, so equal keys still produce a stable, deterministic order.
// An empty sort field means the default {type asc, label asc} ordering.
func sortNodes(nodes []*models.Node, field SortField, descending bool) {
	less := func(a, b *models.Node) bool {
		switch field {
		case SortByLabel:
			if a.Label != b.Label {
				return a.Label < b.Label
			}
		case SortByType:
			if a.Type != b.Type {
				return a.Type < b.Type
			}
		case SortByCreatedAt:
			if a.CreatedAt != b.CreatedAt {
				return a.CreatedAt < b.CreatedAt
			}
		case SortByUpdatedAt:
			if a.UpdatedAt != b.UpdatedAt {
				return a.UpdatedAt < b.UpdatedAt
			}
		default:
			if a.Type != b.Type {
				return a.Type < b.Type
			}
			if a.Label != b.Label {
				return a.Label < b.Label
			}
		}
		return a.ID < b.ID
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		if descending {
			return less(nodes[j], nodes[i])
		}
		return less(nodes[i], nodes[j])
	})
}

// ResolveAncestorChain returns the nodes named by the pathCache of node,
// ordered root-first. Ancestor ids that no longer resolve are skipped rather
// than failing the lookup; a dangling pathCache should degrade breadcrumbs,
// not break navigation.
func (s *Store) ResolveAncestorChain(node *models.Node) ([]*models.Node, error) {
	ids := node.AncestorIDs()
	chain := make([]*models.Node, 0, len(ids))

	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			ancestor, err := getNodeTxn(txn, node.ProjectID, id)
			if errors.Is(err, ErrNodeNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			chain = append(chain, ancestor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chain, nil
}

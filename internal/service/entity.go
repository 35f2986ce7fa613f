// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package service

import (
	"errors"

	"github.com/polyloc/polyloc/internal/logging"
	"github.com/polyloc/polyloc/internal/models"
	"github.com/polyloc/polyloc/internal/store"
	"github.com/polyloc/polyloc/internal/tree"
)

// ValueInput is one translation supplied with an entity create or update.
type ValueInput struct {
	ID         string
	LanguageID string
	Value      string
}

// CreateEntity creates a node under the given parent. With ParentID equal
// to the project id the node lands at the top level; otherwise the parent
// must exist and be a folder or component. The node's pathCache derives
// from the parent, never from client input, which keeps the path chain
// consistent by construction.
func (s *Service) CreateEntity(userID, projectID, entityID, parentID, label, description string, typ models.NodeType, values []ValueInput) (*models.Node, error) {
	if !typ.Valid() {
		return nil, ErrInvalidEntityType
	}
	if _, err := s.store.GetProject(userID, projectID); err != nil {
		return nil, err
	}

	pathCache := models.PathRoot
	if parentID == "" {
		parentID = projectID
	}
	if parentID != projectID {
		parent, err := s.store.GetNode(projectID, parentID)
		if errors.Is(err, store.ErrNodeNotFound) {
			return nil, ErrParentNotFound
		}
		if err != nil {
			return nil, err
		}
		if parent.Type == models.NodeTypeString {
			return nil, ErrInvalidParent
		}
		pathCache = parent.ChildPathCache()
	}

	if entityID == "" {
		entityID = newID()
	}

	node := &models.Node{
		ID:          entityID,
		UserID:      userID,
		ProjectID:   projectID,
		ParentID:    parentID,
		Label:       label,
		Type:        typ,
		Description: description,
		PathCache:   pathCache,
	}

	var docs []models.Value
	if typ == models.NodeTypeString {
		docs = s.buildValues(node, values)
	}

	if err := s.store.CreateNode(node, docs); err != nil {
		return nil, err
	}

	logging.Debug().
		Str("project_id", projectID).
		Str("entity_id", node.ID).
		Str("type", string(typ)).
		Msg("Entity created")
	return node, nil
}

// UpdateEntity patches a node's label and description and upserts the
// supplied values, all atomically.
func (s *Service) UpdateEntity(userID, projectID, entityID string, label, description *string, values []ValueInput) (*models.Node, error) {
	if _, err := s.store.GetProject(userID, projectID); err != nil {
		return nil, err
	}
	node, err := s.store.GetNode(projectID, entityID)
	if err != nil {
		return nil, err
	}

	var docs []models.Value
	if node.Type == models.NodeTypeString {
		docs = s.buildValues(node, values)
	}

	return s.store.UpdateNode(projectID, entityID, store.NodePatch{
		Label:       label,
		Description: description,
	}, docs)
}

// DeleteEntity removes a node and its whole subtree, returning the number
// of deleted nodes.
func (s *Service) DeleteEntity(userID, projectID, entityID string) (int, error) {
	if _, err := s.store.GetProject(userID, projectID); err != nil {
		return 0, err
	}

	deleted, err := s.store.DeleteSubtree(projectID, entityID)
	if err != nil {
		return 0, err
	}
	logging.Info().
		Str("project_id", projectID).
		Str("entity_id", entityID).
		Int("deleted", deleted).
		Msg("Entity subtree deleted")
	return deleted, nil
}

// UpsertValues writes translations for one string node.
func (s *Service) UpsertValues(userID, projectID, entityID string, values []ValueInput) error {
	if _, err := s.store.GetProject(userID, projectID); err != nil {
		return err
	}
	node, err := s.store.GetNode(projectID, entityID)
	if err != nil {
		return err
	}
	if node.Type != models.NodeTypeString {
		return ErrInvalidEntityType
	}
	return s.store.UpsertValues(s.buildValues(node, values))
}

// GetKeyData returns one string node with its per-language values.
func (s *Service) GetKeyData(userID, projectID, keyID string) (*tree.Node, error) {
	if _, err := s.store.GetProject(userID, projectID); err != nil {
		return nil, err
	}
	node, err := s.store.GetNode(projectID, keyID)
	if err != nil {
		return nil, err
	}
	if node.Type != models.NodeTypeString {
		return nil, ErrInvalidEntityType
	}

	vm, err := s.store.Aggregate(userID, projectID, store.AggregateFilter{
		KeyIDs: []string{keyID},
	})
	if err != nil {
		return nil, err
	}

	wrapped := &tree.Node{
		Node:     node,
		Values:   map[string]models.Value{},
		Children: []*tree.Node{},
	}
	if langs, ok := vm[keyID]; ok {
		wrapped.Values = langs
	}
	return wrapped, nil
}

// GetEntityContent returns a node together with its fully populated
// subtree: children of folders and components recursively, values on every
// string node. For a string node this is the same shape as GetKeyData.
func (s *Service) GetEntityContent(userID, projectID, entityID string) (*tree.Node, error) {
	if _, err := s.store.GetProject(userID, projectID); err != nil {
		return nil, err
	}
	node, err := s.store.GetNode(projectID, entityID)
	if err != nil {
		return nil, err
	}
	if node.Type == models.NodeTypeString {
		return s.GetKeyData(userID, projectID, entityID)
	}

	subtree, err := s.store.ListSubtree(projectID, entityID)
	if err != nil {
		return nil, err
	}

	keyIDs := make([]string, 0, len(subtree))
	for _, n := range subtree {
		if n.Type == models.NodeTypeString {
			keyIDs = append(keyIDs, n.ID)
		}
	}
	vm := models.ValueMap{}
	if len(keyIDs) > 0 {
		vm, err = s.store.Aggregate(userID, projectID, store.AggregateFilter{KeyIDs: keyIDs})
		if err != nil {
			return nil, err
		}
	}

	return &tree.Node{
		Node:     node,
		Values:   map[string]models.Value{},
		Children: tree.Build(subtree, vm, entityID),
	}, nil
}

// GetEntitiesByParent returns the string nodes directly under a parent with
// their values, for inline key editing without loading the whole subtree.
func (s *Service) GetEntitiesByParent(userID, projectID, parentID string) ([]*tree.Node, error) {
	if _, err := s.store.GetProject(userID, projectID); err != nil {
		return nil, err
	}
	if parentID == "" {
		parentID = projectID
	}

	children, _, err := s.store.ListChildren(projectID, parentID, store.ListChildrenParams{
		HideFolders:    true,
		HideComponents: true,
	})
	if err != nil {
		return nil, err
	}

	vm, err := s.store.Aggregate(userID, projectID, store.AggregateFilter{
		ParentIDs: []string{parentID},
	})
	if err != nil {
		return nil, err
	}

	entities := make([]*tree.Node, 0, len(children))
	for _, n := range children {
		wrapped := &tree.Node{
			Node:     n,
			Values:   map[string]models.Value{},
			Children: []*tree.Node{},
		}
		if langs, ok := vm[n.ID]; ok {
			wrapped.Values = langs
		}
		entities = append(entities, wrapped)
	}
	return entities, nil
}

// Aggregate exposes the raw aggregation pass.
func (s *Service) Aggregate(userID, projectID string, filter store.AggregateFilter) (models.ValueMap, error) {
	if _, err := s.store.GetProject(userID, projectID); err != nil {
		return nil, err
	}
	return s.store.Aggregate(userID, projectID, filter)
}

// buildValues fills in the denormalized value fields from the owning node.
func (s *Service) buildValues(node *models.Node, inputs []ValueInput) []models.Value {
	docs := make([]models.Value, 0, len(inputs))
	for _, in := range inputs {
		docs = append(docs, models.Value{
			ID:         in.ID,
			UserID:     node.UserID,
			ProjectID:  node.ProjectID,
			ParentID:   node.ParentID,
			KeyID:      node.ID,
			LanguageID: in.LanguageID,
			Value:      in.Value,
			PathCache:  node.PathCache,
		})
	}
	return docs
}

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

// CreateProject creates a project owned by userID. Languages may be empty;
// they are usually added afterwards from the catalog.
func (s *Service) CreateProject(userID, projectID, name string, languages []models.Language) (*models.Project, error) {
	project := &models.Project{
		ProjectID:   projectID,
		UserID:      userID,
		ProjectName: name,
		Languages:   languages,
	}
	if err := s.store.CreateProject(project); err != nil {
		return nil, err
	}
	logging.Info().Str("project_id", projectID).Msg("Project created")
	return project, nil
}

// ListProjects returns the caller's projects.
func (s *Service) ListProjects(userID string) ([]*models.Project, error) {
	return s.store.ListProjects(userID)
}

// RenameProject updates the project name.
func (s *Service) RenameProject(userID, projectID, name string) (*models.Project, error) {
	return s.store.RenameProject(userID, projectID, name)
}

// DeleteProject removes the project and everything under it.
func (s *Service) DeleteProject(userID, projectID string) error {
	if err := s.store.DeleteProject(userID, projectID); err != nil {
		return err
	}
	logging.Info().Str("project_id", projectID).Msg("Project deleted")
	return nil
}

// ViewParams controls the project detail view: which subfolder to open,
// how to filter, sort and page its children.
type ViewParams struct {
	SubFolderID    string
	HideFolders    bool
	HideComponents bool
	HideStrings    bool
	SortBy         store.SortField
	Descending     bool
	Page           int
	PerPage        int
}

// ProjectView is the project detail response: the project, one page of the
// opened folder's children with their values attached, and the breadcrumb
// chain of the opened folder.
type ProjectView struct {
	Project     *models.Project `json:"project"`
	Children    []*tree.Node    `json:"children"`
	Breadcrumbs []*models.Node  `json:"breadcrumbs"`
	Total       int             `json:"total"`
	Page        int             `json:"page"`
	PerPage     int             `json:"perPage"`
}

// GetProjectView loads the project detail view. With an empty SubFolderID
// the project root is opened and breadcrumbs are empty. Values are
// aggregated only for the string nodes on the returned page.
func (s *Service) GetProjectView(userID, projectID string, params ViewParams) (*ProjectView, error) {
	project, err := s.store.GetProject(userID, projectID)
	if err != nil {
		return nil, err
	}

	parentID := projectID
	var breadcrumbs []*models.Node
	if params.SubFolderID != "" {
		folder, err := s.store.GetNode(projectID, params.SubFolderID)
		if err != nil {
			return nil, err
		}
		parentID = folder.ID

		chain, err := s.store.ResolveAncestorChain(folder)
		if err != nil {
			return nil, err
		}
		breadcrumbs = append(chain, folder)
	}

	perPage := s.clampPageSize(params.PerPage)
	page := params.Page
	if page < 1 {
		page = 1
	}

	children, total, err := s.store.ListChildren(projectID, parentID, store.ListChildrenParams{
		HideFolders:    params.HideFolders,
		HideComponents: params.HideComponents,
		HideStrings:    params.HideStrings,
		SortBy:         params.SortBy,
		Descending:     params.Descending,
		Page:           page,
		PerPage:        perPage,
	})
	if err != nil {
		return nil, err
	}

	// Values only for the string nodes actually on this page.
	var keyIDs []string
	for _, child := range children {
		if child.Type == models.NodeTypeString {
			keyIDs = append(keyIDs, child.ID)
		}
	}

	values := models.ValueMap{}
	if len(keyIDs) > 0 {
		values, err = s.store.Aggregate(userID, projectID, store.AggregateFilter{KeyIDs: keyIDs})
		if err != nil {
			return nil, err
		}
	}

	wrapped := make([]*tree.Node, 0, len(children))
	for _, child := range children {
		node := &tree.Node{
			Node:     child,
			Values:   map[string]models.Value{},
			Children: []*tree.Node{},
		}
		if langs, ok := values[child.ID]; ok {
			node.Values = langs
		}
		wrapped = append(wrapped, node)
	}

	if breadcrumbs == nil {
		breadcrumbs = []*models.Node{}
	}

	return &ProjectView{
		Project:     project,
		Children:    wrapped,
		Breadcrumbs: breadcrumbs,
		Total:       total,
		Page:        page,
		PerPage:     perPage,
	}, nil
}

// GetHierarchy returns the full nested hierarchy of a project with all
// values attached. The editing UI uses this for tree-wide operations.
func (s *Service) GetHierarchy(userID, projectID string) ([]*tree.Node, error) {
	project, err := s.store.GetProject(userID, projectID)
	if err != nil {
		return nil, err
	}

	nodes, err := s.store.ListAllNodes(projectID)
	if err != nil {
		return nil, err
	}
	values, err := s.store.Aggregate(userID, projectID, store.AggregateFilter{})
	if err != nil {
		return nil, err
	}
	return tree.Build(nodes, values, project.ProjectID), nil
}

// AddLanguageFromCatalog enables a catalog language on a project. The
// catalog entry's id carries over so re-adding a language later reconnects
// it to any values written before it was removed.
func (s *Service) AddLanguageFromCatalog(userID, projectID, rawLanguageID string, baseLanguage bool) (*models.Project, error) {
	catalog, err := s.store.ListRawLanguages()
	if err != nil {
		return nil, err
	}
	for _, raw := range catalog {
		if raw.ID == rawLanguageID {
			return s.store.AddLanguage(userID, projectID, models.Language{
				ID:           raw.ID,
				Label:        raw.Label,
				Code:         raw.Code,
				BaseLanguage: baseLanguage,
				Visible:      true,
			})
		}
	}
	return nil, store.ErrLanguageNotFound
}

// Search runs a hierarchy search within one project.
func (s *Service) Search(userID, projectID string, params store.SearchParams) ([]store.SearchResult, error) {
	if _, err := s.store.GetProject(userID, projectID); err != nil {
		return nil, err
	}
	return s.store.Search(userID, projectID, params)
}

// IsNotFound reports whether err is one of the store's not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrProjectNotFound) ||
		errors.Is(err, store.ErrNodeNotFound) ||
		errors.Is(err, store.ErrLanguageNotFound) ||
		errors.Is(err, ErrParentNotFound)
}

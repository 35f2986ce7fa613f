// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/polyloc/polyloc/internal/models"
)

func projectKey(projectID string) []byte {
	return []byte(projectKeyPrefix + projectID)
}

func projectUserKey(userID, projectID string) []byte {
	return []byte(projectUserKeyPrefix + userID + ":" + projectID)
}

// getProjectTxn reads and unmarshals a project document inside txn, checking
// ownership. Returns ErrProjectNotFound for missing documents and for
// documents owned by a different user, so callers cannot probe for foreign
// project ids.
func getProjectTxn(txn *badger.Txn, userID, projectID string) (*models.Project, error) {
	item, err := txn.Get(projectKey(projectID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	var project models.Project
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &project)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}

	if project.UserID != userID {
		return nil, ErrProjectNotFound
	}
	return &project, nil
}

// setProjectTxn marshals and writes a project document plus its ownership
// index key inside txn.
func setProjectTxn(txn *badger.Txn, project *models.Project) error {
	data, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	if err := txn.Set(projectKey(project.ProjectID), data); err != nil {
		return fmt.Errorf("set project: %w", err)
	}
	if err := txn.Set(projectUserKey(project.UserID, project.ProjectID), []byte(project.ProjectID)); err != nil {
		return fmt.Errorf("set project index: %w", err)
	}
	return nil
}

// CreateProject inserts a new project document. The project id is
// client-supplied; a colliding id yields ErrProjectExists regardless of
// which user owns the existing document.
func (s *Store) CreateProject(project *models.Project) error {
	project.CreatedAt = now()
	project.UpdatedAt = project.CreatedAt
	if project.Languages == nil {
		project.Languages = []models.Language{}
	}

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(projectKey(project.ProjectID))
		if err == nil {
			return ErrProjectExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check project: %w", err)
		}
		return setProjectTxn(txn, project)
	})
}

// GetProject returns the project with the given id if it belongs to userID.
func (s *Store) GetProject(userID, projectID string) (*models.Project, error) {
	var project *models.Project
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		project, err = getProjectTxn(txn, userID, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjects returns all projects owned by userID, sorted by name.
func (s *Store) ListProjects(userID string) ([]*models.Project, error) {
	var projects []*models.Project

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(projectUserKeyPrefix + userID + ":")
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var projectID string
			if err := it.Item().Value(func(val []byte) error {
				projectID = string(val)
				return nil
			}); err != nil {
				return fmt.Errorf("read project index: %w", err)
			}

			project, err := getProjectTxn(txn, userID, projectID)
			if errors.Is(err, ErrProjectNotFound) {
				// Stale index entry, skip.
				continue
			}
			if err != nil {
				return err
			}
			projects = append(projects, project)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].ProjectName < projects[j].ProjectName
	})
	return projects, nil
}

// RenameProject updates the project name.
func (s *Store) RenameProject(userID, projectID, name string) (*models.Project, error) {
	var project *models.Project
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		project, err = getProjectTxn(txn, userID, projectID)
		if err != nil {
			return err
		}
		project.ProjectName = name
		project.UpdatedAt = now()
		return setProjectTxn(txn, project)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes the project document and cascades into every node
// and value document of that project, all in one transaction. Orphaned
// hierarchy data would otherwise survive under project-scoped key prefixes
// forever.
func (s *Store) DeleteProject(userID, projectID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		project, err := getProjectTxn(txn, userID, projectID)
		if err != nil {
			return err
		}

		for _, prefix := range [][]byte{
			[]byte(nodeKeyPrefix + projectID + ":"),
			[]byte(nodeParentKeyPrefix + projectID + ":"),
			[]byte(valueKeyPrefix + projectID + ":"),
		} {
			if err := deletePrefixTxn(txn, prefix); err != nil {
				return err
			}
		}

		if err := txn.Delete(projectUserKey(project.UserID, projectID)); err != nil {
			return fmt.Errorf("delete project index: %w", err)
		}
		if err := txn.Delete(projectKey(projectID)); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}

// deletePrefixTxn deletes every key under prefix inside txn.
func deletePrefixTxn(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

// AddLanguage appends a language to the project's language list. Adding an
// id that is already present is a no-op, mirroring set semantics.
func (s *Store) AddLanguage(userID, projectID string, lang models.Language) (*models.Project, error) {
	return s.mutateLanguages(userID, projectID, func(project *models.Project) error {
		if project.Language(lang.ID) == nil {
			project.Languages = append(project.Languages, lang)
		}
		return nil
	})
}

// AddLanguages appends multiple languages at once, skipping ids already
// present. Used by the project bootstrap flow.
func (s *Store) AddLanguages(userID, projectID string, langs []models.Language) (*models.Project, error) {
	return s.mutateLanguages(userID, projectID, func(project *models.Project) error {
		for _, lang := range langs {
			if project.Language(lang.ID) == nil {
				project.Languages = append(project.Languages, lang)
			}
		}
		return nil
	})
}

// UpdateLanguage replaces the embedded language with the same id.
func (s *Store) UpdateLanguage(userID, projectID string, lang models.Language) (*models.Project, error) {
	return s.mutateLanguages(userID, projectID, func(project *models.Project) error {
		for i := range project.Languages {
			if project.Languages[i].ID == lang.ID {
				project.Languages[i] = lang
				return nil
			}
		}
		return ErrLanguageNotFound
	})
}

// RemoveLanguage pulls the language with the given id from the project.
// Values referencing the removed language are left in place; they become
// invisible to aggregation output consumers that key off the project's
// language list, and reappear if the language is re-added.
func (s *Store) RemoveLanguage(userID, projectID, languageID string) (*models.Project, error) {
	return s.mutateLanguages(userID, projectID, func(project *models.Project) error {
		for i := range project.Languages {
			if project.Languages[i].ID == languageID {
				project.Languages = append(project.Languages[:i], project.Languages[i+1:]...)
				return nil
			}
		}
		return ErrLanguageNotFound
	})
}

// SetLanguageVisibility toggles the visible flag of one language.
func (s *Store) SetLanguageVisibility(userID, projectID, languageID string, visible bool) (*models.Project, error) {
	return s.mutateLanguages(userID, projectID, func(project *models.Project) error {
		lang := project.Language(languageID)
		if lang == nil {
			return ErrLanguageNotFound
		}
		lang.Visible = visible
		return nil
	})
}

// VisibilityChange is one entry of a bulk visibility update.
type VisibilityChange struct {
	LanguageID string
	Visible    bool
}

// SetLanguagesVisibility applies a batch of visibility toggles atomically.
// Unknown language ids fail the whole batch.
func (s *Store) SetLanguagesVisibility(userID, projectID string, changes []VisibilityChange) (*models.Project, error) {
	return s.mutateLanguages(userID, projectID, func(project *models.Project) error {
		for _, change := range changes {
			lang := project.Language(change.LanguageID)
			if lang == nil {
				return ErrLanguageNotFound
			}
			lang.Visible = change.Visible
		}
		return nil
	})
}

// mutateLanguages loads the project, applies fn to it and writes it back in
// one transaction.
func (s *Store) mutateLanguages(userID, projectID string, fn func(*models.Project) error) (*models.Project, error) {
	var project *models.Project
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		project, err = getProjectTxn(txn, userID, projectID)
		if err != nil {
			return err
		}
		if err := fn(project); err != nil {
			return err
		}
		project.UpdatedAt = now()
		return setProjectTxn(txn, project)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

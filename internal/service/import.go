// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/polyloc/polyloc/internal/logging"
	"github.com/polyloc/polyloc/internal/models"
)

// ErrTooManyFiles rejects imports above the configured file limit.
var ErrTooManyFiles = errors.New("too many import files")

// ImportFileResult describes the outcome for one uploaded file.
type ImportFileResult struct {
	Name       string `json:"name"`
	LanguageID string `json:"languageId,omitempty"`
	Keys       int    `json:"keys"`
	Error      string `json:"error,omitempty"`
}

// ImportReport summarizes an import run. Files that failed to parse or
// could not be matched to a project language are reported individually;
// the rest of the run still goes through.
type ImportReport struct {
	Files         []ImportFileResult `json:"files"`
	CreatedNodes  int                `json:"createdNodes"`
	WrittenValues int                `json:"writtenValues"`
}

// ImportJSON imports nested JSON translation files into a project. Each
// filename (without extension) must match the locale code of a project or
// catalog language, which decides where the values land; catalog languages
// not yet on the project are added in one batch before any node or value is
// persisted. Object entries become folders, string entries become keys;
// hierarchy positions that already exist (same label under the same path)
// are reused rather than duplicated, so importing en.json and de.json
// yields one shared key set.
func (s *Service) ImportJSON(userID, projectID string, files map[string][]byte) (*ImportReport, error) {
	project, err := s.prepareImport(userID, projectID, len(files))
	if err != nil {
		return nil, err
	}
	project, err = s.reconcileImportLanguages(userID, project, files)
	if err != nil {
		return nil, err
	}
	return s.importFiles(userID, projectID, files, projectID, models.PathRoot, func(name string) *models.Language {
		return matchLanguage(project, name)
	})
}

// ComponentImportFile is one upload of a component import run together with
// its explicit language metadata. LanguageID wins when set; otherwise the
// code is resolved against the project, then the catalog, and as a last
// resort a new project language is created from code and label.
type ComponentImportFile struct {
	Name       string
	Data       []byte
	LanguageID string
	Code       string
	Label      string
}

// ImportComponentJSON imports translation files underneath a top-level
// component named by label. The component is reused when it already exists
// and created when it does not; a non-component node at that position is
// rejected. Unlike ImportJSON the target language comes from each file's
// metadata, never from its filename.
func (s *Service) ImportComponentJSON(userID, projectID, label string, files []ComponentImportFile) (*ImportReport, error) {
	project, err := s.prepareImport(userID, projectID, len(files))
	if err != nil {
		return nil, err
	}

	project, resolved, err := s.resolveComponentLanguages(userID, project, files)
	if err != nil {
		return nil, err
	}

	component, err := s.ensureComponent(userID, projectID, label)
	if err != nil {
		return nil, err
	}

	contents := make(map[string][]byte, len(files))
	for _, f := range files {
		contents[f.Name] = f.Data
	}
	return s.importFiles(userID, projectID, contents, component.ID, component.ChildPathCache(), func(name string) *models.Language {
		return resolved[name]
	})
}

// prepareImport runs the shared upfront checks of both import entrypoints.
func (s *Service) prepareImport(userID, projectID string, fileCount int) (*models.Project, error) {
	if fileCount > s.cfg.MaxImportFiles {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyFiles, fileCount, s.cfg.MaxImportFiles)
	}
	return s.store.GetProject(userID, projectID)
}

// reconcileImportLanguages adds catalog languages for upload filenames whose
// locale code is not yet on the project, in one batch so the language list
// is settled before any node or value lands.
func (s *Service) reconcileImportLanguages(userID string, project *models.Project, files map[string][]byte) (*models.Project, error) {
	missing := make([]string, 0)
	seen := make(map[string]bool)
	for name := range files {
		code := fileCode(name)
		if matchLanguage(project, name) != nil || seen[code] {
			continue
		}
		seen[code] = true
		missing = append(missing, code)
	}
	if len(missing) == 0 {
		return project, nil
	}
	sort.Strings(missing)

	catalog, err := s.store.ListRawLanguages()
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]models.RawLanguage, len(catalog))
	for _, raw := range catalog {
		byCode[raw.Code] = raw
	}

	toAdd := make([]models.Language, 0, len(missing))
	for _, code := range missing {
		raw, ok := byCode[code]
		if !ok {
			continue
		}
		toAdd = append(toAdd, models.Language{
			ID:      raw.ID,
			Label:   raw.Label,
			Code:    raw.Code,
			Visible: true,
		})
	}
	if len(toAdd) == 0 {
		return project, nil
	}

	logging.Info().
		Str("project_id", project.ProjectID).
		Int("languages", len(toAdd)).
		Msg("Adding catalog languages for import")
	return s.store.AddLanguages(userID, project.ProjectID, toAdd)
}

// resolveComponentLanguages maps each component upload to a project
// language per its metadata, creating missing languages in one batch.
// Files whose metadata resolves to nothing stay absent from the result and
// are reported per file by the import loop.
func (s *Service) resolveComponentLanguages(userID string, project *models.Project, files []ComponentImportFile) (*models.Project, map[string]*models.Language, error) {
	toAdd := make([]models.Language, 0)
	pending := make(map[string]models.Language)

	for _, f := range files {
		if f.LanguageID != "" || f.Code == "" {
			continue
		}
		if project.LanguageByCode(f.Code) != nil {
			continue
		}
		if _, queued := pending[f.Code]; queued {
			continue
		}

		lang, ok, err := s.catalogLanguage(f.Code)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			if f.Label == "" {
				continue
			}
			lang = models.Language{
				ID:      newID(),
				Label:   f.Label,
				Code:    f.Code,
				Visible: true,
			}
		}
		pending[f.Code] = lang
		toAdd = append(toAdd, lang)
	}

	if len(toAdd) > 0 {
		updated, err := s.store.AddLanguages(userID, project.ProjectID, toAdd)
		if err != nil {
			return nil, nil, err
		}
		project = updated
	}

	resolved := make(map[string]*models.Language, len(files))
	for _, f := range files {
		switch {
		case f.LanguageID != "":
			if lang := project.Language(f.LanguageID); lang != nil {
				resolved[f.Name] = lang
			}
		case f.Code != "":
			if lang := project.LanguageByCode(f.Code); lang != nil {
				resolved[f.Name] = lang
			}
		}
	}
	return project, resolved, nil
}

// catalogLanguage looks up a catalog entry by locale code.
func (s *Service) catalogLanguage(code string) (models.Language, bool, error) {
	catalog, err := s.store.ListRawLanguages()
	if err != nil {
		return models.Language{}, false, err
	}
	for _, raw := range catalog {
		if raw.Code == code {
			return models.Language{
				ID:      raw.ID,
				Label:   raw.Label,
				Code:    raw.Code,
				Visible: true,
			}, true, nil
		}
	}
	return models.Language{}, false, nil
}

// ensureComponent returns the top-level component with the given label,
// creating it when absent.
func (s *Service) ensureComponent(userID, projectID, label string) (*models.Node, error) {
	existing, err := s.store.ListAllNodes(projectID)
	if err != nil {
		return nil, err
	}
	for _, n := range existing {
		if n.PathCache == models.PathRoot && n.Label == label {
			if n.Type != models.NodeTypeComponent {
				return nil, ErrInvalidParent
			}
			return n, nil
		}
	}

	component := &models.Node{
		ID:        newID(),
		UserID:    userID,
		ProjectID: projectID,
		ParentID:  projectID,
		Label:     label,
		Type:      models.NodeTypeComponent,
		PathCache: models.PathRoot,
	}
	if err := s.store.CreateNode(component, nil); err != nil {
		return nil, err
	}
	return component, nil
}

// importFiles runs the import below (rootParentID, rootPathCache), which is
// the project root for whole-project imports and a component for scoped
// ones. langFor decides the target language per file; a nil result records
// a per-file error without stopping the run.
func (s *Service) importFiles(userID, projectID string, files map[string][]byte, rootParentID, rootPathCache string, langFor func(name string) *models.Language) (*ImportReport, error) {
	existing, err := s.store.ListAllNodes(projectID)
	if err != nil {
		return nil, err
	}

	importer := &jsonImporter{
		userID:    userID,
		projectID: projectID,
		byPath:    make(map[string]*models.Node, len(existing)),
	}
	for _, n := range existing {
		importer.byPath[pathKey(n.PathCache, n.Label)] = n
	}

	report := &ImportReport{Files: []ImportFileResult{}}

	// Deterministic file order so shared nodes get created by the
	// alphabetically first file.
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		result := ImportFileResult{Name: name}

		lang := langFor(name)
		if lang == nil {
			result.Error = "no language matches file"
			report.Files = append(report.Files, result)
			continue
		}
		result.LanguageID = lang.ID

		var root map[string]any
		if err := json.Unmarshal(files[name], &root); err != nil {
			result.Error = fmt.Sprintf("malformed JSON: %v", err)
			report.Files = append(report.Files, result)
			continue
		}

		newNodes, values := importer.walk(root, rootParentID, rootPathCache, lang.ID)
		if err := s.store.InsertNodes(newNodes, values); err != nil {
			result.Error = fmt.Sprintf("store import: %v", err)
			report.Files = append(report.Files, result)
			continue
		}

		result.Keys = len(values)
		report.CreatedNodes += len(newNodes)
		report.WrittenValues += len(values)
		report.Files = append(report.Files, result)
	}

	logging.Info().
		Str("project_id", projectID).
		Int("files", len(files)).
		Int("created_nodes", report.CreatedNodes).
		Int("written_values", report.WrittenValues).
		Msg("Import finished")
	return report, nil
}

// fileCode strips directory and extension from an upload filename, leaving
// the locale code.
func fileCode(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

// matchLanguage resolves an upload filename to a project language via its
// locale code or enabled custom code.
func matchLanguage(project *models.Project, filename string) *models.Language {
	base := fileCode(filename)
	for i := range project.Languages {
		lang := &project.Languages[i]
		if lang.Code == base || (lang.CustomCodeEnabled && lang.CustomCode == base) {
			return lang
		}
	}
	return nil
}

func pathKey(pathCache, label string) string {
	return pathCache + "|" + label
}

// jsonImporter carries the label-path index that deduplicates hierarchy
// positions across files of one import run.
type jsonImporter struct {
	userID    string
	projectID string
	byPath    map[string]*models.Node
}

// walk descends one parsed object, creating missing nodes and collecting
// values. Scalars other than strings are stringified; a string key whose
// position is already occupied by a container (or vice versa) keeps the
// existing node's type and only matching kinds receive values.
func (imp *jsonImporter) walk(obj map[string]any, parentID, pathCache, languageID string) ([]*models.Node, []models.Value) {
	var newNodes []*models.Node
	var values []models.Value

	labels := make([]string, 0, len(obj))
	for label := range obj {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		raw := obj[label]

		if child, ok := raw.(map[string]any); ok {
			node, created := imp.ensureNode(label, parentID, pathCache, models.NodeTypeFolder)
			if created {
				newNodes = append(newNodes, node)
			}
			if node.Type == models.NodeTypeString {
				continue
			}
			childNodes, childValues := imp.walk(child, node.ID, node.ChildPathCache(), languageID)
			newNodes = append(newNodes, childNodes...)
			values = append(values, childValues...)
			continue
		}

		text, ok := raw.(string)
		if !ok {
			text = fmt.Sprintf("%v", raw)
		}

		node, created := imp.ensureNode(label, parentID, pathCache, models.NodeTypeString)
		if created {
			newNodes = append(newNodes, node)
		}
		if node.Type != models.NodeTypeString {
			continue
		}
		values = append(values, models.Value{
			ID:         uuid.NewString(),
			UserID:     imp.userID,
			ProjectID:  imp.projectID,
			ParentID:   node.ParentID,
			KeyID:      node.ID,
			LanguageID: languageID,
			Value:      text,
			PathCache:  node.PathCache,
		})
	}
	return newNodes, values
}

// ensureNode returns the node at (pathCache, label), creating it with a
// fresh id when the position is vacant.
func (imp *jsonImporter) ensureNode(label, parentID, pathCache string, typ models.NodeType) (*models.Node, bool) {
	key := pathKey(pathCache, label)
	if node, ok := imp.byPath[key]; ok {
		return node, false
	}

	node := &models.Node{
		ID:        newID(),
		UserID:    imp.userID,
		ProjectID: imp.projectID,
		ParentID:  parentID,
		Label:     label,
		Type:      typ,
		PathCache: pathCache,
	}
	imp.byPath[key] = node
	return node, true
}

// ImportRawLanguages seeds the global language catalog from a JSON array of
// {id, label, code} objects. Entries without an id get one assigned.
func (s *Service) ImportRawLanguages(data []byte) (int, error) {
	var langs []models.RawLanguage
	if err := json.Unmarshal(data, &langs); err != nil {
		return 0, fmt.Errorf("parse language catalog: %w", err)
	}
	for i := range langs {
		if langs[i].ID == "" {
			langs[i].ID = newID()
		}
	}
	if err := s.store.InsertRawLanguages(langs); err != nil {
		return 0, err
	}
	return len(langs), nil
}

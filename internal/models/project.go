// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

// Package models defines the core data types shared by the store, service
// and API layers: projects with their embedded language lists, the flat
// hierarchical node collection, per-node-per-language values and the global
// language catalog.
package models

// Language is a project-enabled language, embedded in the Project document.
// The id is shared with the global RawLanguage catalog when the language was
// added from it. The custom code/label pair renames the export destination
// file without changing the underlying locale code.
type Language struct {
	ID                 string `json:"id"`
	Label              string `json:"label"`
	Code               string `json:"code"`
	BaseLanguage       bool   `json:"baseLanguage"`
	Visible            bool   `json:"visible"`
	CustomCode         string `json:"customCode"`
	CustomLabel        string `json:"customLabel"`
	CustomCodeEnabled  bool   `json:"customCodeEnabled"`
	CustomLabelEnabled bool   `json:"customLabelEnabled"`
}

// ExportCode returns the locale code used to name exported files.
func (l Language) ExportCode() string {
	if l.CustomCodeEnabled && l.CustomCode != "" {
		return l.CustomCode
	}
	return l.Code
}

// Project is the top-level tenant-scoped container. Nodes and values are
// stored in separate collections correlated by ProjectID; only the language
// list is embedded.
type Project struct {
	ProjectID   string     `json:"projectId"`
	UserID      string     `json:"userId"`
	ProjectName string     `json:"projectName"`
	Languages   []Language `json:"languages"`
	CreatedAt   int64      `json:"createdAt"`
	UpdatedAt   int64      `json:"updatedAt"`
}

// VisibleLanguages returns the project's languages with the visible flag set.
func (p *Project) VisibleLanguages() []Language {
	visible := make([]Language, 0, len(p.Languages))
	for _, lang := range p.Languages {
		if lang.Visible {
			visible = append(visible, lang)
		}
	}
	return visible
}

// Language returns the embedded language with the given id, or nil.
func (p *Project) Language(id string) *Language {
	for i := range p.Languages {
		if p.Languages[i].ID == id {
			return &p.Languages[i]
		}
	}
	return nil
}

// LanguageByCode returns the embedded language with the given locale code,
// or nil. Codes are advisory and not unique; the first match wins.
func (p *Project) LanguageByCode(code string) *Language {
	for i := range p.Languages {
		if p.Languages[i].Code == code {
			return &p.Languages[i]
		}
	}
	return nil
}

// RawLanguage is an entry in the global language catalog, the superset of
// languages offered to any project.
type RawLanguage struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Code  string `json:"code"`
}

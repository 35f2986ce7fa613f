// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/polyloc/polyloc/internal/models"
	"github.com/polyloc/polyloc/internal/store"
)

func toLanguages(inputs []LanguageInput) []models.Language {
	langs := make([]models.Language, 0, len(inputs))
	for _, in := range inputs {
		langs = append(langs, models.Language{
			ID:                 in.ID,
			Label:              in.Label,
			Code:               in.Code,
			BaseLanguage:       in.BaseLanguage,
			Visible:            in.Visible,
			CustomCode:         in.CustomCode,
			CustomLabel:        in.CustomLabel,
			CustomCodeEnabled:  in.CustomCodeEnabled,
			CustomLabelEnabled: in.CustomLabelEnabled,
		})
	}
	return langs
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.ListProjects(userID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := s.svc.CreateProject(userID(r), req.ProjectID, req.ProjectName, toLanguages(req.Languages))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusCreated, project)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	view, err := s.svc.GetProjectView(userID(r), projectID, viewParamsFromQuery(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WritePaged(w, r, view, view.Page, view.PerPage, view.Total)
}

func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	var req RenameProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := s.svc.RenameProject(userID(r), chi.URLParam(r, "projectID"), req.ProjectName)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteProject(userID(r), chi.URLParam(r, "projectID")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, map[string]string{"projectId": chi.URLParam(r, "projectID")})
}

func (s *Server) handleGetHierarchy(w http.ResponseWriter, r *http.Request) {
	hierarchy, err := s.svc.GetHierarchy(userID(r), chi.URLParam(r, "projectID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, hierarchy)
}

func (s *Server) handleAddLanguage(w http.ResponseWriter, r *http.Request) {
	var req AddLanguageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := s.svc.AddLanguageFromCatalog(userID(r), chi.URLParam(r, "projectID"), req.RawLanguageID, req.BaseLanguage)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusCreated, project)
}

func (s *Server) handleUpdateLanguage(w http.ResponseWriter, r *http.Request) {
	var req UpdateLanguageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lang := toLanguages([]LanguageInput{req.LanguageInput})[0]
	lang.ID = chi.URLParam(r, "languageID")

	project, err := s.svc.Store().UpdateLanguage(userID(r), chi.URLParam(r, "projectID"), lang)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, project)
}

func (s *Server) handleRemoveLanguage(w http.ResponseWriter, r *http.Request) {
	project, err := s.svc.Store().RemoveLanguage(userID(r), chi.URLParam(r, "projectID"), chi.URLParam(r, "languageID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, project)
}

func (s *Server) handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	var req VisibilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	changes := make([]store.VisibilityChange, 0, len(req.Changes))
	for _, c := range req.Changes {
		changes = append(changes, store.VisibilityChange{LanguageID: c.LanguageID, Visible: c.Visible})
	}

	project, err := s.svc.Store().SetLanguagesVisibility(userID(r), chi.URLParam(r, "projectID"), changes)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, project)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := searchParamsFromQuery(r)
	if params.Term == "" {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "term is required")
		return
	}

	results, err := s.svc.Search(userID(r), chi.URLParam(r, "projectID"), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, results)
}

// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/polyloc/polyloc/internal/models"
	"github.com/polyloc/polyloc/internal/store"
)

func (s *Server) handleCreateEntity(w http.ResponseWriter, r *http.Request) {
	var req CreateEntityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	node, err := s.svc.CreateEntity(
		userID(r),
		chi.URLParam(r, "projectID"),
		req.ID,
		req.ParentID,
		req.Label,
		req.Description,
		models.NodeType(req.Type),
		toValueInputs(req.Values),
	)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusCreated, node)
}

func (s *Server) handleUpdateEntity(w http.ResponseWriter, r *http.Request) {
	var req UpdateEntityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	node, err := s.svc.UpdateEntity(
		userID(r),
		chi.URLParam(r, "projectID"),
		chi.URLParam(r, "entityID"),
		req.Label,
		req.Description,
		toValueInputs(req.Values),
	)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, node)
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	content, err := s.svc.GetEntityContent(userID(r), chi.URLParam(r, "projectID"), chi.URLParam(r, "entityID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, content)
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := s.svc.GetEntitiesByParent(userID(r), chi.URLParam(r, "projectID"), r.URL.Query().Get("parentId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, entities)
}

func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.svc.DeleteEntity(userID(r), chi.URLParam(r, "projectID"), chi.URLParam(r, "entityID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, map[string]any{
		"entityId": chi.URLParam(r, "entityID"),
		"deleted":  deleted,
	})
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.AggregateFilter{}
	if raw := q.Get("parentIds"); raw != "" {
		filter.ParentIDs = strings.Split(raw, ",")
	}
	if raw := q.Get("keyIds"); raw != "" {
		filter.KeyIDs = strings.Split(raw, ",")
	}

	values, err := s.svc.Aggregate(userID(r), chi.URLParam(r, "projectID"), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, values)
}

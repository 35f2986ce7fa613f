// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

// Package api implements the HTTP surface: routing, request decoding and
// validation, the response envelope and the handlers for projects,
// hierarchy entities, languages, transfer (export/import), search and
// accounts.
package api

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/polyloc/polyloc/internal/logging"
)

// APIResponse is the uniform envelope for all JSON responses.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

// APIError carries a machine-readable code plus a human-readable message.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Meta holds response metadata: request correlation and, for paged
// listings, pagination state.
type Meta struct {
	RequestID  string      `json:"requestId,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Total   int `json:"total"`
}

func newMeta(r *http.Request) *Meta {
	return &Meta{
		RequestID: logging.RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC(),
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// WriteSuccess sends a success envelope.
func WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, r, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    newMeta(r),
	})
}

// WritePaged sends a success envelope with pagination metadata.
func WritePaged(w http.ResponseWriter, r *http.Request, data any, page, perPage, total int) {
	meta := newMeta(r)
	meta.Pagination = &Pagination{Page: page, PerPage: perPage, Total: total}
	writeJSON(w, r, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// WriteError sends an error envelope.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    newMeta(r),
	})
}

// WriteErrorDetails sends an error envelope with structured details.
func WriteErrorDetails(w http.ResponseWriter, r *http.Request, status int, apiErr *APIError) {
	writeJSON(w, r, status, APIResponse{
		Success: false,
		Error:   apiErr,
		Meta:    newMeta(r),
	})
}

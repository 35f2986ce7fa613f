// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package api

import (
	"errors"
	"net/http"

	"github.com/polyloc/polyloc/internal/auth"
	"github.com/polyloc/polyloc/internal/export"
	"github.com/polyloc/polyloc/internal/logging"
	"github.com/polyloc/polyloc/internal/service"
	"github.com/polyloc/polyloc/internal/store"
)

// Error codes used in API responses.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeTooLarge     = "PAYLOAD_TOO_LARGE"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// writeDomainError maps service and store errors onto HTTP responses.
// Anything unmapped is a 500 with the detail kept in the log, not the
// response.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case service.IsNotFound(err):
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error())

	case errors.Is(err, store.ErrProjectExists),
		errors.Is(err, store.ErrNodeExists),
		errors.Is(err, auth.ErrEmailTaken):
		WriteError(w, r, http.StatusConflict, ErrCodeConflict, err.Error())

	case errors.Is(err, service.ErrInvalidParent),
		errors.Is(err, service.ErrInvalidEntityType),
		errors.Is(err, export.ErrUnknownFormat):
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())

	case errors.Is(err, service.ErrTooManyFiles):
		WriteError(w, r, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, err.Error())

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrSessionNotFound),
		errors.Is(err, auth.ErrSessionExpired):
		WriteError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())

	default:
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("Unhandled error")
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

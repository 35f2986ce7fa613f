// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package api

import (
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/polyloc/polyloc/internal/service"
	"github.com/polyloc/polyloc/internal/store"
	"github.com/polyloc/polyloc/internal/validation"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// decodeJSON reads, parses and validates a JSON request body. On failure it
// writes the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: "+err.Error())
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		WriteErrorDetails(w, r, http.StatusBadRequest, &APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		})
		return false
	}
	return true
}

// LanguageInput is a full language definition supplied by the client.
type LanguageInput struct {
	ID                 string `json:"id" validate:"required,min=1,max=128"`
	Label              string `json:"label" validate:"required,min=1,max=256"`
	Code               string `json:"code" validate:"required,min=1,max=64"`
	BaseLanguage       bool   `json:"baseLanguage"`
	Visible            bool   `json:"visible"`
	CustomCode         string `json:"customCode" validate:"max=64"`
	CustomLabel        string `json:"customLabel" validate:"max=256"`
	CustomCodeEnabled  bool   `json:"customCodeEnabled"`
	CustomLabelEnabled bool   `json:"customLabelEnabled"`
}

// CreateProjectRequest creates a project, optionally with initial languages.
type CreateProjectRequest struct {
	ProjectID   string          `json:"projectId" validate:"required,min=1,max=128"`
	ProjectName string          `json:"projectName" validate:"required,min=1,max=256"`
	Languages   []LanguageInput `json:"languages" validate:"omitempty,dive"`
}

// RenameProjectRequest renames a project.
type RenameProjectRequest struct {
	ProjectName string `json:"projectName" validate:"required,min=1,max=256"`
}

// AddLanguageRequest enables a catalog language on a project.
type AddLanguageRequest struct {
	RawLanguageID string `json:"rawLanguageId" validate:"required"`
	BaseLanguage  bool   `json:"baseLanguage"`
}

// UpdateLanguageRequest replaces a project language definition.
type UpdateLanguageRequest struct {
	LanguageInput
}

// VisibilityChangeInput toggles one language.
type VisibilityChangeInput struct {
	LanguageID string `json:"languageId" validate:"required"`
	Visible    bool   `json:"visible"`
}

// VisibilityRequest is a batch visibility update.
type VisibilityRequest struct {
	Changes []VisibilityChangeInput `json:"changes" validate:"required,min=1,dive"`
}

// ValueInputRequest is one translation in an entity payload.
type ValueInputRequest struct {
	ID         string `json:"id"`
	LanguageID string `json:"languageId" validate:"required"`
	Value      string `json:"value"`
}

// CreateEntityRequest creates a folder, component or string node.
type CreateEntityRequest struct {
	ID          string              `json:"id" validate:"max=128"`
	ParentID    string              `json:"parentId" validate:"max=128"`
	Label       string              `json:"label" validate:"required,min=1,max=512"`
	Type        string              `json:"type" validate:"required,oneof=folder component string"`
	Description string              `json:"description" validate:"max=2048"`
	Values      []ValueInputRequest `json:"values" validate:"omitempty,dive"`
}

// UpdateEntityRequest patches a node. Nil fields stay untouched.
type UpdateEntityRequest struct {
	Label       *string             `json:"label" validate:"omitempty,min=1,max=512"`
	Description *string             `json:"description" validate:"omitempty,max=2048"`
	Values      []ValueInputRequest `json:"values" validate:"omitempty,dive"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required,min=1,max=256"`
	Password    string `json:"password" validate:"required,min=8,max=256"`
}

// LoginRequest opens a session.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailRequest redeems a verification token.
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// ForgotPasswordRequest requests a reset token.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest redeems a reset token.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=256"`
}

// toValueInputs converts request values to service inputs.
func toValueInputs(values []ValueInputRequest) []service.ValueInput {
	inputs := make([]service.ValueInput, 0, len(values))
	for _, v := range values {
		inputs = append(inputs, service.ValueInput{
			ID:         v.ID,
			LanguageID: v.LanguageID,
			Value:      v.Value,
		})
	}
	return inputs
}

// viewParamsFromQuery parses the project view query string.
func viewParamsFromQuery(r *http.Request) service.ViewParams {
	q := r.URL.Query()

	params := service.ViewParams{
		SubFolderID:    q.Get("subFolderId"),
		HideFolders:    q.Get("hideFolders") == "true",
		HideComponents: q.Get("hideComponents") == "true",
		HideStrings:    q.Get("hideStrings") == "true",
		Descending:     q.Get("sortDescending") == "true",
	}

	switch q.Get("sortBy") {
	case "label":
		params.SortBy = store.SortByLabel
	case "type":
		params.SortBy = store.SortByType
	case "created":
		params.SortBy = store.SortByCreatedAt
	case "updated":
		params.SortBy = store.SortByUpdatedAt
	}

	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		params.Page = page
	}
	if perPage, err := strconv.Atoi(q.Get("itemsPerPage")); err == nil {
		params.PerPage = perPage
	}
	return params
}

// searchParamsFromQuery parses the search query string.
func searchParamsFromQuery(r *http.Request) store.SearchParams {
	q := r.URL.Query()
	return store.SearchParams{
		Term:          q.Get("term"),
		CaseSensitive: q.Get("caseSensitive") == "true",
		Exact:         q.Get("exact") == "true",
		InKeys:        q.Get("inKeys") != "false",
		InValues:      q.Get("inValues") != "false",
		InFolders:     q.Get("inFolders") == "true",
		InComponents:  q.Get("inComponents") == "true",
	}
}

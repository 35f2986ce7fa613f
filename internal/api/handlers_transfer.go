// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/polyloc/polyloc/internal/export"
	"github.com/polyloc/polyloc/internal/service"
)

// maxImportBytes caps a whole multipart import upload.
const maxImportBytes = 20 << 20

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	data, filename, err := s.svc.ExportProject(userID(r), chi.URLParam(r, "projectID"), format)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.metrics.exportsTotal.WithLabelValues(string(format)).Inc()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		// Client went away mid download; nothing to answer anymore.
		return
	}
}

// readUploads parses the multipart body and collects the uploaded files.
// Writes the error response itself and returns nil when the body is bad.
func readUploads(w http.ResponseWriter, r *http.Request) map[string][]byte {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid multipart body: "+err.Error())
		return nil
	}

	files := make(map[string][]byte)
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "unreadable upload: "+err.Error())
				return nil
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "unreadable upload: "+err.Error())
				return nil
			}
			files[header.Filename] = content
		}
	}
	if len(files) == 0 {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "no files uploaded")
		return nil
	}
	return files
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	files := readUploads(w, r)
	if files == nil {
		return
	}

	report, err := s.svc.ImportJSON(userID(r), chi.URLParam(r, "projectID"), files)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.metrics.importsTotal.Inc()
	WriteSuccess(w, r, http.StatusOK, report)
}

// componentFileMeta is one metadata form entry of a component import,
// pairing an uploaded filename with its target language.
type componentFileMeta struct {
	File       string `json:"file"`
	LanguageID string `json:"languageId"`
	Code       string `json:"code"`
	Label      string `json:"label"`
}

func (s *Server) handleImportComponent(w http.ResponseWriter, r *http.Request) {
	files := readUploads(w, r)
	if files == nil {
		return
	}

	label := r.FormValue("component")
	if label == "" {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "component label is required")
		return
	}

	metaByFile := make(map[string]componentFileMeta)
	for _, raw := range r.MultipartForm.Value["metadata"] {
		var meta componentFileMeta
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid metadata entry: "+err.Error())
			return
		}
		metaByFile[meta.File] = meta
	}

	uploads := make([]service.ComponentImportFile, 0, len(files))
	for name, data := range files {
		meta := metaByFile[name]
		uploads = append(uploads, service.ComponentImportFile{
			Name:       name,
			Data:       data,
			LanguageID: meta.LanguageID,
			Code:       meta.Code,
			Label:      meta.Label,
		})
	}

	report, err := s.svc.ImportComponentJSON(userID(r), chi.URLParam(r, "projectID"), label, uploads)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.metrics.importsTotal.Inc()
	WriteSuccess(w, r, http.StatusOK, report)
}

func (s *Server) handleListRawLanguages(w http.ResponseWriter, r *http.Request) {
	langs, err := s.svc.Store().ListRawLanguages()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, http.StatusOK, langs)
}

func (s *Server) handleSeedRawLanguages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "unreadable body")
		return
	}

	count, err := s.svc.ImportRawLanguages(data)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	WriteSuccess(w, r, http.StatusCreated, map[string]int{"imported": count})
}

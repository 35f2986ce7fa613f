// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package service

import (
	"strings"

	"github.com/polyloc/polyloc/internal/export"
	"github.com/polyloc/polyloc/internal/logging"
	"github.com/polyloc/polyloc/internal/store"
)

// ExportProject renders the project into a zip archive in the requested
// format and returns the archive bytes with a download filename.
func (s *Service) ExportProject(userID, projectID string, format export.Format) ([]byte, string, error) {
	project, err := s.store.GetProject(userID, projectID)
	if err != nil {
		return nil, "", err
	}

	nodes, err := s.store.ListAllNodes(projectID)
	if err != nil {
		return nil, "", err
	}
	values, err := s.store.Aggregate(userID, projectID, store.AggregateFilter{})
	if err != nil {
		return nil, "", err
	}

	data, err := export.Archive(project, nodes, values, format)
	if err != nil {
		return nil, "", err
	}

	filename := downloadName(project.ProjectName, string(format))
	logging.Info().
		Str("project_id", projectID).
		Str("format", string(format)).
		Int("bytes", len(data)).
		Msg("Project exported")
	return data, filename, nil
}

// downloadName builds a safe attachment filename from the project name.
func downloadName(projectName, format string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, projectName)
	if name == "" {
		name = "project"
	}
	return name + "-" + format + ".zip"
}

// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/polyloc/polyloc/internal/models"
	"github.com/polyloc/polyloc/internal/tree"
)

// Archive bundles a project's rendered translation files into one zip.
// Layout: one file per visible language at the archive root, named after
// the language's export code, plus one file per visible language per
// component inside a subfolder named after the component. Hidden languages
// never appear in the archive.
//
//	en.json
//	de.json
//	widget/en.json
//	widget/de.json
func Archive(project *models.Project, nodes []*models.Node, values models.ValueMap, format Format) ([]byte, error) {
	languages := project.VisibleLanguages()

	files, err := renderFiles(project, nodes, values, languages, format)
	if err != nil {
		return nil, err
	}

	// Stable member order keeps archives reproducible.
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create archive member %s: %w", name, err)
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, fmt.Errorf("write archive member %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// renderFiles produces the archive members as path -> content.
func renderFiles(project *models.Project, nodes []*models.Node, values models.ValueMap, languages []models.Language, format Format) (map[string][]byte, error) {
	files := make(map[string][]byte)
	ext := format.Extension()

	switch format {
	case FormatJSON:
		export := tree.BuildExport(nodes, values, languages, project.ProjectID)
		for _, lang := range languages {
			data, err := RenderJSON(export.Locales[lang.ID])
			if err != nil {
				return nil, err
			}
			files[lang.ExportCode()+ext] = data
		}
		for _, comp := range export.Components {
			folder := sanitizeMemberName(comp.Label)
			for _, lang := range languages {
				data, err := RenderJSON(comp.Locales[lang.ID])
				if err != nil {
					return nil, err
				}
				files[folder+"/"+lang.ExportCode()+ext] = data
			}
		}

	case FormatAndroid:
		export := tree.BuildXMLExport(nodes, values, languages, project.ProjectID)
		for _, lang := range languages {
			data, err := RenderAndroidXML(lang.ExportCode(), export.Locales[lang.ID])
			if err != nil {
				return nil, err
			}
			files[lang.ExportCode()+ext] = data
		}
		for _, comp := range export.Components {
			folder := sanitizeMemberName(comp.Label)
			for _, lang := range languages {
				data, err := RenderAndroidXML(lang.ExportCode(), comp.Locales[lang.ID])
				if err != nil {
					return nil, err
				}
				files[folder+"/"+lang.ExportCode()+ext] = data
			}
		}

	case FormatApple:
		linear := tree.BuildLinear(nodes, values, languages, project.ProjectID)
		for _, lang := range languages {
			files[lang.ExportCode()+ext] = RenderAppleStrings(linear.Locales[lang.ID])
		}
		for _, comp := range linear.Components {
			folder := sanitizeMemberName(comp.Label)
			for _, lang := range languages {
				files[folder+"/"+lang.ExportCode()+ext] = RenderAppleStrings(comp.Locales[lang.ID])
			}
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return files, nil
}

// sanitizeMemberName makes a component label safe as an archive folder name.
var memberNameReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")

func sanitizeMemberName(label string) string {
	name := memberNameReplacer.Replace(strings.TrimSpace(label))
	if name == "" {
		return "_"
	}
	return name
}

// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package tree

import (
	"strings"
	"unicode"

	"github.com/polyloc/polyloc/internal/models"
)

// TextKey is the reserved key under which a string node's translated text is
// stored in XML-safe objects. Container entries hold nested maps; text
// always lives one level down under this key, so renderers never have to
// distinguish leaf strings from containers.
const TextKey = "_text"

// BuildXMLExport assembles the same shape as BuildExport but with every
// label slugified into a valid XML element name and every leaf wrapped as
// {TextKey: value}. Labels that collide after slugification overwrite each
// other; the deterministic sibling order makes the survivor predictable.
func BuildXMLExport(nodes []*models.Node, values models.ValueMap, languages []models.Language, rootID string) *Export {
	index := childIndex(nodes)

	export := &Export{
		Locales: make(map[string]map[string]any, len(languages)),
	}
	for _, lang := range languages {
		export.Locales[lang.ID] = buildXMLObject(index, values, lang.ID, rootID)
	}

	components := make([]*models.Node, 0)
	for _, n := range nodes {
		if n.Type == models.NodeTypeComponent {
			components = append(components, n)
		}
	}
	sortSiblings(components)

	for _, comp := range components {
		bucket := &ComponentExport{
			ID:      comp.ID,
			Label:   comp.Label,
			Locales: make(map[string]map[string]any, len(languages)),
		}
		for _, lang := range languages {
			bucket.Locales[lang.ID] = buildXMLObject(index, values, lang.ID, comp.ID)
		}
		export.Components = append(export.Components, bucket)
	}

	return export
}

func buildXMLObject(index map[string][]*models.Node, values models.ValueMap, languageID, parentID string) map[string]any {
	obj := make(map[string]any)
	for _, n := range index[parentID] {
		switch n.Type {
		case models.NodeTypeString:
			obj[Slugify(n.Label)] = map[string]any{
				TextKey: values.Lookup(n.ID, languageID),
			}
		case models.NodeTypeFolder:
			obj[Slugify(n.Label)] = buildXMLObject(index, values, languageID, n.ID)
		case models.NodeTypeComponent:
			// Routed separately.
		}
	}
	return obj
}

// Slugify converts an arbitrary label into a usable XML element name:
// letters are lower-cased, spaces become hyphens, digits, underscores and
// hyphens survive, everything else becomes an underscore, and names that
// would start with a digit or hyphen get an underscore prefix. An empty
// label yields "_".
func Slugify(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == ' ':
			b.WriteByte('-')
		case r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	slug := b.String()
	if slug == "" {
		return "_"
	}
	first := rune(slug[0])
	if unicode.IsDigit(first) || first == '-' {
		return "_" + slug
	}
	return slug
}

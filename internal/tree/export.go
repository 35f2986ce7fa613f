// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package tree

import (
	"github.com/polyloc/polyloc/internal/models"
)

// Export is the nested key/value object form of a project, one object per
// language, with component subtrees routed into their own buckets. A string
// key with no value in some language renders as "", never gets omitted, so
// every language file carries the full key set.
type Export struct {
	// Locales maps language id to the nested object of the main tree,
	// components excluded.
	Locales map[string]map[string]any

	// Components holds one bucket per component node, in deterministic
	// order, each with its own per-language objects.
	Components []*ComponentExport
}

// ComponentExport is the per-language nested object of one component
// subtree.
type ComponentExport struct {
	ID      string
	Label   string
	Locales map[string]map[string]any
}

// BuildExport assembles the export form of a project. rootID is the parent
// id of top-level nodes (the project id). Every component node anywhere in
// the hierarchy is routed to its own bucket; a component nested inside
// another component gets its own bucket too rather than appearing inline.
func BuildExport(nodes []*models.Node, values models.ValueMap, languages []models.Language, rootID string) *Export {
	index := childIndex(nodes)

	export := &Export{
		Locales: make(map[string]map[string]any, len(languages)),
	}
	for _, lang := range languages {
		export.Locales[lang.ID] = buildObject(index, values, lang.ID, rootID)
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
			bucket.Locales[lang.ID] = buildObject(index, values, lang.ID, comp.ID)
		}
		export.Components = append(export.Components, bucket)
	}

	return export
}

// buildObject renders the children of parentID as a nested object for one
// language. Component children are skipped; they are rendered into their
// own buckets by the caller.
func buildObject(index map[string][]*models.Node, values models.ValueMap, languageID, parentID string) map[string]any {
	obj := make(map[string]any)
	for _, n := range index[parentID] {
		switch n.Type {
		case models.NodeTypeString:
			obj[n.Label] = values.Lookup(n.ID, languageID)
		case models.NodeTypeFolder:
			obj[n.Label] = buildObject(index, values, languageID, n.ID)
		case models.NodeTypeComponent:
			// Routed separately.
		}
	}
	return obj
}

// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package tree

import (
	"github.com/polyloc/polyloc/internal/models"
)

// Entry is one flat key/value pair. The key is the dotted path of folder
// labels down to the string node's label.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Linear is the flattened form of a project: per-language entry lists for
// the main tree and one bucket per component. Entries appear in hierarchy
// walk order, which is deterministic.
type Linear struct {
	Locales    map[string][]Entry
	Components []*ComponentLinear
}

// ComponentLinear is the per-language flattened form of one component
// subtree. Keys inside a component are relative to the component itself;
// the component's label never appears in them.
type ComponentLinear struct {
	ID      string
	Label   string
	Locales map[string][]Entry
}

// BuildLinear flattens a project into dotted-path entries. Folder ancestors
// contribute their labels to the path; component ancestors are
// path-transparent since each component gets its own bucket. Keys with no
// value in some language yield an entry with an empty value.
func BuildLinear(nodes []*models.Node, values models.ValueMap, languages []models.Language, rootID string) *Linear {
	index := childIndex(nodes)

	linear := &Linear{
		Locales: make(map[string][]Entry, len(languages)),
	}
	for _, lang := range languages {
		linear.Locales[lang.ID] = flattenLevel(index, values, lang.ID, rootID, "")
	}

	components := make([]*models.Node, 0)
	for _, n := range nodes {
		if n.Type == models.NodeTypeComponent {
			components = append(components, n)
		}
	}
	sortSiblings(components)

	for _, comp := range components {
		bucket := &ComponentLinear{
			ID:      comp.ID,
			Label:   comp.Label,
			Locales: make(map[string][]Entry, len(languages)),
		}
		for _, lang := range languages {
			bucket.Locales[lang.ID] = flattenLevel(index, values, lang.ID, comp.ID, "")
		}
		linear.Components = append(linear.Components, bucket)
	}

	return linear
}

func flattenLevel(index map[string][]*models.Node, values models.ValueMap, languageID, parentID, prefix string) []Entry {
	entries := []Entry{}
	for _, n := range index[parentID] {
		switch n.Type {
		case models.NodeTypeString:
			entries = append(entries, Entry{
				Key:   prefix + n.Label,
				Value: values.Lookup(n.ID, languageID),
			})
		case models.NodeTypeFolder:
			entries = append(entries, flattenLevel(index, values, languageID, n.ID, prefix+n.Label+".")...)
		case models.NodeTypeComponent:
			// Routed separately.
		}
	}
	return entries
}

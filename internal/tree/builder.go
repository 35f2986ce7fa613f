// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

// Package tree turns the flat node collection plus an aggregated value map
// into the shapes consumers need: a nested hierarchy for the editing UI, a
// nested key/value object per language for JSON export, an XML-safe variant
// of the same, and flat dotted-path entry lists for line-oriented formats.
//
// All builders are pure functions over their inputs and order siblings
// deterministically (type, then label, then id), so identical data always
// produces identical output.
package tree

import (
	"sort"

	"github.com/polyloc/polyloc/internal/models"
)

// Node is one entry of the nested hierarchy view: the stored node plus its
// per-language values and sorted children.
type Node struct {
	*models.Node
	Values   map[string]models.Value `json:"values"`
	Children []*Node                 `json:"children"`
}

// childIndex groups nodes by parent id with deterministic sibling order.
func childIndex(nodes []*models.Node) map[string][]*models.Node {
	index := make(map[string][]*models.Node)
	for _, n := range nodes {
		index[n.ParentID] = append(index[n.ParentID], n)
	}
	for _, siblings := range index {
		sortSiblings(siblings)
	}
	return index
}

func sortSiblings(nodes []*models.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.ID < b.ID
	})
}

// Build assembles the nested hierarchy below rootID (normally the project
// id) from the flat node collection. String nodes carry their values from
// the aggregated map; nodes whose parent chain never reaches rootID are
// dropped.
func Build(nodes []*models.Node, values models.ValueMap, rootID string) []*Node {
	index := childIndex(nodes)
	return buildLevel(index, values, rootID)
}

func buildLevel(index map[string][]*models.Node, values models.ValueMap, parentID string) []*Node {
	siblings := index[parentID]
	level := make([]*Node, 0, len(siblings))
	for _, n := range siblings {
		wrapped := &Node{
			Node:     n,
			Values:   map[string]models.Value{},
			Children: []*Node{},
		}
		if n.Type == models.NodeTypeString {
			if langs, ok := values[n.ID]; ok {
				wrapped.Values = langs
			}
		} else {
			wrapped.Children = buildLevel(index, values, n.ID)
		}
		level = append(level, wrapped)
	}
	return level
}

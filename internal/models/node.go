// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package models

import "strings"

// NodeType discriminates the three kinds of entries in the flat hierarchical
// collection.
type NodeType string

const (
	// NodeTypeFolder is an ordinary nesting container.
	NodeTypeFolder NodeType = "folder"

	// NodeTypeComponent is a top-level grouping that exports to its own file.
	// Component ancestors are path-transparent in dotted key paths.
	NodeTypeComponent NodeType = "component"

	// NodeTypeString is a leaf translatable key. Only string nodes carry
	// values.
	NodeTypeString NodeType = "string"
)

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeFolder, NodeTypeComponent, NodeTypeString:
		return true
	}
	return false
}

// PathRoot is the sentinel that starts every pathCache chain.
const PathRoot = "#"

// Node is a folder, component or leaf string key in a project's flat
// hierarchical collection. The project's own id serves as the virtual root:
// top-level nodes have ParentID == ProjectID and PathCache == "#".
//
// Invariant: PathCache always equals the parent's PathCache + "/" + the
// parent's id. Subtree deletion and breadcrumb resolution both match on
// PathCache prefixes and break if this drifts.
type Node struct {
	ID          string   `json:"id"`
	UserID      string   `json:"userId"`
	ProjectID   string   `json:"projectId"`
	ParentID    string   `json:"parentId"`
	Label       string   `json:"label"`
	Type        NodeType `json:"type"`
	Description string   `json:"description"`
	PathCache   string   `json:"pathCache"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

// ChildPathCache returns the pathCache a direct child of n must carry.
func (n *Node) ChildPathCache() string {
	return n.PathCache + "/" + n.ID
}

// AncestorIDs splits the pathCache into the ordered ancestor id chain,
// dropping the leading sentinel. Top-level nodes return an empty slice.
func (n *Node) AncestorIDs() []string {
	parts := strings.Split(n.PathCache, "/")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == PathRoot {
			continue
		}
		ids = append(ids, part)
	}
	return ids
}

// Value is one translation of one string node into one language. ParentID
// and PathCache are duplicated from the owning node so bulk filters and
// cascade deletes run without joins.
//
// At most one value may exist per (KeyID, LanguageID) pair; the store
// enforces this with a deterministic value id derived from that pair when
// the client does not supply one.
type Value struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	ProjectID  string `json:"projectId"`
	ParentID   string `json:"parentId"`
	KeyID      string `json:"keyId"`
	LanguageID string `json:"languageId"`
	Value      string `json:"value"`
	PathCache  string `json:"pathCache"`
}

// ValueMap maps key id -> language id -> value, the shape produced by the
// aggregation pass and consumed by the tree builders.
type ValueMap map[string]map[string]Value

// Lookup returns the value string for (keyID, languageID), or "" when the
// key has no value for that language. Missing translations always render as
// empty strings, never get omitted.
func (m ValueMap) Lookup(keyID, languageID string) string {
	if langs, ok := m[keyID]; ok {
		if v, ok := langs[languageID]; ok {
			return v.Value
		}
	}
	return ""
}

// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package tree

import (
	"reflect"
	"testing"

	"github.com/polyloc/polyloc/internal/models"
)

const testRootID = "proj-1"

func fixtureNode(id, parentID, label string, typ models.NodeType) *models.Node {
	return &models.Node{
		ID:        id,
		ProjectID: testRootID,
		ParentID:  parentID,
		Label:     label,
		Type:      typ,
	}
}

// fixtureTree builds:
//
//	appname              (string)
//	common/              (folder)
//	  greeting           (string)
//	  errors/            (folder)
//	    notfound         (string)
//	widget               (component)
//	  title              (string)
func fixtureTree() ([]*models.Node, models.ValueMap, []models.Language) {
	nodes := []*models.Node{
		fixtureNode("n-app", testRootID, "appname", models.NodeTypeString),
		fixtureNode("n-common", testRootID, "common", models.NodeTypeFolder),
		fixtureNode("n-greet", "n-common", "greeting", models.NodeTypeString),
		fixtureNode("n-errors", "n-common", "errors", models.NodeTypeFolder),
		fixtureNode("n-notfound", "n-errors", "notfound", models.NodeTypeString),
		fixtureNode("n-widget", testRootID, "widget", models.NodeTypeComponent),
		fixtureNode("n-title", "n-widget", "title", models.NodeTypeString),
	}

	values := models.ValueMap{
		"n-app": {
			"lang-en": {KeyID: "n-app", LanguageID: "lang-en", Value: "Polyloc"},
			"lang-de": {KeyID: "n-app", LanguageID: "lang-de", Value: "Polyloc"},
		},
		"n-greet": {
			"lang-en": {KeyID: "n-greet", LanguageID: "lang-en", Value: "hello"},
			"lang-de": {KeyID: "n-greet", LanguageID: "lang-de", Value: "hallo"},
		},
		"n-notfound": {
			"lang-en": {KeyID: "n-notfound", LanguageID: "lang-en", Value: "not found"},
			// lang-de intentionally missing
		},
		"n-title": {
			"lang-en": {KeyID: "n-title", LanguageID: "lang-en", Value: "Widget"},
			"lang-de": {KeyID: "n-title", LanguageID: "lang-de", Value: "Widget"},
		},
	}

	languages := []models.Language{
		{ID: "lang-en", Label: "English", Code: "en", Visible: true},
		{ID: "lang-de", Label: "German", Code: "de", Visible: true},
	}

	return nodes, values, languages
}

func TestBuildHierarchy(t *testing.T) {
	nodes, values, _ := fixtureTree()

	roots := Build(nodes, values, testRootID)
	if len(roots) != 3 {
		t.Fatalf("Expected 3 top-level nodes, got %d", len(roots))
	}

	// Deterministic sibling order: component, folder, string.
	gotOrder := []string{roots[0].ID, roots[1].ID, roots[2].ID}
	wantOrder := []string{"n-widget", "n-common", "n-app"}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Errorf("Expected top-level order %v, got %v", wantOrder, gotOrder)
	}

	common := roots[1]
	if len(common.Children) != 2 {
		t.Fatalf("Expected 2 children under common, got %d", len(common.Children))
	}
	greet := common.Children[1]
	if greet.ID != "n-greet" {
		t.Fatalf("Expected n-greet as second child, got %q", greet.ID)
	}
	if got := greet.Values["lang-de"].Value; got != "hallo" {
		t.Errorf("Expected 'hallo', got %q", got)
	}

	// Container nodes never carry values, leaf nodes never carry children.
	if len(common.Values) != 0 {
		t.Errorf("Expected no values on folder, got %d", len(common.Values))
	}
	if len(greet.Children) != 0 {
		t.Errorf("Expected no children on string node, got %d", len(greet.Children))
	}
}

func TestBuildExport(t *testing.T) {
	nodes, values, languages := fixtureTree()

	export := BuildExport(nodes, values, languages, testRootID)

	en := export.Locales["lang-en"]
	want := map[string]any{
		"appname": "Polyloc",
		"common": map[string]any{
			"greeting": "hello",
			"errors": map[string]any{
				"notfound": "not found",
			},
		},
	}
	if !reflect.DeepEqual(en, want) {
		t.Errorf("Expected en tree %v, got %v", want, en)
	}

	// Missing translation renders as empty string, not as a missing key.
	de := export.Locales["lang-de"]
	common, ok := de["common"].(map[string]any)
	if !ok {
		t.Fatalf("Expected common folder in de tree, got %v", de)
	}
	errFolder, ok := common["errors"].(map[string]any)
	if !ok {
		t.Fatalf("Expected errors folder, got %v", common)
	}
	if got := errFolder["notfound"]; got != "" {
		t.Errorf("Expected empty string for missing de value, got %v", got)
	}

	// The component is absent from the locale trees and has its own bucket.
	if _, present := en["widget"]; present {
		t.Error("Expected component to be excluded from locale tree")
	}
	if len(export.Components) != 1 {
		t.Fatalf("Expected 1 component bucket, got %d", len(export.Components))
	}
	comp := export.Components[0]
	if comp.Label != "widget" {
		t.Errorf("Expected component label 'widget', got %q", comp.Label)
	}
	if got := comp.Locales["lang-en"]["title"]; got != "Widget" {
		t.Errorf("Expected component title 'Widget', got %v", got)
	}
}

func TestBuildXMLExport(t *testing.T) {
	nodes, values, languages := fixtureTree()
	nodes = append(nodes,
		fixtureNode("n-odd", testRootID, "2 odd label!", models.NodeTypeString),
	)
	values["n-odd"] = map[string]models.Value{
		"lang-en": {KeyID: "n-odd", LanguageID: "lang-en", Value: "odd"},
	}

	export := BuildXMLExport(nodes, values, languages, testRootID)
	en := export.Locales["lang-en"]

	leaf, ok := en["appname"].(map[string]any)
	if !ok {
		t.Fatalf("Expected wrapped leaf, got %v", en["appname"])
	}
	if got := leaf[TextKey]; got != "Polyloc" {
		t.Errorf("Expected text 'Polyloc', got %v", got)
	}

	if _, present := en["_2-odd-label_"]; !present {
		t.Errorf("Expected slugified label '_2-odd-label_', got keys %v", keysOf(en))
	}

	common, ok := en["common"].(map[string]any)
	if !ok {
		t.Fatalf("Expected common folder, got %v", en)
	}
	greet, ok := common["greeting"].(map[string]any)
	if !ok || greet[TextKey] != "hello" {
		t.Errorf("Expected wrapped greeting, got %v", common["greeting"])
	}
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"simple", "simple"},
		{"with space", "with-space"},
		{"Mixed Case", "mixed-case"},
		{"dots.and.bangs!", "dots_and_bangs_"},
		{"2leading", "_2leading"},
		{"-dash", "_-dash"},
		{"under_score", "under_score"},
		{"", "_"},
		{"Ümlaut", "ümlaut"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildLinear(t *testing.T) {
	nodes, values, languages := fixtureTree()

	linear := BuildLinear(nodes, values, languages, testRootID)

	en := linear.Locales["lang-en"]
	want := []Entry{
		{Key: "common.errors.notfound", Value: "not found"},
		{Key: "common.greeting", Value: "hello"},
		{Key: "appname", Value: "Polyloc"},
	}
	if !reflect.DeepEqual(en, want) {
		t.Errorf("Expected entries %v, got %v", want, en)
	}

	// Missing value still yields an entry.
	de := linear.Locales["lang-de"]
	found := false
	for _, e := range de {
		if e.Key == "common.errors.notfound" {
			found = true
			if e.Value != "" {
				t.Errorf("Expected empty value, got %q", e.Value)
			}
		}
	}
	if !found {
		t.Error("Expected entry for key without de translation")
	}

	// Component keys live in their own bucket, relative to the component.
	if len(linear.Components) != 1 {
		t.Fatalf("Expected 1 component bucket, got %d", len(linear.Components))
	}
	compEntries := linear.Components[0].Locales["lang-en"]
	if len(compEntries) != 1 || compEntries[0].Key != "title" {
		t.Errorf("Expected component entry 'title', got %v", compEntries)
	}
}

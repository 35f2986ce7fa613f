// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package store

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/polyloc/polyloc/internal/config"
	"github.com/polyloc/polyloc/internal/models"
)

// newTestStore creates an in-memory store for testing.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(&config.DatabaseConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Failed to close test store: %v", err)
		}
	})
	return s
}

func testProject(id string) *models.Project {
	return &models.Project{
		ProjectID:   id,
		UserID:      "user-1",
		ProjectName: "Test Project",
		Languages: []models.Language{
			{ID: "lang-en", Label: "English", Code: "en", BaseLanguage: true, Visible: true},
			{ID: "lang-de", Label: "German", Code: "de", Visible: true},
		},
	}
}

func testNode(id, parentID, pathCache string, typ models.NodeType) *models.Node {
	return &models.Node{
		ID:        id,
		UserID:    "user-1",
		ProjectID: "proj-1",
		ParentID:  parentID,
		Label:     "node " + id,
		Type:      typ,
		PathCache: pathCache,
	}
}

func testValue(keyID, languageID, parentID, pathCache, text string) models.Value {
	return models.Value{
		UserID:     "user-1",
		ProjectID:  "proj-1",
		ParentID:   parentID,
		KeyID:      keyID,
		LanguageID: languageID,
		Value:      text,
		PathCache:  pathCache,
	}
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestStore(t)

	if err := s.CreateProject(testProject("proj-1")); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	if err := s.CreateProject(testProject("proj-1")); !errors.Is(err, ErrProjectExists) {
		t.Errorf("Expected ErrProjectExists for duplicate id, got %v", err)
	}

	project, err := s.GetProject("user-1", "proj-1")
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if project.ProjectName != "Test Project" {
		t.Errorf("Expected project name 'Test Project', got %q", project.ProjectName)
	}
	if len(project.Languages) != 2 {
		t.Errorf("Expected 2 languages, got %d", len(project.Languages))
	}

	// Foreign users must not be able to see the project at all.
	if _, err := s.GetProject("user-2", "proj-1"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound for foreign user, got %v", err)
	}

	project, err = s.RenameProject("user-1", "proj-1", "Renamed")
	if err != nil {
		t.Fatalf("RenameProject failed: %v", err)
	}
	if project.ProjectName != "Renamed" {
		t.Errorf("Expected renamed project, got %q", project.ProjectName)
	}

	if err := s.DeleteProject("user-1", "proj-1"); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}
	if _, err := s.GetProject("user-1", "proj-1"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound after delete, got %v", err)
	}
}

func TestListProjectsSortedByName(t *testing.T) {
	s := newTestStore(t)

	for i, name := range []string{"Zulu", "Alpha", "Mike"} {
		p := testProject(fmt.Sprintf("proj-%d", i))
		p.ProjectName = name
		if err := s.CreateProject(p); err != nil {
			t.Fatalf("CreateProject failed: %v", err)
		}
	}

	projects, err := s.ListProjects("user-1")
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}

	got := make([]string, len(projects))
	for i, p := range projects {
		got[i] = p.ProjectName
	}
	want := []string{"Alpha", "Mike", "Zulu"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected projects %v, got %v", want, got)
	}
}

func TestLanguageOperations(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateProject(testProject("proj-1")); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	project, err := s.AddLanguage("user-1", "proj-1", models.Language{ID: "lang-fr", Label: "French", Code: "fr", Visible: true})
	if err != nil {
		t.Fatalf("AddLanguage failed: %v", err)
	}
	if len(project.Languages) != 3 {
		t.Errorf("Expected 3 languages, got %d", len(project.Languages))
	}

	// Adding the same id again must not duplicate the entry.
	project, err = s.AddLanguage("user-1", "proj-1", models.Language{ID: "lang-fr", Label: "French", Code: "fr"})
	if err != nil {
		t.Fatalf("AddLanguage (duplicate) failed: %v", err)
	}
	if len(project.Languages) != 3 {
		t.Errorf("Expected duplicate add to be a no-op, got %d languages", len(project.Languages))
	}

	project, err = s.UpdateLanguage("user-1", "proj-1", models.Language{
		ID: "lang-fr", Label: "French", Code: "fr", Visible: true,
		CustomCode: "fr_FR", CustomCodeEnabled: true,
	})
	if err != nil {
		t.Fatalf("UpdateLanguage failed: %v", err)
	}
	if got := project.Language("lang-fr").ExportCode(); got != "fr_FR" {
		t.Errorf("Expected export code fr_FR, got %q", got)
	}

	if _, err := s.UpdateLanguage("user-1", "proj-1", models.Language{ID: "lang-xx"}); !errors.Is(err, ErrLanguageNotFound) {
		t.Errorf("Expected ErrLanguageNotFound, got %v", err)
	}

	project, err = s.SetLanguagesVisibility("user-1", "proj-1", []VisibilityChange{
		{LanguageID: "lang-de", Visible: false},
		{LanguageID: "lang-fr", Visible: false},
	})
	if err != nil {
		t.Fatalf("SetLanguagesVisibility failed: %v", err)
	}
	if got := len(project.VisibleLanguages()); got != 1 {
		t.Errorf("Expected 1 visible language, got %d", got)
	}

	project, err = s.RemoveLanguage("user-1", "proj-1", "lang-fr")
	if err != nil {
		t.Fatalf("RemoveLanguage failed: %v", err)
	}
	if project.Language("lang-fr") != nil {
		t.Error("Expected lang-fr to be removed")
	}
}

func TestCreateNodeDuplicateID(t *testing.T) {
	s := newTestStore(t)

	node := testNode("node-1", "proj-1", models.PathRoot, models.NodeTypeFolder)
	if err := s.CreateNode(node, nil); err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	if err := s.CreateNode(testNode("node-1", "proj-1", models.PathRoot, models.NodeTypeFolder), nil); !errors.Is(err, ErrNodeExists) {
		t.Errorf("Expected ErrNodeExists, got %v", err)
	}
}

func TestListChildrenFilterSortPaginate(t *testing.T) {
	s := newTestStore(t)

	nodes := []*models.Node{
		testNode("n-key-b", "proj-1", models.PathRoot, models.NodeTypeString),
		testNode("n-folder", "proj-1", models.PathRoot, models.NodeTypeFolder),
		testNode("n-key-a", "proj-1", models.PathRoot, models.NodeTypeString),
		testNode("n-comp", "proj-1", models.PathRoot, models.NodeTypeComponent),
		testNode("n-nested", "n-folder", "#/n-folder", models.NodeTypeString),
	}
	nodes[0].Label = "beta"
	nodes[1].Label = "folder"
	nodes[2].Label = "alpha"
	nodes[3].Label = "comp"
	if err := s.InsertNodes(nodes, nil); err != nil {
		t.Fatalf("InsertNodes failed: %v", err)
	}

	// Default ordering: type asc, then label asc. Nested node excluded.
	children, total, err := s.ListChildren("proj-1", "proj-1", ListChildrenParams{})
	if err != nil {
		t.Fatalf("ListChildren failed: %v", err)
	}
	if total != 4 {
		t.Errorf("Expected total 4, got %d", total)
	}
	gotIDs := make([]string, len(children))
	for i, c := range children {
		gotIDs[i] = c.ID
	}
	wantIDs := []string{"n-comp", "n-folder", "n-key-a", "n-key-b"}
	if !reflect.DeepEqual(gotIDs, wantIDs) {
		t.Errorf("Expected default order %v, got %v", wantIDs, gotIDs)
	}

	// Hide containers, leaving only string nodes.
	children, total, err = s.ListChildren("proj-1", "proj-1", ListChildrenParams{
		HideFolders:    true,
		HideComponents: true,
		SortBy:         SortByLabel,
		Descending:     true,
	})
	if err != nil {
		t.Fatalf("ListChildren (filtered) failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected total 2, got %d", total)
	}
	if children[0].Label != "beta" || children[1].Label != "alpha" {
		t.Errorf("Expected descending label order, got %q then %q", children[0].Label, children[1].Label)
	}

	// Second page of one-per-page must report the full total.
	children, total, err = s.ListChildren("proj-1", "proj-1", ListChildrenParams{Page: 2, PerPage: 1})
	if err != nil {
		t.Fatalf("ListChildren (paged) failed: %v", err)
	}
	if total != 4 {
		t.Errorf("Expected total 4 with pagination, got %d", total)
	}
	if len(children) != 1 || children[0].ID != "n-folder" {
		t.Errorf("Expected page 2 to hold n-folder, got %v", gotIDsOf(children))
	}

	// Page past the end is empty but still counts.
	children, total, err = s.ListChildren("proj-1", "proj-1", ListChildrenParams{Page: 9, PerPage: 10})
	if err != nil {
		t.Fatalf("ListChildren (overflow page) failed: %v", err)
	}
	if len(children) != 0 || total != 4 {
		t.Errorf("Expected empty overflow page with total 4, got %d items, total %d", len(children), total)
	}
}

func gotIDsOf(nodes []*models.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// buildTestTree creates:
//
//	folder-a            (top level)
//	  key-1             (string, values en+de)
//	  folder-b
//	    key-2           (string, value en)
//	folder-ab           (top level, id shares prefix with folder-a)
//	  key-3             (string, value en)
func buildTestTree(t *testing.T, s *Store) {
	t.Helper()

	nodes := []*models.Node{
		testNode("folder-a", "proj-1", models.PathRoot, models.NodeTypeFolder),
		testNode("key-1", "folder-a", "#/folder-a", models.NodeTypeString),
		testNode("folder-b", "folder-a", "#/folder-a", models.NodeTypeFolder),
		testNode("key-2", "folder-b", "#/folder-a/folder-b", models.NodeTypeString),
		testNode("folder-ab", "proj-1", models.PathRoot, models.NodeTypeFolder),
		testNode("key-3", "folder-ab", "#/folder-ab", models.NodeTypeString),
	}
	values := []models.Value{
		testValue("key-1", "lang-en", "folder-a", "#/folder-a", "hello"),
		testValue("key-1", "lang-de", "folder-a", "#/folder-a", "hallo"),
		testValue("key-2", "lang-en", "folder-b", "#/folder-a/folder-b", "nested"),
		testValue("key-3", "lang-en", "folder-ab", "#/folder-ab", "sibling"),
	}
	if err := s.InsertNodes(nodes, values); err != nil {
		t.Fatalf("Failed to build test tree: %v", err)
	}
}

func TestListSubtree(t *testing.T) {
	s := newTestStore(t)
	buildTestTree(t, s)

	nodes, err := s.ListSubtree("proj-1", "folder-a")
	if err != nil {
		t.Fatalf("ListSubtree failed: %v", err)
	}
	if len(nodes) != 4 {
		t.Fatalf("Expected 4 subtree nodes, got %d", len(nodes))
	}
	// folder-ab shares an id prefix with folder-a but is a sibling.
	for _, n := range nodes {
		if n.ID == "folder-ab" || n.ID == "key-3" {
			t.Errorf("Unexpected node %q in subtree", n.ID)
		}
	}

	nodes, err = s.ListSubtree("proj-1", "key-1")
	if err != nil {
		t.Fatalf("ListSubtree (leaf) failed: %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != "key-1" {
		t.Errorf("Expected only the leaf itself, got %v", nodes)
	}

	if _, err := s.ListSubtree("proj-1", "missing"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound, got %v", err)
	}
}

func TestDeleteSubtree(t *testing.T) {
	s := newTestStore(t)
	buildTestTree(t, s)

	deleted, err := s.DeleteSubtree("proj-1", "folder-a")
	if err != nil {
		t.Fatalf("DeleteSubtree failed: %v", err)
	}
	if deleted != 4 {
		t.Errorf("Expected 4 deleted nodes, got %d", deleted)
	}

	// No node or value of the subtree may survive.
	remaining, err := s.ListAllNodes("proj-1")
	if err != nil {
		t.Fatalf("ListAllNodes failed: %v", err)
	}
	for _, n := range remaining {
		if n.ID != "folder-ab" && n.ID != "key-3" {
			t.Errorf("Unexpected surviving node %q", n.ID)
		}
	}
	if len(remaining) != 2 {
		t.Errorf("Expected 2 surviving nodes, got %d", len(remaining))
	}

	values, err := s.ListAllValues("proj-1")
	if err != nil {
		t.Fatalf("ListAllValues failed: %v", err)
	}
	if len(values) != 1 || values[0].KeyID != "key-3" {
		t.Errorf("Expected only key-3 value to survive, got %v", values)
	}

	if _, err := s.DeleteSubtree("proj-1", "folder-a"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound for repeated delete, got %v", err)
	}
}

func TestDeleteSubtreeLeaf(t *testing.T) {
	s := newTestStore(t)
	buildTestTree(t, s)

	deleted, err := s.DeleteSubtree("proj-1", "key-1")
	if err != nil {
		t.Fatalf("DeleteSubtree failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted node, got %d", deleted)
	}

	values, err := s.ListAllValues("proj-1")
	if err != nil {
		t.Fatalf("ListAllValues failed: %v", err)
	}
	for _, v := range values {
		if v.KeyID == "key-1" {
			t.Errorf("Expected key-1 values to be gone, found %v", v)
		}
	}
	if len(values) != 2 {
		t.Errorf("Expected 2 surviving values, got %d", len(values))
	}
}

func TestAggregate(t *testing.T) {
	s := newTestStore(t)
	buildTestTree(t, s)

	result, err := s.Aggregate("user-1", "proj-1", AggregateFilter{})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(result) != 3 {
		t.Errorf("Expected 3 keys in aggregation, got %d", len(result))
	}
	if got := result.Lookup("key-1", "lang-de"); got != "hallo" {
		t.Errorf("Expected 'hallo', got %q", got)
	}
	if got := result.Lookup("key-1", "lang-fr"); got != "" {
		t.Errorf("Expected empty string for missing language, got %q", got)
	}

	// Idempotence: a second pass over unchanged data is identical.
	again, err := s.Aggregate("user-1", "proj-1", AggregateFilter{})
	if err != nil {
		t.Fatalf("Aggregate (second pass) failed: %v", err)
	}
	if !reflect.DeepEqual(result, again) {
		t.Error("Expected identical aggregation results on unchanged data")
	}

	// Parent filter narrows to one folder's values.
	filtered, err := s.Aggregate("user-1", "proj-1", AggregateFilter{ParentIDs: []string{"folder-b"}})
	if err != nil {
		t.Fatalf("Aggregate (parent filter) failed: %v", err)
	}
	if len(filtered) != 1 || filtered.Lookup("key-2", "lang-en") != "nested" {
		t.Errorf("Expected only key-2 values, got %v", filtered)
	}

	// Key filter.
	filtered, err = s.Aggregate("user-1", "proj-1", AggregateFilter{KeyIDs: []string{"key-1"}})
	if err != nil {
		t.Fatalf("Aggregate (key filter) failed: %v", err)
	}
	if len(filtered) != 1 || len(filtered["key-1"]) != 2 {
		t.Errorf("Expected key-1 with 2 languages, got %v", filtered)
	}

	// Empty non-nil filter matches nothing.
	filtered, err = s.Aggregate("user-1", "proj-1", AggregateFilter{KeyIDs: []string{}})
	if err != nil {
		t.Fatalf("Aggregate (empty filter) failed: %v", err)
	}
	if len(filtered) != 0 {
		t.Errorf("Expected empty result for empty key filter, got %v", filtered)
	}
}

func TestUpsertValuesOnePerLanguage(t *testing.T) {
	s := newTestStore(t)
	buildTestTree(t, s)

	// A second write for the same (key, language) pair replaces the first.
	if err := s.UpsertValues([]models.Value{
		testValue("key-1", "lang-en", "folder-a", "#/folder-a", "hello again"),
	}); err != nil {
		t.Fatalf("UpsertValues failed: %v", err)
	}

	result, err := s.Aggregate("user-1", "proj-1", AggregateFilter{KeyIDs: []string{"key-1"}})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(result["key-1"]) != 2 {
		t.Errorf("Expected 2 values for key-1, got %d", len(result["key-1"]))
	}
	if got := result.Lookup("key-1", "lang-en"); got != "hello again" {
		t.Errorf("Expected replaced value, got %q", got)
	}
}

func TestResolveAncestorChain(t *testing.T) {
	s := newTestStore(t)
	buildTestTree(t, s)

	node, err := s.GetNode("proj-1", "key-2")
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}

	chain, err := s.ResolveAncestorChain(node)
	if err != nil {
		t.Fatalf("ResolveAncestorChain failed: %v", err)
	}
	if len(chain) != 2 || chain[0].ID != "folder-a" || chain[1].ID != "folder-b" {
		t.Errorf("Expected chain [folder-a folder-b], got %v", gotIDsOf(chain))
	}
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	buildTestTree(t, s)

	// Value match surfaces the owning string node with its breadcrumb.
	results, err := s.Search("user-1", "proj-1", SearchParams{Term: "NESTED", InValues: true})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Node.ID != "key-2" {
		t.Fatalf("Expected key-2 match, got %v", results)
	}
	if len(results[0].Ancestors) != 2 {
		t.Errorf("Expected 2 ancestors, got %d", len(results[0].Ancestors))
	}

	// Case-sensitive search misses the lowercase value.
	results, err = s.Search("user-1", "proj-1", SearchParams{Term: "NESTED", InValues: true, CaseSensitive: true})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no case-sensitive matches, got %d", len(results))
	}

	// Label match restricted to folder nodes.
	results, err = s.Search("user-1", "proj-1", SearchParams{Term: "node folder", InFolders: true})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("Expected 3 folder label matches, got %d", len(results))
	}

	// Exact match.
	results, err = s.Search("user-1", "proj-1", SearchParams{Term: "node key-1", InKeys: true, Exact: true})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Node.ID != "key-1" {
		t.Errorf("Expected exact match on key-1, got %v", results)
	}

	// No surfaces selected matches nothing.
	results, err = s.Search("user-1", "proj-1", SearchParams{Term: "node"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no matches without surfaces, got %d", len(results))
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateProject(testProject("proj-1")); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	buildTestTree(t, s)

	if err := s.DeleteProject("user-1", "proj-1"); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}

	nodes, err := s.ListAllNodes("proj-1")
	if err != nil {
		t.Fatalf("ListAllNodes failed: %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("Expected no surviving nodes, got %d", len(nodes))
	}
	values, err := s.ListAllValues("proj-1")
	if err != nil {
		t.Fatalf("ListAllValues failed: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("Expected no surviving values, got %d", len(values))
	}
}

func TestRawLanguageCatalog(t *testing.T) {
	s := newTestStore(t)

	count, err := s.CountRawLanguages()
	if err != nil {
		t.Fatalf("CountRawLanguages failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty catalog, got %d", count)
	}

	if err := s.InsertRawLanguages([]models.RawLanguage{
		{ID: "rl-de", Label: "German", Code: "de"},
		{ID: "rl-en", Label: "English", Code: "en"},
	}); err != nil {
		t.Fatalf("InsertRawLanguages failed: %v", err)
	}

	langs, err := s.ListRawLanguages()
	if err != nil {
		t.Fatalf("ListRawLanguages failed: %v", err)
	}
	if len(langs) != 2 || langs[0].Label != "English" {
		t.Errorf("Expected catalog sorted by label, got %v", langs)
	}
}

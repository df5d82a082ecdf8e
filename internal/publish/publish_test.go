package publish

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resource-cards/internal/card"
)

const payload = `{
	"data": {
		"cardid": "c1",
		"name": "Site",
		"cardinality": "n",
		"instructions": "Describe the site.",
		"helpenabled": true,
		"helptitle": "About sites",
		"helptext": "Line one\nLine two",
		"nodes": [
			{"nodeid": "n-name", "name": "Name", "datatype": "string"},
			{"nodeid": "n-date", "name": "Date", "datatype": "date"},
			{"nodeid": "n-note", "name": "Note", "datatype": "string"}
		],
		"widgets": [
			{"id": "w-name", "node_id": "n-name", "label": "Primary | name"},
			{"id": "w-date", "node_id": "n-date", "label": "When"},
			{"id": "w-note", "node_id": "n-note", "label": "Internal", "visible": false}
		],
		"cards": [
			{"cardid": "c2", "name": "Phase", "cards": [
				{"cardid": "c3", "name": "Detail"}
			]}
		]
	},
	"datatypes": [
		{"datatype": "string", "defaultwidget_id": "10000000-0000-0000-0000-000000000001"},
		{"datatype": "date", "defaultwidget_id": "10000000-0000-0000-0000-000000000004"}
	]
}`

func testCard(t *testing.T) *card.Card {
	t.Helper()
	var attrs card.Attributes
	if err := json.Unmarshal([]byte(payload), &attrs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	c, err := card.New(attrs)
	if err != nil {
		t.Fatalf("card.New: %v", err)
	}
	return c
}

func TestRenderCardMarkdown(t *testing.T) {
	t.Parallel()

	md, err := RenderCardMarkdown(testCard(t), RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"# Site\n",
		"- ID: c1\n",
		"- Cardinality: n\n",
		"Describe the site.\n",
		"> **About sites**\n> Line one\n> Line two\n",
		`| 0 | Primary \| name | Name | string |  |`,
		"| 1 | When | Date | date |  |",
		"## Phase\n",
		"### Detail\n",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected markdown to contain %q; got:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Internal") {
		t.Fatalf("hidden widget should be left out; got:\n%s", md)
	}

	all, err := RenderCardMarkdown(testCard(t), RenderOptions{IncludeHidden: true, Shallow: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(all, "Internal") {
		t.Fatalf("expected hidden widget with IncludeHidden; got:\n%s", all)
	}
	if strings.Contains(all, "Phase") {
		t.Fatalf("expected nested cards left out when shallow; got:\n%s", all)
	}

	if _, err := RenderCardMarkdown(nil, RenderOptions{}); err == nil {
		t.Fatalf("expected error for nil card")
	}
}

func TestWriteCard_SingleAndSplit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := testCard(t)

	res, err := WriteCard(c, dir, WriteOptions{})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	want := filepath.Join(dir, "cards", "c1.md")
	if len(res.Written) != 1 || res.Written[0] != want {
		t.Fatalf("unexpected written: %v", res.Written)
	}
	if _, err := WriteCard(c, dir, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("expected exists error; got %v", err)
	}
	if _, err := WriteCard(c, dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	res, err = WriteCard(c, dir, WriteOptions{Split: true})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(res.Written) != 4 {
		t.Fatalf("expected index + 3 pages; got %v", res.Written)
	}
	index, err := os.ReadFile(filepath.Join(dir, "cards", "c1", "index.md"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(index), "- [Site](c1.md)\n  - [Phase](c2.md)\n    - [Detail](c3.md)\n") {
		t.Fatalf("unexpected index:\n%s", index)
	}
	page, err := os.ReadFile(filepath.Join(dir, "cards", "c1", "c2.md"))
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if strings.Contains(string(page), "Detail") {
		t.Fatalf("split pages should not include nested cards:\n%s", page)
	}

	if _, err := WriteCard(c, "", WriteOptions{}); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

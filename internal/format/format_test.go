package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	CardID      string   `json:"cardid"`
	ComponentID string   `json:"component_id"`
	SortOrder   int      `json:"sortorder"`
	Visible     bool     `json:"visible"`
	Ratio       float64  `json:"ratio"`
	Tags        []string `json:"tags"`
	Parent      *string  `json:"parent"`
}

func TestWrite(t *testing.T) {
	t.Parallel()
	v := sample{CardID: "c1", ComponentID: "comp", SortOrder: 2, Visible: true, Ratio: 0.5, Tags: []string{"a"}}

	tests := []struct {
		format string
		pretty bool
		want   string
	}{
		{format: "", want: `{"cardid":"c1","component_id":"comp","sortorder":2,"visible":true,"ratio":0.5,"tags":["a"],"parent":null}` + "\n"},
		{format: "edn", want: `{:cardid "c1" :component-id "comp" :parent nil :ratio 0.5 :sortorder 2 :tags ["a"] :visible true}` + "\n"},
		{format: "edn", pretty: true, want: "{\n  :cardid \"c1\"\n  :component-id \"comp\"\n  :parent nil\n  :ratio 0.5\n  :sortorder 2\n  :tags [\n    \"a\"\n  ]\n  :visible true\n}\n"},
		{format: "yaml", want: "cardid: c1\ncomponent_id: comp\nparent: null\nratio: 0.5\nsortorder: 2\ntags:\n  - a\nvisible: true\n"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		if err := Write(&buf, v, tc.format, tc.pretty); err != nil {
			t.Fatalf("Write(%q): %v", tc.format, err)
		}
		if got := buf.String(); got != tc.want {
			t.Fatalf("Write(%q, pretty=%v)=\n%s\nwant\n%s", tc.format, tc.pretty, got, tc.want)
		}
	}
}

func TestWrite_EmptyCollectionsAndUnknownFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteEDN(&buf, map[string]any{"cards": []any{}, "data": map[string]any{}}, true); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	if got, want := buf.String(), "{\n  :cards []\n  :data {}\n}\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	err := Write(&buf, 1, "xml", false)
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

package mutate

import (
	"encoding/json"
	"errors"
	"testing"

	"resource-cards/internal/card"
	"resource-cards/internal/model"
)

func strPtr(s string) *string { return &s }

func newTree(t *testing.T) *card.Card {
	t.Helper()
	raw := `{
		"cardid": "root",
		"name": "Root",
		"cards": [
			{"cardid": "a", "name": "A", "sortorder": 0},
			{"cardid": "b", "name": "B", "sortorder": 1, "cards": [{"cardid": "b1", "name": "B1"}]},
			{"cardid": "c", "name": "C", "sortorder": 2}
		],
		"nodes": [
			{"nodeid": "n1", "name": "first", "datatype": "string"},
			{"nodeid": "n2", "name": "second", "datatype": "string"},
			{"nodeid": "n3", "name": "third", "datatype": "string"}
		]
	}`
	var data map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	c, err := card.New(card.Attributes{
		Data:      data,
		Datatypes: []model.Datatype{{Datatype: "string", DefaultWidgetID: strPtr("w-text")}},
	})
	if err != nil {
		t.Fatalf("card.New: %v", err)
	}
	return c
}

func childIDs(c *card.Card) []string {
	var out []string
	for _, k := range c.Cards().Items() {
		out = append(out, k.ID())
	}
	return out
}

func assertPositional(t *testing.T, c *card.Card) {
	t.Helper()
	for i, k := range c.Cards().Items() {
		if got := k.SortOrder().Get(); got != i {
			t.Fatalf("card %s sortorder=%d, want %d", k.ID(), got, i)
		}
		assertPositional(t, k)
	}
	for i, w := range c.Widgets().Items() {
		if got := w.SortOrder().Get(); got != i {
			t.Fatalf("widget %s sortorder=%d, want %d", w.Node().NodeID(), got, i)
		}
	}
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInsertCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		parent string
		data   string
		index  int
		want   []string
	}{
		{name: "front", parent: "root", data: `{"cardid":"x"}`, index: 0, want: []string{"x", "a", "b", "c"}},
		{name: "middle", parent: "root", data: `{"cardid":"x"}`, index: 2, want: []string{"a", "b", "x", "c"}},
		{name: "out of range appends", parent: "root", data: `{"cardid":"x"}`, index: 99, want: []string{"a", "b", "c", "x"}},
		{name: "nested", parent: "b", data: `{"cardid":"x"}`, index: -1, want: []string{"b1", "x"}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root := newTree(t)
			var data map[string]json.RawMessage
			_ = json.Unmarshal([]byte(tc.data), &data)

			res, err := InsertCard(root, tc.parent, data, tc.index)
			if err != nil {
				t.Fatalf("InsertCard: %v", err)
			}
			if !res.Changed || res.Card.ID() != "x" {
				t.Fatalf("unexpected result: %+v", res)
			}
			parent, _ := root.Find(tc.parent)
			if got := childIDs(parent); !equalIDs(got, tc.want) {
				t.Fatalf("children=%v, want %v", got, tc.want)
			}
			assertPositional(t, root)
			if !root.Dirty() {
				t.Fatalf("expected root dirty after insert")
			}
		})
	}
}

func TestInsertCard_AssignsIDAndRejectsDuplicates(t *testing.T) {
	t.Parallel()
	root := newTree(t)

	res, err := InsertCard(root, "root", nil, -1)
	if err != nil {
		t.Fatalf("InsertCard: %v", err)
	}
	if res.Card.ID() == "" {
		t.Fatalf("expected generated card id")
	}

	dup := map[string]json.RawMessage{"cardid": json.RawMessage(`"b1"`)}
	if _, err := InsertCard(root, "root", dup, 0); err == nil {
		t.Fatalf("expected duplicate id error")
	}

	var nf NotFoundError
	if _, err := InsertCard(root, "missing", nil, 0); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRemoveCard(t *testing.T) {
	t.Parallel()
	root := newTree(t)

	res, err := RemoveCard(root, "a")
	if err != nil {
		t.Fatalf("RemoveCard: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected changed=true")
	}
	if got := childIDs(root); !equalIDs(got, []string{"b", "c"}) {
		t.Fatalf("children=%v", got)
	}
	assertPositional(t, root)

	if _, err := RemoveCard(root, "root"); err == nil {
		t.Fatalf("expected error removing root")
	}
	if _, err := RemoveCard(root, "a"); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestMoveCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		card      string
		newParent string
		index     int
		parent    string
		want      []string
		changed   bool
	}{
		{name: "reorder to front", card: "c", index: 0, parent: "root", want: []string{"c", "a", "b"}, changed: true},
		{name: "reorder to end", card: "a", index: -1, parent: "root", want: []string{"b", "c", "a"}, changed: true},
		{name: "same spot", card: "b", index: 1, parent: "root", want: []string{"a", "b", "c"}},
		{name: "reparent", card: "a", newParent: "b", index: 0, parent: "b", want: []string{"a", "b1"}, changed: true},
		{name: "lift to root", card: "b1", newParent: "root", index: 1, parent: "root", want: []string{"a", "b1", "b", "c"}, changed: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root := newTree(t)
			res, err := MoveCard(root, tc.card, tc.newParent, tc.index)
			if err != nil {
				t.Fatalf("MoveCard: %v", err)
			}
			if res.Changed != tc.changed {
				t.Fatalf("changed=%v, want %v", res.Changed, tc.changed)
			}
			parent, _ := root.Find(tc.parent)
			if got := childIDs(parent); !equalIDs(got, tc.want) {
				t.Fatalf("children=%v, want %v", got, tc.want)
			}
			assertPositional(t, root)
		})
	}
}

func TestMoveCard_RejectsCycles(t *testing.T) {
	t.Parallel()
	root := newTree(t)
	if _, err := MoveCard(root, "b", "b1", 0); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	if _, err := MoveCard(root, "b", "b", 0); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	if _, err := MoveCard(root, "root", "", 0); err == nil {
		t.Fatalf("expected error moving root")
	}
}

func TestMoveWidget(t *testing.T) {
	t.Parallel()
	root := newTree(t)

	res, err := MoveWidget(root, "root", 0, 2)
	if err != nil {
		t.Fatalf("MoveWidget: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected changed=true")
	}
	var got []string
	for _, w := range root.Widgets().Items() {
		got = append(got, w.Node().NodeID())
	}
	if !equalIDs(got, []string{"n2", "n3", "n1"}) {
		t.Fatalf("widgets=%v", got)
	}
	assertPositional(t, root)

	if _, err := MoveWidget(root, "root", 0, 9); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestSetCardName(t *testing.T) {
	t.Parallel()
	root := newTree(t)

	res, err := SetCardName(root, "b1", "Renamed")
	if err != nil {
		t.Fatalf("SetCardName: %v", err)
	}
	if !res.Changed || res.Card.Name().Get() != "Renamed" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !root.Dirty() {
		t.Fatalf("expected dirty after nested rename")
	}

	res, err = SetCardName(root, "b1", "Renamed")
	if err != nil || res.Changed {
		t.Fatalf("expected no-op, got changed=%v err=%v", res.Changed, err)
	}
	if _, err := SetCardName(root, "b1", "  "); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

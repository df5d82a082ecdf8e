package card

import (
	"bytes"
	"encoding/json"
	"sort"

	"resource-cards/internal/observable"
)

type prop interface {
	decode(raw json.RawMessage) error
	encode() (any, bool)
	defined() bool
	clear()
	subscribe(fn func()) func()
}

type valueProp[T any] struct {
	v *observable.Value[T]
}

// decode sets the value; JSON null leaves the property undefined.
func (p valueProp[T]) decode(raw json.RawMessage) error {
	if isNull(raw) {
		if p.v.Defined() {
			p.v.Clear()
		}
		return nil
	}
	return decodeInto(raw, p.v)
}

func (p valueProp[T]) encode() (any, bool) {
	if !p.v.Defined() {
		return nil, false
	}
	return p.v.Get(), true
}

func (p valueProp[T]) defined() bool { return p.v.Defined() }
func (p valueProp[T]) clear()        { p.v.Clear() }

func (p valueProp[T]) subscribe(fn func()) func() {
	return p.v.Subscribe(func(T) { fn() })
}

type namedProp struct {
	key  string
	prop prop
}

func (c *Card) scalars() []namedProp {
	return []namedProp{
		{"cardid", valueProp[string]{c.cardID}},
		{"name", valueProp[string]{c.name}},
		{"instructions", valueProp[string]{c.instructions}},
		{"helptext", valueProp[string]{c.helpText}},
		{"helpenabled", valueProp[bool]{c.helpEnabled}},
		{"helptitle", valueProp[string]{c.helpTitle}},
		{"helpactive", valueProp[bool]{c.helpActive}},
		{"cardinality", valueProp[string]{c.cardinality}},
		{"visible", valueProp[bool]{c.visible}},
		{"active", valueProp[bool]{c.active}},
		{"ontologyproperty", valueProp[string]{c.ontologyProperty}},
		{"sortorder", valueProp[int]{c.sortOrder}},
		{"disabled", valueProp[bool]{c.disabled}},
		{"component_id", valueProp[string]{c.componentID}},
	}
}

// Serialize returns the card as a JSON-compatible map.
//
// The datatype lookup, tiles and ontology_properties are not included. The
// "nodes" key is derived from the widgets, so nodes without a widget are not
// written back.
func (c *Card) Serialize() map[string]any {
	out := make(map[string]any, len(c.extensions)+18)
	for k, v := range c.extensions {
		out[k] = v
	}
	for _, p := range c.scalars() {
		if v, ok := p.prop.encode(); ok {
			out[p.key] = v
		}
	}

	children := c.cards.Items()
	cards := make([]any, 0, len(children))
	for _, child := range children {
		cards = append(cards, child.Serialize())
	}
	out["cards"] = cards

	ws := c.widgets.Items()
	widgets := make([]any, 0, len(ws))
	nodes := make([]any, 0, len(ws))
	for _, w := range ws {
		widgets = append(widgets, w.Serialize())
		nodes = append(nodes, w.node.Serialize())
	}
	out["widgets"] = widgets
	out["nodes"] = nodes
	return out
}

func (c *Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Serialize())
}

func decodeInto[T any](raw json.RawMessage, v *observable.Value[T]) error {
	var x T
	if err := json.Unmarshal(raw, &x); err != nil {
		return err
	}
	v.Set(x)
	return nil
}

// decodeArray decodes a JSON array; null decodes to an empty slice.
func decodeArray(raw json.RawMessage, dst *[]map[string]json.RawMessage) error {
	if isNull(raw) {
		*dst = nil
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func cloneRaw(in map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

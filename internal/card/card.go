// Package card models a tree of editable cards: child cards, the nodes (field
// definitions) they collect, and one widget per node whose datatype declares a
// default control. A Card keeps a snapshot of its last saved serialization so
// callers can ask whether it is dirty and reset unsaved edits.
package card

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync/atomic"

	"resource-cards/internal/model"
	"resource-cards/internal/observable"
)

// Attributes is the construction payload: {data: {...}, datatypes: [...]}.
type Attributes = model.CardPayload

type Option func(*Card)

// WithPersister sets the save target. Child cards inherit it.
func WithPersister(p Persister) Option {
	return func(c *Card) { c.persister = p }
}

type Card struct {
	cardID           *observable.Value[string]
	name             *observable.Value[string]
	instructions     *observable.Value[string]
	helpText         *observable.Value[string]
	helpEnabled      *observable.Value[bool]
	helpTitle        *observable.Value[string]
	helpActive       *observable.Value[bool]
	cardinality      *observable.Value[string]
	visible          *observable.Value[bool]
	active           *observable.Value[bool]
	ontologyProperty *observable.Value[string]
	sortOrder        *observable.Value[int]
	disabled         *observable.Value[bool]
	componentID      *observable.Value[string]

	cards   *observable.List[*Card]
	nodes   *observable.List[*Node]
	widgets *observable.List[*Widget]

	tiles              any
	ontologyProperties any
	extensions         map[string]json.RawMessage

	lookup    DatatypeLookup
	datatypes []model.Datatype

	lastSaved []byte
	saving    atomic.Bool
	persister Persister
	opts      []Option

	changeSubs  []func()
	childUnsubs []func()
}

// New builds a card from attrs and captures the result as the last saved state.
func New(attrs Attributes, opts ...Option) (*Card, error) {
	c := &Card{
		cardID:           observable.Undefined[string](),
		name:             observable.Undefined[string](),
		instructions:     observable.Undefined[string](),
		helpText:         observable.Undefined[string](),
		helpEnabled:      observable.Undefined[bool](),
		helpTitle:        observable.Undefined[string](),
		helpActive:       observable.NewValue(false),
		cardinality:      observable.Undefined[string](),
		visible:          observable.Undefined[bool](),
		active:           observable.Undefined[bool](),
		ontologyProperty: observable.Undefined[string](),
		sortOrder:        observable.Undefined[int](),
		disabled:         observable.Undefined[bool](),
		componentID:      observable.Undefined[string](),
		cards:            observable.NewList[*Card](),
		nodes:            observable.NewList[*Node](),
		widgets:          observable.NewList[*Widget](),
		extensions:       map[string]json.RawMessage{},
		opts:             opts,
	}
	for _, o := range opts {
		o(c)
	}
	c.wire()
	if err := c.parse(attrs); err != nil {
		return nil, err
	}
	return c, nil
}

// wire registers the listeners that keep sortorder equal to position and
// forward change notifications from children and widgets.
func (c *Card) wire() {
	c.cards.Subscribe(func(cards []*Card) {
		for _, u := range c.childUnsubs {
			u()
		}
		c.childUnsubs = c.childUnsubs[:0]
		for i, child := range cards {
			child.sortOrder.Set(i)
			c.childUnsubs = append(c.childUnsubs, child.OnChange(c.changed))
		}
		c.changed()
	})
	var widgetUnsubs []func()
	c.widgets.Subscribe(func(widgets []*Widget) {
		for _, u := range widgetUnsubs {
			u()
		}
		widgetUnsubs = widgetUnsubs[:0]
		for i, w := range widgets {
			w.sortOrder.Set(i)
			widgetUnsubs = append(widgetUnsubs, w.subscribe(c.changed))
		}
		c.changed()
	})
	c.nodes.Subscribe(func([]*Node) { c.changed() })
	for _, p := range c.scalars() {
		p.prop.subscribe(c.changed)
	}
}

func (c *Card) parse(attrs Attributes) error {
	c.datatypes = append([]model.Datatype(nil), attrs.Datatypes...)
	c.lookup = NewDatatypeLookup(c.datatypes)

	scalars := map[string]prop{}
	for _, p := range c.scalars() {
		scalars[p.key] = p.prop
	}

	for _, key := range sortedKeys(attrs.Data) {
		raw := attrs.Data[key]
		switch key {
		case "cards":
			if err := c.parseCards(raw); err != nil {
				return err
			}
		case "nodes":
			if err := c.parseNodes(raw, attrs.Data); err != nil {
				return err
			}
		case "widgets":
			// Consumed while parsing nodes.
		case "ontology_properties", "tiles":
			var v any
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &v); err != nil {
					return fmt.Errorf("card %s: %w", key, err)
				}
			}
			if key == "tiles" {
				c.tiles = v
			} else {
				c.ontologyProperties = v
			}
		default:
			if p, ok := scalars[key]; ok {
				if err := p.decode(raw); err != nil {
					return fmt.Errorf("card %s: %w", key, err)
				}
				continue
			}
			c.extensions[key] = append(json.RawMessage(nil), raw...)
			c.changed()
		}
	}

	b, err := json.Marshal(c.Serialize())
	if err != nil {
		return err
	}
	c.lastSaved = b
	return nil
}

func (c *Card) parseCards(raw json.RawMessage) error {
	var rows []map[string]json.RawMessage
	if err := decodeArray(raw, &rows); err != nil {
		return fmt.Errorf("card cards: %w", err)
	}
	type keyed struct {
		order   int
		ordered bool
		data    map[string]json.RawMessage
	}
	ks := make([]keyed, 0, len(rows))
	for _, row := range rows {
		k := keyed{data: row}
		if v, ok := row["sortorder"]; ok && !isNull(v) {
			if err := json.Unmarshal(v, &k.order); err != nil {
				return fmt.Errorf("card cards sortorder: %w", err)
			}
			k.ordered = true
		}
		ks = append(ks, k)
	}
	sort.SliceStable(ks, func(i, j int) bool {
		return compareOrder(ks[i].order, ks[i].ordered, ks[j].order, ks[j].ordered) < 0
	})

	children := make([]*Card, 0, len(ks))
	for _, k := range ks {
		child, err := New(Attributes{Data: k.data, Datatypes: c.datatypes}, c.opts...)
		if err != nil {
			return err
		}
		children = append(children, child)
	}
	c.cards.Replace(children)
	return nil
}

func (c *Card) parseNodes(raw json.RawMessage, data map[string]json.RawMessage) error {
	var rows []map[string]json.RawMessage
	if err := decodeArray(raw, &rows); err != nil {
		return fmt.Errorf("card nodes: %w", err)
	}
	var stored []map[string]json.RawMessage
	if w, ok := data["widgets"]; ok {
		if err := decodeArray(w, &stored); err != nil {
			return fmt.Errorf("card widgets: %w", err)
		}
	}
	disabled := false
	if d, ok := data["disabled"]; ok && !isNull(d) {
		if err := json.Unmarshal(d, &disabled); err != nil {
			return fmt.Errorf("card disabled: %w", err)
		}
	}

	nodes := make([]*Node, 0, len(rows))
	widgets := []*Widget{}
	for _, row := range rows {
		n, err := newNode(row)
		if err != nil {
			return err
		}
		// A datatype missing from the lookup means no default control.
		if widgetID, ok := c.lookup.DefaultWidget(n.Datatype()); ok {
			w, err := newWidget(findWidgetRow(stored, n.NodeID()), n, c, widgetID, disabled)
			if err != nil {
				return err
			}
			n.widget = w
			widgets = append(widgets, w)
		}
		nodes = append(nodes, n)
	}
	c.nodes.Replace(nodes)

	sort.SliceStable(widgets, func(i, j int) bool {
		a, b := widgets[i].sortOrder, widgets[j].sortOrder
		return compareOrder(a.Get(), a.Defined(), b.Get(), b.Defined()) < 0
	})
	c.widgets.Replace(widgets)
	return nil
}

func findWidgetRow(rows []map[string]json.RawMessage, nodeID string) map[string]json.RawMessage {
	for _, row := range rows {
		var id string
		if raw, ok := row["node_id"]; ok && json.Unmarshal(raw, &id) == nil && id == nodeID {
			return row
		}
	}
	return nil
}

// compareOrder orders by sortorder; entries without one sort after those with one.
func compareOrder(a int, aok bool, b int, bok bool) int {
	switch {
	case aok && bok:
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	case aok:
		return -1
	case bok:
		return 1
	}
	return 0
}

// ID returns the card id.
func (c *Card) ID() string { return c.cardID.Get() }

func (c *Card) CardID() *observable.Value[string]           { return c.cardID }
func (c *Card) Name() *observable.Value[string]             { return c.name }
func (c *Card) Instructions() *observable.Value[string]     { return c.instructions }
func (c *Card) HelpText() *observable.Value[string]         { return c.helpText }
func (c *Card) HelpEnabled() *observable.Value[bool]        { return c.helpEnabled }
func (c *Card) HelpTitle() *observable.Value[string]        { return c.helpTitle }
func (c *Card) HelpActive() *observable.Value[bool]         { return c.helpActive }
func (c *Card) Cardinality() *observable.Value[string]      { return c.cardinality }
func (c *Card) Visible() *observable.Value[bool]            { return c.visible }
func (c *Card) Active() *observable.Value[bool]             { return c.active }
func (c *Card) OntologyProperty() *observable.Value[string] { return c.ontologyProperty }
func (c *Card) SortOrder() *observable.Value[int]           { return c.sortOrder }
func (c *Card) Disabled() *observable.Value[bool]           { return c.disabled }
func (c *Card) ComponentID() *observable.Value[string]      { return c.componentID }

func (c *Card) Cards() *observable.List[*Card]     { return c.cards }
func (c *Card) Nodes() *observable.List[*Node]     { return c.nodes }
func (c *Card) Widgets() *observable.List[*Widget] { return c.widgets }

func (c *Card) Tiles() any              { return c.tiles }
func (c *Card) OntologyProperties() any { return c.ontologyProperties }
func (c *Card) Datatypes() DatatypeLookup {
	return c.lookup
}

// Extension returns an unrecognized payload key kept verbatim.
func (c *Card) Extension(key string) (json.RawMessage, bool) {
	v, ok := c.extensions[key]
	return v, ok
}

func (c *Card) SetExtension(key string, v json.RawMessage) {
	c.extensions[key] = append(json.RawMessage(nil), v...)
	c.changed()
}

// IsContainer reports whether the card has child cards.
func (c *Card) IsContainer() bool {
	return c.cards.Len() > 0
}

// NewChild builds a detached card with this card's datatypes and options.
// The caller decides where to insert it.
func (c *Card) NewChild(data map[string]json.RawMessage) (*Card, error) {
	return New(Attributes{Data: data, Datatypes: c.datatypes}, c.opts...)
}

// Find returns the card with cardID in this subtree (including c) and its parent.
func (c *Card) Find(cardID string) (found *Card, parent *Card) {
	if c.ID() == cardID {
		return c, nil
	}
	for _, child := range c.cards.Items() {
		if f, p := child.Find(cardID); f != nil {
			if p == nil {
				p = c
			}
			return f, p
		}
	}
	return nil, nil
}

// OnChange registers fn to run after any property of the card, its children
// or its widgets changes. It returns a func that removes fn.
func (c *Card) OnChange(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	c.changeSubs = append(c.changeSubs, fn)
	idx := len(c.changeSubs) - 1
	return func() {
		if idx < len(c.changeSubs) {
			c.changeSubs[idx] = nil
		}
	}
}

func (c *Card) changed() {
	for _, fn := range c.changeSubs {
		if fn != nil {
			fn()
		}
	}
}

// Dirty reports whether overlaying the current serialization onto the last
// saved snapshot changes the snapshot. Keys missing from the current state do
// not count as changes.
func (c *Card) Dirty() bool {
	var snapshot map[string]any
	if err := json.Unmarshal(c.lastSaved, &snapshot); err != nil {
		return true
	}
	before, err := json.Marshal(snapshot)
	if err != nil {
		return true
	}
	cur, err := json.Marshal(c.Serialize())
	if err != nil {
		return true
	}
	var current map[string]any
	if err := json.Unmarshal(cur, &current); err != nil {
		return true
	}
	for k, v := range current {
		snapshot[k] = v
	}
	after, err := json.Marshal(snapshot)
	if err != nil {
		return true
	}
	return !bytes.Equal(before, after)
}

// LastSaved returns a copy of the last saved serialization.
func (c *Card) LastSaved() json.RawMessage {
	return append(json.RawMessage(nil), c.lastSaved...)
}

// Reset discards unsaved edits by re-parsing the last saved snapshot.
func (c *Card) Reset() error {
	var data map[string]json.RawMessage
	if err := json.Unmarshal(c.lastSaved, &data); err != nil {
		return fmt.Errorf("card reset: %w", err)
	}
	// Properties first set after the snapshot was taken are not in it.
	for _, p := range c.scalars() {
		if _, ok := data[p.key]; !ok && p.prop.defined() {
			p.prop.clear()
		}
	}
	for k := range c.extensions {
		if _, ok := data[k]; !ok {
			delete(c.extensions, k)
		}
	}
	return c.parse(Attributes{Data: data, Datatypes: c.datatypes})
}

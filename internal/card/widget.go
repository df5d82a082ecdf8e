package card

import (
	"encoding/json"
	"fmt"

	"resource-cards/internal/observable"
)

// Widget is the editable control for one node. It references its node and
// the card it is displayed in; it owns neither.
type Widget struct {
	id       string
	widgetID string
	config   json.RawMessage
	extra    map[string]json.RawMessage

	label     *observable.Value[string]
	visible   *observable.Value[bool]
	sortOrder *observable.Value[int]
	disabled  *observable.Value[bool]

	node *Node
	card *Card
}

var widgetKnownKeys = map[string]bool{
	"id":        true,
	"node_id":   true,
	"card_id":   true,
	"widget_id": true,
	"config":    true,
	"label":     true,
	"visible":   true,
	"sortorder": true,
	"disabled":  true,
}

// newWidget builds a widget for node. data may be nil when the card payload
// carries no stored widget row for the node yet.
func newWidget(data map[string]json.RawMessage, node *Node, c *Card, defaultWidgetID string, disabled bool) (*Widget, error) {
	w := &Widget{
		widgetID:  defaultWidgetID,
		extra:     map[string]json.RawMessage{},
		label:     observable.NewValue(node.Name()),
		visible:   observable.NewValue(true),
		sortOrder: observable.Undefined[int](),
		disabled:  observable.NewValue(disabled),
		node:      node,
		card:      c,
	}
	for k, raw := range data {
		if !widgetKnownKeys[k] {
			w.extra[k] = append(json.RawMessage(nil), raw...)
			continue
		}
		if isNull(raw) {
			continue
		}
		var err error
		switch k {
		case "id":
			err = json.Unmarshal(raw, &w.id)
		case "widget_id":
			err = json.Unmarshal(raw, &w.widgetID)
		case "config":
			w.config = append(json.RawMessage(nil), raw...)
		case "label":
			err = decodeInto(raw, w.label)
		case "visible":
			err = decodeInto(raw, w.visible)
		case "sortorder":
			err = decodeInto(raw, w.sortOrder)
		case "node_id", "card_id", "disabled":
			// Derived from the bound node and owning card.
		}
		if err != nil {
			return nil, fmt.Errorf("widget %s: %w", k, err)
		}
	}
	return w, nil
}

func (w *Widget) ID() string       { return w.id }
func (w *Widget) WidgetID() string { return w.widgetID }
func (w *Widget) Node() *Node      { return w.node }
func (w *Widget) Card() *Card      { return w.card }

func (w *Widget) Label() *observable.Value[string] { return w.label }
func (w *Widget) Visible() *observable.Value[bool] { return w.visible }
func (w *Widget) SortOrder() *observable.Value[int] { return w.sortOrder }
func (w *Widget) Disabled() *observable.Value[bool] { return w.disabled }

func (w *Widget) Serialize() map[string]any {
	out := make(map[string]any, len(w.extra)+9)
	for k, v := range w.extra {
		out[k] = v
	}
	if w.id != "" {
		out["id"] = w.id
	}
	out["node_id"] = w.node.NodeID()
	if w.card != nil && w.card.cardID.Defined() {
		out["card_id"] = w.card.cardID.Get()
	}
	out["widget_id"] = w.widgetID
	if len(w.config) > 0 {
		out["config"] = w.config
	}
	out["label"] = w.label.Get()
	out["visible"] = w.visible.Get()
	if w.sortOrder.Defined() {
		out["sortorder"] = w.sortOrder.Get()
	}
	out["disabled"] = w.disabled.Get()
	return out
}

func (w *Widget) subscribe(fn func()) func() {
	unsubs := []func(){
		w.label.Subscribe(func(string) { fn() }),
		w.visible.Subscribe(func(bool) { fn() }),
		w.sortOrder.Subscribe(func(int) { fn() }),
		w.disabled.Subscribe(func(bool) { fn() }),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

package card

import (
	"encoding/json"
	"fmt"
)

// Node is a field definition. Keys other than nodeid/name/datatype are kept
// verbatim so the node serializes back unchanged.
type Node struct {
	nodeID   string
	name     string
	datatype string
	source   map[string]json.RawMessage

	widget *Widget
}

func newNode(source map[string]json.RawMessage) (*Node, error) {
	n := &Node{source: cloneRaw(source)}
	for key, dst := range map[string]*string{"nodeid": &n.nodeID, "name": &n.name, "datatype": &n.datatype} {
		raw, ok := source[key]
		if !ok || isNull(raw) {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("node %s: %w", key, err)
		}
	}
	return n, nil
}

func (n *Node) NodeID() string   { return n.nodeID }
func (n *Node) Name() string     { return n.name }
func (n *Node) Datatype() string { return n.datatype }

// Widget returns the node's editable control, or nil when its datatype has none.
func (n *Node) Widget() *Widget { return n.widget }

func (n *Node) Serialize() map[string]any {
	out := make(map[string]any, len(n.source))
	for k, v := range n.source {
		out[k] = v
	}
	return out
}

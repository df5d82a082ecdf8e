package related

import (
	"context"
	"errors"

	"resource-cards/internal/model"
)

const (
	ClassViewCreated = "view-created"
	ClassGraphActive = "graph-active"
)

// Target identifies the resource a graph panel is drawn for.
type Target struct {
	ResourceID string
	Name       string
	GraphID    string
}

// Panel is the area a relationship graph is drawn into.
type Panel interface {
	Target() Target
	HasClass(name string) bool
	AddClass(name string)
	ToggleClass(name string)
	HideNodeInfo()
	ToggleVisible()
	SetGraph(g *Graph)
}

// GraphFactory builds the graph view for a panel.
type GraphFactory func(ctx context.Context, t Target) (*Graph, error)

// ShowGraph builds the panel's graph the first time it is shown, then toggles
// the panel open or closed.
func (m *Manager) ShowGraph(ctx context.Context, p Panel) error {
	if !p.HasClass(ClassViewCreated) {
		if m.graphs == nil {
			return errors.New("related: no graph factory configured")
		}
		g, err := m.graphs(ctx, p.Target())
		if err != nil {
			return err
		}
		p.SetGraph(g)
		p.AddClass(ClassViewCreated)
	}
	p.HideNodeInfo()
	p.ToggleClass(ClassGraphActive)
	p.ToggleVisible()
	return nil
}

// Lister lists the relationships touching a resource.
type Lister interface {
	RelatedTo(ctx context.Context, resourceID string) ([]model.Relationship, error)
}

// Graph is the one-hop neighbourhood of a resource.
type Graph struct {
	Root  Target
	Edges []model.Relationship
}

// Neighbours returns the resource ids directly related to the root, in edge order.
func (g *Graph) Neighbours() []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range g.Edges {
		other := e.To
		if other == g.Root.ResourceID {
			other = e.From
		}
		if other == g.Root.ResourceID || seen[other] {
			continue
		}
		seen[other] = true
		out = append(out, other)
	}
	return out
}

// NewGraphFactory builds graphs from l.
func NewGraphFactory(l Lister) GraphFactory {
	return func(ctx context.Context, t Target) (*Graph, error) {
		edges, err := l.RelatedTo(ctx, t.ResourceID)
		if err != nil {
			return nil, err
		}
		return &Graph{Root: t, Edges: edges}, nil
	}
}

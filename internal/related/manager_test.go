package related

import (
	"context"
	"errors"
	"testing"

	"resource-cards/internal/config"
	"resource-cards/internal/model"
	"resource-cards/internal/search"
)

type fakeCreator struct {
	reqs []model.RelationshipRequest
	err  error
}

func (f *fakeCreator) CreateRelationships(_ context.Context, req model.RelationshipRequest) ([]model.Relationship, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Relationship, 0, len(req.InstancesToRelate))
	for _, id := range req.InstancesToRelate {
		out = append(out, model.Relationship{RelationshipType: req.RelationshipType, From: req.RootResourceInstanceID, To: id})
	}
	return out, nil
}

func TestManager_Defaults(t *testing.T) {
	t.Parallel()
	m := NewManager(Options{Results: search.NewResults(nil), EditingInstanceID: "edit-1"})
	defer m.Close()

	if m.ShowRelatedProperties.Get() {
		t.Fatalf("expected related properties hidden by default")
	}
	if got := m.CurrentResource.Get(); got != "edit-1" {
		t.Fatalf("current=%q, want edit-1", got)
	}
	if got := m.Request().RelationshipType; got != config.DefaultRelationshipType {
		t.Fatalf("relationship type=%q", got)
	}
}

func TestManager_FollowsShowRelationships(t *testing.T) {
	t.Parallel()
	results := search.NewResults(nil)
	m := NewManager(Options{Results: results, EditingInstanceID: "edit-1"})

	results.ShowRelationships("other")
	if got := m.CurrentResource.Get(); got != "other" {
		t.Fatalf("current=%q, want other", got)
	}

	m.Close()
	results.ShowRelationships("ignored")
	if got := m.CurrentResource.Get(); got != "other" {
		t.Fatalf("closed manager still following: %q", got)
	}
}

func TestSaveRelationships_SuccessClearsCandidates(t *testing.T) {
	t.Parallel()
	results := search.NewResults(nil)
	results.Toggle("a")
	results.Toggle("b")
	creator := &fakeCreator{}
	m := NewManager(Options{Results: results, Creator: creator, EditingInstanceID: "root"})

	rels, err := m.SaveRelationships(context.Background())
	if err != nil {
		t.Fatalf("SaveRelationships: %v", err)
	}
	if len(rels) != 2 {
		t.Fatalf("rels=%d, want 2", len(rels))
	}
	if len(creator.reqs) != 1 {
		t.Fatalf("requests=%d, want 1", len(creator.reqs))
	}
	req := creator.reqs[0]
	if req.RelationshipType != "a9deade8-54c2-4683-8d76-a031c7301a47" || req.RootResourceInstanceID != "root" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if len(req.InstancesToRelate) != 2 || req.InstancesToRelate[0] != "a" || req.InstancesToRelate[1] != "b" {
		t.Fatalf("instances=%v", req.InstancesToRelate)
	}
	if got := results.RelationshipCandidates(); len(got) != 0 {
		t.Fatalf("candidates not cleared: %v", got)
	}
}

func TestSaveRelationships_FailureKeepsCandidates(t *testing.T) {
	t.Parallel()
	results := search.NewResults(nil)
	results.Toggle("a")
	boom := errors.New("boom")
	m := NewManager(Options{Results: results, Creator: &fakeCreator{err: boom}, EditingInstanceID: "root"})

	if _, err := m.SaveRelationships(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}
	if got := results.RelationshipCandidates(); len(got) != 1 {
		t.Fatalf("candidates=%v, want kept", got)
	}
}

func TestSaveRelationships_Guards(t *testing.T) {
	t.Parallel()

	creator := &fakeCreator{}
	m := NewManager(Options{Results: search.NewResults(nil), Creator: creator, EditingInstanceID: "root"})
	if _, err := m.SaveRelationships(context.Background()); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("err=%v, want ErrNoCandidates", err)
	}

	results := search.NewResults(nil)
	results.Toggle("a")
	m = NewManager(Options{Results: results, Creator: creator})
	if _, err := m.SaveRelationships(context.Background()); !errors.Is(err, ErrNoResource) {
		t.Fatalf("err=%v, want ErrNoResource", err)
	}
	if len(creator.reqs) != 0 {
		t.Fatalf("no request expected, got %d", len(creator.reqs))
	}
}

type fakeLister struct {
	calls int
	edges []model.Relationship
}

func (f *fakeLister) RelatedTo(context.Context, string) ([]model.Relationship, error) {
	f.calls++
	return f.edges, nil
}

func TestShowGraph_BuildsOncePerPanel(t *testing.T) {
	t.Parallel()
	lister := &fakeLister{edges: []model.Relationship{
		{From: "r", To: "a"},
		{From: "b", To: "r"},
		{From: "r", To: "a"},
	}}
	m := NewManager(Options{Graphs: NewGraphFactory(lister)})
	p := NewPanel(Target{ResourceID: "r", Name: "Root"})

	if err := m.ShowGraph(context.Background(), p); err != nil {
		t.Fatalf("ShowGraph: %v", err)
	}
	if !p.HasClass(ClassViewCreated) || !p.HasClass(ClassGraphActive) || !p.Visible || p.NodeInfoVisible {
		t.Fatalf("unexpected panel state after first show: %+v", p)
	}
	first := p.Graph
	if got := first.Neighbours(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("neighbours=%v", got)
	}

	if err := m.ShowGraph(context.Background(), p); err != nil {
		t.Fatalf("ShowGraph again: %v", err)
	}
	if lister.calls != 1 || p.Graph != first {
		t.Fatalf("graph rebuilt: calls=%d", lister.calls)
	}
	if p.HasClass(ClassGraphActive) || p.Visible {
		t.Fatalf("second show should toggle the panel closed")
	}
}

func TestShowGraph_NoFactory(t *testing.T) {
	t.Parallel()
	m := NewManager(Options{})
	if err := m.ShowGraph(context.Background(), NewPanel(Target{ResourceID: "r"})); err == nil {
		t.Fatalf("expected error without a graph factory")
	}
}

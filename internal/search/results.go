package search

import (
	"resource-cards/internal/model"
	"resource-cards/internal/observable"
)

// Results is the search pane state: the latest hits, the instances picked
// for relating and the resource whose relationships are being shown.
type Results struct {
	Hits       *observable.List[Hit]
	Candidates *observable.List[string]
	Showing    *observable.Value[string]

	resources []model.Resource
}

func NewResults(resources []model.Resource) *Results {
	return &Results{
		Hits:       observable.NewList[Hit](),
		Candidates: observable.NewList[string](),
		Showing:    observable.Undefined[string](),
		resources:  append([]model.Resource(nil), resources...),
	}
}

// SetResources swaps the searchable resource set.
func (r *Results) SetResources(resources []model.Resource) {
	r.resources = append([]model.Resource(nil), resources...)
}

// Search replaces Hits with the ranked matches for term.
func (r *Results) Search(term string, limit int) []Hit {
	hits := Rank(r.resources, term, limit)
	r.Hits.Replace(hits)
	return hits
}

// Toggle adds id to the candidates, or removes it if already present. It
// reports whether id is a candidate afterwards.
func (r *Results) Toggle(id string) bool {
	for i, c := range r.Candidates.Items() {
		if c == id {
			_, _ = r.Candidates.RemoveAt(i)
			return false
		}
	}
	r.Candidates.Append(id)
	return true
}

func (r *Results) RelationshipCandidates() []string {
	return r.Candidates.Items()
}

func (r *Results) ClearCandidates() {
	r.Candidates.RemoveAll()
}

// ShowRelationships selects id as the resource to show relationships for.
func (r *Results) ShowRelationships(id string) {
	r.Showing.Set(id)
}

// OnShowRelationships registers fn for ShowRelationships selections.
func (r *Results) OnShowRelationships(fn func(id string)) func() {
	return r.Showing.Subscribe(fn)
}

// Package related lets a user browse the relationships of a resource and
// relate a batch of picked instances to it.
package related

import (
	"context"
	"errors"
	"strings"

	"resource-cards/internal/config"
	"resource-cards/internal/logger"
	"resource-cards/internal/model"
	"resource-cards/internal/observable"
)

var (
	ErrNoCandidates = errors.New("no instances picked to relate")
	ErrNoResource   = errors.New("no current resource")
)

// SearchResults is the search pane collaborator: it owns the picked
// candidates and announces which resource to show relationships for.
type SearchResults interface {
	RelationshipCandidates() []string
	ClearCandidates()
	OnShowRelationships(fn func(resourceID string)) func()
}

// Creator submits a batch create request.
type Creator interface {
	CreateRelationships(ctx context.Context, req model.RelationshipRequest) ([]model.Relationship, error)
}

type Options struct {
	Results           SearchResults
	Creator           Creator
	Graphs            GraphFactory
	EditingInstanceID string
	// RelationshipType defaults to config.DefaultRelationshipType.
	RelationshipType string
	Log              *logger.Logger
}

type Manager struct {
	ShowRelatedProperties *observable.Value[bool]
	CurrentResource       *observable.Value[string]

	relType string
	results SearchResults
	creator Creator
	graphs  GraphFactory
	log     *logger.Logger
	unsub   func()
}

func NewManager(opts Options) *Manager {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if strings.TrimSpace(opts.RelationshipType) == "" {
		opts.RelationshipType = config.DefaultRelationshipType
	}
	m := &Manager{
		ShowRelatedProperties: observable.NewValue(false),
		CurrentResource:       observable.NewValue(opts.EditingInstanceID),
		relType:               opts.RelationshipType,
		results:               opts.Results,
		creator:               opts.Creator,
		graphs:                opts.Graphs,
		log:                   opts.Log.With("component", "RelatedResourcesManager"),
		unsub:                 func() {},
	}
	if m.results != nil {
		m.unsub = m.results.OnShowRelationships(func(id string) {
			m.CurrentResource.Set(id)
		})
	}
	return m
}

// Close stops following the search results.
func (m *Manager) Close() {
	m.unsub()
}

// Request builds the batch request for the current candidates.
func (m *Manager) Request() model.RelationshipRequest {
	var ids []string
	if m.results != nil {
		ids = m.results.RelationshipCandidates()
	}
	return model.RelationshipRequest{
		RelationshipType:       m.relType,
		InstancesToRelate:      ids,
		RootResourceInstanceID: m.CurrentResource.Get(),
	}
}

// SaveRelationships relates every picked candidate to the current resource.
// Candidates are cleared only when the request succeeds; failures are logged
// and returned without retrying.
func (m *Manager) SaveRelationships(ctx context.Context) ([]model.Relationship, error) {
	if m.creator == nil {
		return nil, errors.New("related: no creator configured")
	}
	req := m.Request()
	if strings.TrimSpace(req.RootResourceInstanceID) == "" {
		return nil, ErrNoResource
	}
	if len(req.InstancesToRelate) == 0 {
		return nil, ErrNoCandidates
	}

	rels, err := m.creator.CreateRelationships(ctx, req)
	if err != nil {
		m.log.Warn("save relationships failed", "root", req.RootResourceInstanceID, "candidates", len(req.InstancesToRelate), "error", err)
		return nil, err
	}
	m.log.Info("relationships saved", "root", req.RootResourceInstanceID, "created", len(rels))
	m.results.ClearCandidates()
	return rels, nil
}

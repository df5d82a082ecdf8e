package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resource-cards/internal/model"
)

// AddResource stores a resource instance. An empty id is assigned a new one;
// a non-empty graph id must name a stored graph.
func (s *Store) AddResource(ctx context.Context, r model.Resource) (model.Resource, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return model.Resource{}, fmt.Errorf("%w: missing resource name", ErrInvalid)
	}
	r.ResourceInstanceID = strings.TrimSpace(r.ResourceInstanceID)
	if r.ResourceInstanceID == "" {
		r.ResourceInstanceID = NewID()
	}
	if r.GraphID != "" {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM graphs WHERE graphid = ?`, r.GraphID).Scan(&n); err != nil {
			return model.Resource{}, err
		}
		if n == 0 {
			return model.Resource{}, NotFoundError{Kind: "graph", ID: r.GraphID}
		}
	}
	r.CreatedAt = time.UnixMilli(s.nowMs()).UTC()

	raw, err := json.Marshal(r)
	if err != nil {
		return model.Resource{}, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO resources(resourceinstanceid, graph_id, name, json, created_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		r.ResourceInstanceID, r.GraphID, r.Name, string(raw), r.CreatedAt.UnixMilli()); err != nil {
		return model.Resource{}, err
	}
	return r, nil
}

// ListResources lists resources, optionally limited to one graph.
func (s *Store) ListResources(ctx context.Context, graphID string) ([]model.Resource, error) {
	if graphID = strings.TrimSpace(graphID); graphID != "" {
		return readJSONRows[model.Resource](ctx, s.db, `SELECT json FROM resources WHERE graph_id = ? ORDER BY name, resourceinstanceid`, graphID)
	}
	return readJSONRows[model.Resource](ctx, s.db, `SELECT json FROM resources ORDER BY name, resourceinstanceid`)
}

// FindResource loads one resource instance.
func (s *Store) FindResource(ctx context.Context, id string) (model.Resource, error) {
	id = strings.TrimSpace(id)
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT json FROM resources WHERE resourceinstanceid = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Resource{}, NotFoundError{Kind: "resource", ID: id}
	}
	if err != nil {
		return model.Resource{}, err
	}
	var r model.Resource
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return model.Resource{}, err
	}
	return r, nil
}

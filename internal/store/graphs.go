package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"resource-cards/internal/model"
)

var slugRe = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// ValidSlug reports whether s may be used as a graph slug.
func ValidSlug(s string) bool {
	return slugRe.MatchString(s)
}

// CreateGraph stores a graph model. A nil slug is allowed; a set slug must be
// valid and unused.
func (s *Store) CreateGraph(ctx context.Context, g model.Graph) (model.Graph, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return model.Graph{}, fmt.Errorf("%w: missing graph name", ErrInvalid)
	}
	var slug sql.NullString
	if g.Slug != nil {
		v := strings.TrimSpace(*g.Slug)
		if !ValidSlug(v) {
			return model.Graph{}, ErrInvalidSlug
		}
		g.Slug = &v
		slug = sql.NullString{String: v, Valid: true}

		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM graphs WHERE slug = ?`, v).Scan(&n); err != nil {
			return model.Graph{}, err
		}
		if n > 0 {
			return model.Graph{}, ErrSlugTaken
		}
	}
	if g.GraphID = strings.TrimSpace(g.GraphID); g.GraphID == "" {
		g.GraphID = NewID()
	}
	g.CreatedAt = time.UnixMilli(s.nowMs()).UTC()

	raw, err := json.Marshal(g)
	if err != nil {
		return model.Graph{}, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO graphs(graphid, name, slug, json, created_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		g.GraphID, g.Name, slug, string(raw), g.CreatedAt.UnixMilli()); err != nil {
		return model.Graph{}, err
	}
	return g, nil
}

func (s *Store) ListGraphs(ctx context.Context) ([]model.Graph, error) {
	return readJSONRows[model.Graph](ctx, s.db, `SELECT json FROM graphs ORDER BY name, graphid`)
}

// GraphBySlug resolves a graph by its slug.
func (s *Store) GraphBySlug(ctx context.Context, slug string) (model.Graph, error) {
	slug = strings.TrimSpace(slug)
	gs, err := readJSONRows[model.Graph](ctx, s.db, `SELECT json FROM graphs WHERE slug = ?`, slug)
	if err != nil {
		return model.Graph{}, err
	}
	if len(gs) == 0 {
		return model.Graph{}, NotFoundError{Kind: "graph", ID: slug}
	}
	return gs[0], nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"resource-cards/internal/model"
)

// CreateRelationships relates every instance in req to the root instance in
// one transaction. Self relations and edges that already exist are skipped;
// the returned slice holds only the relationships created.
func (s *Store) CreateRelationships(ctx context.Context, req model.RelationshipRequest) ([]model.Relationship, error) {
	req.RelationshipType = strings.TrimSpace(req.RelationshipType)
	req.RootResourceInstanceID = strings.TrimSpace(req.RootResourceInstanceID)
	instances := make([]string, 0, len(req.InstancesToRelate))
	for _, id := range req.InstancesToRelate {
		if id = strings.TrimSpace(id); id != "" {
			instances = append(instances, id)
		}
	}
	if req.RelationshipType == "" || req.RootResourceInstanceID == "" || len(instances) == 0 {
		return nil, ErrEmptyRequest
	}

	out := []model.Relationship{}
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, id := range append([]string{req.RootResourceInstanceID}, instances...) {
			var n int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources WHERE resourceinstanceid = ?`, id).Scan(&n); err != nil {
				return err
			}
			if n == 0 {
				return NotFoundError{Kind: "resource", ID: id}
			}
		}

		created := time.UnixMilli(s.nowMs()).UTC()
		seen := map[string]bool{}
		for _, id := range instances {
			if id == req.RootResourceInstanceID || seen[id] {
				continue
			}
			seen[id] = true

			rel := model.Relationship{
				ID:               NewID(),
				RelationshipType: req.RelationshipType,
				From:             req.RootResourceInstanceID,
				To:               id,
				CreatedAt:        created,
			}
			raw, err := json.Marshal(rel)
			if err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO relationships(resourcexid, relationshiptype, resourceinstanceidfrom, resourceinstanceidto, json, created_at_unixms)
				VALUES(?, ?, ?, ?, ?, ?)`, rel.ID, rel.RelationshipType, rel.From, rel.To, string(raw), created.UnixMilli())
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				continue
			}
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("relationships created", "root", req.RootResourceInstanceID, "count", len(out))
	return out, nil
}

// RelatedTo lists relationships touching a resource in either direction,
// oldest first.
func (s *Store) RelatedTo(ctx context.Context, resourceID string) ([]model.Relationship, error) {
	resourceID = strings.TrimSpace(resourceID)
	if _, err := s.FindResource(ctx, resourceID); err != nil {
		return nil, err
	}
	return readJSONRows[model.Relationship](ctx, s.db, `SELECT json FROM relationships
		WHERE resourceinstanceidfrom = ? OR resourceinstanceidto = ?
		ORDER BY created_at_unixms, resourcexid`, resourceID, resourceID)
}

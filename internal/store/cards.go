package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"resource-cards/internal/model"
)

// Cards are stored one row per card; the "cards" array of a saved card is
// flattened into child rows (parent_id + sortorder) and reassembled on read.

type cardRow struct {
	cardID    string
	parentID  string
	sortOrder int
	name      string
	data      map[string]json.RawMessage
}

const subtreeCTE = `WITH RECURSIVE sub(cardid) AS (
	SELECT cardid FROM cards WHERE cardid = ?
	UNION ALL
	SELECT c.cardid FROM cards c JOIN sub ON c.parent_id = sub.cardid
)`

// SaveCard replaces the stored subtree rooted at cardID with body (a
// serialized card) and returns the stored tree. A card saved for the first
// time becomes a root card.
func (s *Store) SaveCard(ctx context.Context, cardID string, body []byte) (json.RawMessage, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, fmt.Errorf("%w: missing card id", ErrInvalid)
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: decode card: %v", ErrInvalid, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: card body must be a JSON object", ErrInvalid)
	}
	if raw, ok := data["cardid"]; ok {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil || id != cardID {
			return nil, ErrCardMismatch
		}
	} else {
		data["cardid"], _ = json.Marshal(cardID)
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		parentID := ""
		order := 0
		err := tx.QueryRowContext(ctx, `SELECT parent_id, sortorder FROM cards WHERE cardid = ?`, cardID).Scan(&parentID, &order)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// New root card: keep the order it was sent with.
			if raw, ok := data["sortorder"]; ok {
				_ = json.Unmarshal(raw, &order)
			}
		case err != nil:
			return err
		}
		if _, err := tx.ExecContext(ctx, subtreeCTE+` DELETE FROM cards WHERE cardid IN (SELECT cardid FROM sub)`, cardID); err != nil {
			return err
		}

		rows, err := flattenCard(parentID, order, data)
		if err != nil {
			return err
		}
		nowMs := s.nowMs()
		for _, r := range rows {
			raw, err := json.Marshal(r.data)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO cards(cardid, parent_id, sortorder, name, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
				r.cardID, r.parentID, r.sortOrder, r.name, string(raw), nowMs); err != nil {
				return fmt.Errorf("insert card %s: %w", r.cardID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("card saved", "cardid", cardID)

	tree, err := s.cardTree(ctx, cardID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// flattenCard walks a serialized card and its "cards" array depth first.
func flattenCard(parentID string, order int, data map[string]json.RawMessage) ([]cardRow, error) {
	row := cardRow{parentID: parentID, sortOrder: order, data: map[string]json.RawMessage{}}
	for k, v := range data {
		if k != "cards" {
			row.data[k] = v
		}
	}
	if err := json.Unmarshal(data["cardid"], &row.cardID); err != nil || strings.TrimSpace(row.cardID) == "" {
		return nil, fmt.Errorf("%w: every card needs a cardid", ErrInvalid)
	}
	if raw, ok := data["name"]; ok {
		_ = json.Unmarshal(raw, &row.name)
	}
	// The stored sortorder is positional.
	row.data["sortorder"], _ = json.Marshal(order)

	out := []cardRow{row}
	var children []map[string]json.RawMessage
	if raw, ok := data["cards"]; ok && len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &children); err != nil {
			return nil, fmt.Errorf("%w: card %s cards: %v", ErrInvalid, row.cardID, err)
		}
	}
	for i, child := range children {
		sub, err := flattenCard(row.cardID, i, child)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// cardTree loads the subtree rooted at cardID as card data with nested "cards".
func (s *Store) cardTree(ctx context.Context, cardID string) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, subtreeCTE+`
		SELECT cards.cardid, cards.parent_id, cards.sortorder, cards.json
		FROM cards JOIN sub ON cards.cardid = sub.cardid`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[string]*cardRow{}
	children := map[string][]*cardRow{}
	for rows.Next() {
		r := &cardRow{}
		var raw string
		if err := rows.Scan(&r.cardID, &r.parentID, &r.sortOrder, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &r.data); err != nil {
			return nil, fmt.Errorf("decode card %s: %w", r.cardID, err)
		}
		byID[r.cardID] = r
		children[r.parentID] = append(children[r.parentID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	root, ok := byID[cardID]
	if !ok {
		return nil, NotFoundError{Kind: "card", ID: cardID}
	}

	var build func(r *cardRow) map[string]json.RawMessage
	build = func(r *cardRow) map[string]json.RawMessage {
		kids := children[r.cardID]
		sort.SliceStable(kids, func(i, j int) bool { return kids[i].sortOrder < kids[j].sortOrder })
		nested := make([]map[string]json.RawMessage, 0, len(kids))
		for _, k := range kids {
			nested = append(nested, build(k))
		}
		out := make(map[string]json.RawMessage, len(r.data)+1)
		for k, v := range r.data {
			out[k] = v
		}
		out["cards"], _ = json.Marshal(nested)
		return out
	}
	return build(root), nil
}

// CardPayload returns the construction payload for a stored card.
func (s *Store) CardPayload(ctx context.Context, cardID string) (model.CardPayload, error) {
	tree, err := s.cardTree(ctx, strings.TrimSpace(cardID))
	if err != nil {
		return model.CardPayload{}, err
	}
	dts, err := s.Datatypes(ctx)
	if err != nil {
		return model.CardPayload{}, err
	}
	return model.CardPayload{Data: tree, Datatypes: dts}, nil
}

// ListCards lists root cards with their direct child counts.
func (s *Store) ListCards(ctx context.Context) ([]model.CardSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.cardid, c.parent_id, c.sortorder, c.name, c.updated_at_unixms,
			(SELECT COUNT(*) FROM cards k WHERE k.parent_id = c.cardid)
		FROM cards c
		WHERE c.parent_id = ''
		ORDER BY c.name, c.cardid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CardSummary{}
	for rows.Next() {
		var cs model.CardSummary
		var updated int64
		if err := rows.Scan(&cs.CardID, &cs.ParentID, &cs.SortOrder, &cs.Name, &updated, &cs.Children); err != nil {
			return nil, err
		}
		cs.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, cs)
	}
	return out, rows.Err()
}

// DeleteCard removes a card and its descendants.
func (s *Store) DeleteCard(ctx context.Context, cardID string) error {
	res, err := s.db.ExecContext(ctx, subtreeCTE+` DELETE FROM cards WHERE cardid IN (SELECT cardid FROM sub)`, strings.TrimSpace(cardID))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundError{Kind: "card", ID: cardID}
	}
	return nil
}

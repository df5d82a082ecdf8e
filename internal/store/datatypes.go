package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"resource-cards/internal/model"
)

func widgetID(id string) *string { return &id }

// defaultDatatypes is the datatype table a fresh store starts with. Datatypes
// without a default widget (semantic) never get an editable control.
var defaultDatatypes = []model.Datatype{
	{Datatype: "string", IconClass: "fa fa-file-code-o", DefaultWidgetID: widgetID("10000000-0000-0000-0000-000000000001"), ConfigName: "string-datatype-config", IsSearchable: true},
	{Datatype: "number", IconClass: "fa fa-hashtag", DefaultWidgetID: widgetID("10000000-0000-0000-0000-000000000008"), ConfigName: "number-datatype-config", IsSearchable: true},
	{Datatype: "boolean", IconClass: "fa fa-toggle-on", DefaultWidgetID: widgetID("10000000-0000-0000-0000-000000000006"), ConfigName: "boolean-datatype-config", IsSearchable: true},
	{Datatype: "date", IconClass: "fa fa-calendar", DefaultWidgetID: widgetID("10000000-0000-0000-0000-000000000004"), ConfigName: "date-datatype-config", IsSearchable: true},
	{Datatype: "concept", IconClass: "fa fa-list-ul", DefaultWidgetID: widgetID("10000000-0000-0000-0000-000000000002"), ConfigName: "concept-datatype-config", IsSearchable: true},
	{Datatype: "resource-instance", IconClass: "fa fa-external-link-o", DefaultWidgetID: widgetID("10000000-0000-0000-0000-000000000031"), ConfigName: "resource-instance-datatype-config", IsSearchable: true},
	{Datatype: "geojson-feature-collection", IconClass: "fa fa-globe", DefaultWidgetID: widgetID("10000000-0000-0000-0000-000000000007"), ConfigName: "geojson-feature-collection-config"},
	{Datatype: "semantic", IconClass: "fa fa-link"},
}

func seedDatatypes(ctx context.Context, db *sql.DB) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		for _, dt := range defaultDatatypes {
			raw, err := json.Marshal(dt)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO datatypes(datatype, json) VALUES(?, ?)`, dt.Datatype, string(raw)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Datatypes returns the datatype table ordered by name.
func (s *Store) Datatypes(ctx context.Context) ([]model.Datatype, error) {
	return readJSONRows[model.Datatype](ctx, s.db, `SELECT json FROM datatypes ORDER BY datatype`)
}

// PutDatatype inserts or replaces a datatype.
func (s *Store) PutDatatype(ctx context.Context, dt model.Datatype) error {
	dt.Datatype = strings.TrimSpace(dt.Datatype)
	if dt.Datatype == "" {
		return fmt.Errorf("%w: missing datatype name", ErrInvalid)
	}
	raw, err := json.Marshal(dt)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO datatypes(datatype, json) VALUES(?, ?)`, dt.Datatype, string(raw))
	return err
}

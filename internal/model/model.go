package model

import (
	"encoding/json"
	"time"
)

// CardPayload is the wire shape exchanged with the persistence service:
// the raw card attributes plus the datatype table used to resolve widgets.
type CardPayload struct {
	Data      map[string]json.RawMessage `json:"data"`
	Datatypes []Datatype                 `json:"datatypes"`
}

type Datatype struct {
	Datatype        string          `json:"datatype"`
	IconClass       string          `json:"iconclass,omitempty"`
	ModuleName      string          `json:"modulename,omitempty"`
	ClassName       string          `json:"classname,omitempty"`
	DefaultWidgetID *string         `json:"defaultwidget_id"`
	DefaultConfig   json.RawMessage `json:"defaultconfig,omitempty"`
	ConfigComponent string          `json:"configcomponent,omitempty"`
	ConfigName      string          `json:"configname,omitempty"`
	IsSearchable    bool            `json:"issearchable"`
}

// HasDefaultWidget reports whether nodes of this datatype get an editable control.
func (d Datatype) HasDefaultWidget() bool {
	return d.DefaultWidgetID != nil && *d.DefaultWidgetID != ""
}

// CardSummary is a listing row for stored cards.
type CardSummary struct {
	CardID    string    `json:"cardid"`
	ParentID  string    `json:"parentId,omitempty"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortorder"`
	Children  int       `json:"children"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Resource struct {
	ResourceInstanceID string    `json:"resourceinstanceid"`
	GraphID            string    `json:"graph_id,omitempty"`
	Name               string    `json:"displayname"`
	CreatedAt          time.Time `json:"createdAt"`
}

// RelationshipRequest is a batch "create relationship" submission:
// every instance in InstancesToRelate is related to RootResourceInstanceID.
type RelationshipRequest struct {
	RelationshipType       string   `json:"relationship_type"`
	InstancesToRelate      []string `json:"instances_to_relate"`
	RootResourceInstanceID string   `json:"root_resourceinstanceid"`
}

type Relationship struct {
	ID               string    `json:"resourcexid"`
	RelationshipType string    `json:"relationshiptype"`
	From             string    `json:"resourceinstanceidfrom"`
	To               string    `json:"resourceinstanceidto"`
	CreatedAt        time.Time `json:"created"`
}

// Graph is a resource model. Slug is optional but unique when set.
type Graph struct {
	GraphID     string    `json:"graphid"`
	Name        string    `json:"name"`
	Slug        *string   `json:"slug,omitempty"`
	Description string    `json:"description,omitempty"`
	IsResource  bool      `json:"isresource"`
	CreatedAt   time.Time `json:"createdAt"`
}

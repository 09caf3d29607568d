// Package socialgraph holds the wire model shared by the API server and its clients.
package socialgraph

import "encoding/json"

// Node is one person in the graph snapshot.
type Node struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ContactEmail  *string  `json:"contact_email"`
	ContactPhone  *string  `json:"contact_phone"`
	Notes         *string  `json:"notes"`
	GroupIDs      []string `json:"groupIds"`
	MainGroupID   *string  `json:"mainGroupId"`
	IsCurrentUser bool     `json:"isCurrentUser"`
	X             *float64 `json:"x"`
	Y             *float64 `json:"y"`
}

// Link is an undirected connection. Source and Target follow the server's
// canonical ordering but carry no direction.
type Link struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Label  *string `json:"label"`
}

type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Color     *string  `json:"color"`
	ParentID  *string  `json:"parentId"`
	MemberIDs []string `json:"memberIds"`
}

// DisplayColor returns the stored color, or the color derived from the name.
func (g Group) DisplayColor() string {
	if g.Color != nil && *g.Color != "" {
		return *g.Color
	}
	return SeededColor(g.Name)
}

// Snapshot is the body of GET /graph.
type Snapshot struct {
	Nodes  []Node  `json:"nodes"`
	Links  []Link  `json:"links"`
	Groups []Group `json:"groups"`
}

// Normalize replaces absent collections with empty ones so callers can range
// over a partial response without nil checks.
func (s *Snapshot) Normalize() {
	if s.Nodes == nil {
		s.Nodes = []Node{}
	}
	if s.Links == nil {
		s.Links = []Link{}
	}
	if s.Groups == nil {
		s.Groups = []Group{}
	}
	for i := range s.Nodes {
		if s.Nodes[i].GroupIDs == nil {
			s.Nodes[i].GroupIDs = []string{}
		}
		if s.Nodes[i].MainGroupID != nil && !contains(s.Nodes[i].GroupIDs, *s.Nodes[i].MainGroupID) {
			s.Nodes[i].MainGroupID = nil
		}
	}
	for i := range s.Groups {
		if s.Groups[i].MemberIDs == nil {
			s.Groups[i].MemberIDs = []string{}
		}
	}
}

// Position is one entry of PUT /graph/positions.
type Position struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type PositionsResult struct {
	Updated int `json:"updated"`
}

// GroupRecord is the row shape of GET /groups.
type GroupRecord struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	ColorHex      *string `json:"color_hex"`
	ParentGroupID *string `json:"parent_group_id"`
}

type EntityInput struct {
	Name            string   `json:"name" validate:"required,max=200"`
	ContactEmail    *string  `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone    *string  `json:"contact_phone,omitempty" validate:"omitempty,max=64"`
	Notes           *string  `json:"notes,omitempty"`
	MainGroupID     *string  `json:"main_group_id,omitempty" validate:"omitempty,uuid"`
	IsCurrentUser   bool     `json:"is_current_user,omitempty"`
	GroupsIn        []string `json:"groups_in" validate:"dive,uuid"`
	ConnectedPeople []string `json:"connected_people" validate:"dive,uuid"`
}

// EntityPatch is a partial update. Unset fields are left alone; a field set
// to null clears the stored value.
type EntityPatch struct {
	Name            Opt[string]   `json:"name,omitzero"`
	ContactEmail    Opt[string]   `json:"contact_email,omitzero"`
	ContactPhone    Opt[string]   `json:"contact_phone,omitzero"`
	Notes           Opt[string]   `json:"notes,omitzero"`
	MainGroupID     Opt[string]   `json:"main_group_id,omitzero"`
	IsCurrentUser   Opt[bool]     `json:"is_current_user,omitzero"`
	GroupsIn        Opt[[]string] `json:"groups_in,omitzero"`
	ConnectedPeople Opt[[]string] `json:"connected_people,omitzero"`
}

type GroupInput struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Description   *string `json:"description,omitempty"`
	ColorHex      *string `json:"color_hex,omitempty" validate:"omitempty,max=64"`
	ParentGroupID *string `json:"parent_group_id,omitempty" validate:"omitempty,uuid"`
}

type GroupPatch struct {
	Name          Opt[string] `json:"name,omitzero"`
	Description   Opt[string] `json:"description,omitzero"`
	ColorHex      Opt[string] `json:"color_hex,omitzero"`
	ParentGroupID Opt[string] `json:"parent_group_id,omitzero"`
}

type EdgeInput struct {
	AID   string  `json:"a_id" validate:"required,uuid"`
	BID   string  `json:"b_id" validate:"required,uuid"`
	Label *string `json:"label,omitempty" validate:"omitempty,max=200"`
}

type EdgePatch struct {
	Label Opt[string] `json:"label"`
}

// Created is returned by create endpoints that answer with an id only.
type Created struct {
	ID string `json:"id"`
}

type ImportResult struct {
	Imported    bool `json:"imported"`
	Groups      int  `json:"groups"`
	People      int  `json:"people"`
	Connections int  `json:"connections"`
}

type Export struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// TelemetryEvent is one client event. Data is free-form.
type TelemetryEvent struct {
	Type string `json:"type" validate:"required,max=100"`
	TS   int64  `json:"ts,omitempty"`
	Data any    `json:"data,omitempty"`
	User string `json:"user,omitempty"`
}

// Opt distinguishes an absent JSON field from an explicit null.
type Opt[T any] struct {
	Set   bool
	Valid bool
	V     T
}

func Some[T any](v T) Opt[T] { return Opt[T]{Set: true, Valid: true, V: v} }

func Null[T any]() Opt[T] { return Opt[T]{Set: true} }

// FromPtr maps nil to an explicit null.
func FromPtr[T any](p *T) Opt[T] {
	if p == nil {
		return Null[T]()
	}
	return Some(*p)
}

func (o Opt[T]) IsZero() bool { return !o.Set }

// Ptr returns nil when the value is null or unset.
func (o Opt[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.V
	return &v
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.V)
}

func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Valid = false
		var zero T
		o.V = zero
		return nil
	}
	if err := json.Unmarshal(b, &o.V); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

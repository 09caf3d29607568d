package editor

import (
	"errors"
	"strings"

	"github.com/kevinxuez/social-map/internal/naming"
	"github.com/kevinxuez/social-map/internal/socialgraph"
	"github.com/kevinxuez/social-map/internal/viewmodel"
)

var (
	ErrNameRequired   = errors.New("name is required")
	ErrNotAMember     = errors.New("main group must be one of the entity's groups")
	ErrSelfParent     = errors.New("a group cannot be its own parent")
	ErrSelfConnection = errors.New("an entity cannot connect to itself")
)

// EntityDraft is the entity form's working copy.
type EntityDraft struct {
	ID              string
	Name            string
	ContactEmail    string
	ContactPhone    string
	Notes           string
	IsCurrentUser   bool
	GroupsIn        []string
	MainGroupID     string
	ConnectedPeople []string
}

// NewEntityDraft seeds the form from an existing node, or returns an empty
// form when n is nil.
func NewEntityDraft(g *viewmodel.Graph, n *viewmodel.Node) EntityDraft {
	if n == nil {
		return EntityDraft{}
	}
	d := EntityDraft{
		ID:            n.ID,
		Name:          n.Name,
		ContactEmail:  deref(n.ContactEmail),
		ContactPhone:  deref(n.ContactPhone),
		Notes:         deref(n.Notes),
		IsCurrentUser: n.IsCurrentUser,
		GroupsIn:      append([]string(nil), n.GroupIDs...),
		MainGroupID:   deref(n.MainGroupID),
	}
	for _, nb := range g.Neighbors(n.ID) {
		d.ConnectedPeople = append(d.ConnectedPeople, nb.Node.ID)
	}
	return d
}

// ToggleGroup flips membership. Joining with no main group makes the group
// main; leaving the main group clears it.
func (d *EntityDraft) ToggleGroup(gid string) {
	m := d.membership()
	if m.HasGroup(gid) {
		m.RemoveGroup(gid)
	} else {
		m.AddGroup(gid)
	}
	d.setMembership(m)
}

// SetMainGroup selects one of the draft's groups as main. Empty clears it.
func (d *EntityDraft) SetMainGroup(gid string) error {
	m := d.membership()
	if !m.SetMainGroup(gid) {
		return ErrNotAMember
	}
	d.setMembership(m)
	return nil
}

func (d *EntityDraft) membership() socialgraph.Node {
	return socialgraph.Node{
		GroupIDs:    append([]string(nil), d.GroupsIn...),
		MainGroupID: naming.Optional(d.MainGroupID),
	}
}

func (d *EntityDraft) setMembership(m socialgraph.Node) {
	d.GroupsIn = m.GroupIDs
	d.MainGroupID = deref(m.MainGroupID)
}

// ToggleConnection flips a connection in the draft. It reports whether the
// connection is now present.
func (d *EntityDraft) ToggleConnection(otherID string) (bool, error) {
	if d.ID != "" && otherID == d.ID {
		return false, ErrSelfConnection
	}
	for i, id := range d.ConnectedPeople {
		if id == otherID {
			d.ConnectedPeople = append(d.ConnectedPeople[:i:i], d.ConnectedPeople[i+1:]...)
			return false, nil
		}
	}
	d.ConnectedPeople = append(d.ConnectedPeople, otherID)
	return true, nil
}

func (d EntityDraft) Validate() error {
	if naming.Clean(d.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// Input sanitizes the draft for POST /entities.
func (d EntityDraft) Input() socialgraph.EntityInput {
	groups := naming.DedupeIDs(d.GroupsIn)
	main := naming.Optional(d.MainGroupID)
	if main != nil && !containsID(groups, *main) {
		main = nil
	}
	return socialgraph.EntityInput{
		Name:            naming.Clean(d.Name),
		ContactEmail:    naming.Optional(d.ContactEmail),
		ContactPhone:    naming.Optional(d.ContactPhone),
		Notes:           naming.Optional(d.Notes),
		MainGroupID:     main,
		IsCurrentUser:   d.IsCurrentUser,
		GroupsIn:        groups,
		ConnectedPeople: naming.DedupeIDs(d.ConnectedPeople),
	}
}

// Patch is the same sanitized draft as a full PATCH body.
func (d EntityDraft) Patch() socialgraph.EntityPatch {
	in := d.Input()
	return socialgraph.EntityPatch{
		Name:            socialgraph.Some(in.Name),
		ContactEmail:    socialgraph.FromPtr(in.ContactEmail),
		ContactPhone:    socialgraph.FromPtr(in.ContactPhone),
		Notes:           socialgraph.FromPtr(in.Notes),
		MainGroupID:     socialgraph.FromPtr(in.MainGroupID),
		IsCurrentUser:   socialgraph.Some(in.IsCurrentUser),
		GroupsIn:        socialgraph.Some(in.GroupsIn),
		ConnectedPeople: socialgraph.Some(in.ConnectedPeople),
	}
}

type GroupDraft struct {
	ID            string
	Name          string
	Description   string
	ColorHex      string
	ParentGroupID string
}

// NewGroupDraft seeds the form from an existing group, or returns an empty
// form with the default palette color.
func NewGroupDraft(g *socialgraph.Group) GroupDraft {
	if g == nil {
		return GroupDraft{ColorHex: socialgraph.GroupColors[0]}
	}
	return GroupDraft{
		ID:            g.ID,
		Name:          g.Name,
		ColorHex:      deref(g.Color),
		ParentGroupID: deref(g.ParentID),
	}
}

func (d GroupDraft) Validate() error {
	if naming.Clean(d.Name) == "" {
		return ErrNameRequired
	}
	if d.ID != "" && strings.TrimSpace(d.ParentGroupID) == d.ID {
		return ErrSelfParent
	}
	return nil
}

// ParentOptions lists the groups eligible as parent, which excludes the
// group itself.
func (d GroupDraft) ParentOptions(groups []socialgraph.Group) []socialgraph.Group {
	out := make([]socialgraph.Group, 0, len(groups))
	for _, g := range groups {
		if g.ID != d.ID {
			out = append(out, g)
		}
	}
	return out
}

func (d GroupDraft) Input() socialgraph.GroupInput {
	return socialgraph.GroupInput{
		Name:          naming.Clean(d.Name),
		Description:   naming.Optional(d.Description),
		ColorHex:      naming.Optional(d.ColorHex),
		ParentGroupID: naming.Optional(d.ParentGroupID),
	}
}

// Patch omits the description, which the graph snapshot does not carry,
// unless the form set one.
func (d GroupDraft) Patch() socialgraph.GroupPatch {
	in := d.Input()
	p := socialgraph.GroupPatch{
		Name:          socialgraph.Some(in.Name),
		ColorHex:      socialgraph.FromPtr(in.ColorHex),
		ParentGroupID: socialgraph.FromPtr(in.ParentGroupID),
	}
	if in.Description != nil {
		p.Description = socialgraph.Some(*in.Description)
	}
	return p
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func containsID(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

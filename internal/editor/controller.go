package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kevinxuez/social-map/internal/apiclient"
	"github.com/kevinxuez/social-map/internal/geometry"
	"github.com/kevinxuez/social-map/internal/socialgraph"
	"github.com/kevinxuez/social-map/internal/viewmodel"
)

// Remote is the slice of the API client the drawers write through.
type Remote interface {
	CreateEntity(ctx context.Context, in socialgraph.EntityInput) (socialgraph.Node, error)
	UpdateEntity(ctx context.Context, id string, patch socialgraph.EntityPatch) (socialgraph.Node, error)
	DeleteEntity(ctx context.Context, id string) error
	CreateGroup(ctx context.Context, in socialgraph.GroupInput) (string, error)
	UpdateGroup(ctx context.Context, id string, patch socialgraph.GroupPatch) error
	DeleteGroup(ctx context.Context, id string) error
	CreateEdge(ctx context.Context, aID, bID string, label *string) (string, error)
	DeleteEdge(ctx context.Context, id string) error
	UpdateEdgeLabel(ctx context.Context, id string, label *string) error
}

// View is the live graph the drawers read from and hide deleted records in.
type View interface {
	Graph() *viewmodel.Graph
	Hulls() []geometry.GroupHull
	HideEntity(id string)
	HideGroup(id string)
	RequestRefresh()
}

type Events interface {
	Event(ctx context.Context, typ string, data map[string]any)
}

// Controller wires the drawer state, forms, confirmation prompt and label
// editor to the API and the live view.
type Controller struct {
	log    zerolog.Logger
	remote Remote
	view   View
	events Events

	Drawer  Machine
	Confirm Confirm
	Labels  *EdgeLabelEditor

	// Err is the inline message of the last failed form action.
	Err string
}

type noEvents struct{}

func (noEvents) Event(context.Context, string, map[string]any) {}

func NewController(log zerolog.Logger, remote Remote, view View, events Events) *Controller {
	if events == nil {
		events = noEvents{}
	}
	return &Controller{
		log:    log,
		remote: remote,
		view:   view,
		events: events,
		Labels: NewEdgeLabelEditor(log, remote, DefaultLabelDelay),
	}
}

func (c *Controller) SelectEntity(id string) {
	c.Err = ""
	c.Drawer.Select(KindEntity, id)
}

func (c *Controller) SelectGroup(id string) {
	c.Err = ""
	c.Drawer.Select(KindGroup, id)
}

// ClickCanvas selects the group whose hull contains pt. It reports whether a
// group was hit.
func (c *Controller) ClickCanvas(pt geometry.Point) bool {
	id, ok := geometry.HitTest(c.view.Hulls(), pt)
	if ok {
		c.SelectGroup(id)
	}
	return ok
}

func (c *Controller) AddEntity() {
	c.Err = ""
	c.Drawer.Add(KindEntity)
}

func (c *Controller) AddGroup() {
	c.Err = ""
	c.Drawer.Add(KindGroup)
}

func (c *Controller) Edit() error {
	c.Err = ""
	return c.Drawer.Edit()
}

func (c *Controller) Cancel() {
	c.Err = ""
	c.Drawer.Cancel()
}

func (c *Controller) Close() {
	c.Err = ""
	c.Drawer.Close()
}

// EntityDraft seeds the entity form for the current drawer state.
func (c *Controller) EntityDraft() EntityDraft {
	e, ok := c.Drawer.State().(Editing)
	if !ok || e.Kind != KindEntity || e.IsNew() {
		return EntityDraft{}
	}
	g := c.view.Graph()
	n, found := g.Node(e.ID)
	if !found {
		return EntityDraft{}
	}
	return NewEntityDraft(g, &n)
}

func (c *Controller) GroupDraft() GroupDraft {
	e, ok := c.Drawer.State().(Editing)
	if !ok || e.Kind != KindGroup || e.IsNew() {
		return NewGroupDraft(nil)
	}
	gr, found := c.view.Graph().Group(e.ID)
	if !found {
		return NewGroupDraft(nil)
	}
	return NewGroupDraft(&gr)
}

// SaveEntity creates or updates the entity in the open form. On failure the
// drawer stays in edit mode and Err holds the message.
func (c *Controller) SaveEntity(ctx context.Context, d EntityDraft) error {
	e, ok := c.Drawer.State().(Editing)
	if !ok || e.Kind != KindEntity {
		return fmt.Errorf("%w: no entity form open", ErrInvalidTransition)
	}
	if err := d.Validate(); err != nil {
		return c.fail(ctx, "entity_save_failed", err)
	}

	var (
		saved socialgraph.Node
		err   error
	)
	if e.IsNew() {
		saved, err = c.remote.CreateEntity(ctx, d.Input())
	} else {
		saved, err = c.remote.UpdateEntity(ctx, e.ID, d.Patch())
	}
	if err != nil {
		return c.fail(ctx, "entity_save_failed", err)
	}

	c.Err = ""
	c.events.Event(ctx, "entity_saved", map[string]any{"id": saved.ID, "new": e.IsNew()})
	c.view.RequestRefresh()
	return c.Drawer.Saved(saved.ID)
}

func (c *Controller) SaveGroup(ctx context.Context, d GroupDraft) error {
	e, ok := c.Drawer.State().(Editing)
	if !ok || e.Kind != KindGroup {
		return fmt.Errorf("%w: no group form open", ErrInvalidTransition)
	}
	d.ID = e.ID
	if err := d.Validate(); err != nil {
		return c.fail(ctx, "group_save_failed", err)
	}

	id := e.ID
	var err error
	if e.IsNew() {
		id, err = c.remote.CreateGroup(ctx, d.Input())
	} else {
		err = c.remote.UpdateGroup(ctx, e.ID, d.Patch())
	}
	if err != nil {
		return c.fail(ctx, "group_save_failed", err)
	}

	c.Err = ""
	c.events.Event(ctx, "group_saved", map[string]any{"id": id, "new": e.IsNew()})
	c.view.RequestRefresh()
	return c.Drawer.Saved(id)
}

// ToggleConnection connects or disconnects two existing entities right away,
// outside of any form save.
func (c *Controller) ToggleConnection(ctx context.Context, entityID, otherID string) error {
	if entityID == otherID {
		return c.fail(ctx, "connection_failed", ErrSelfConnection)
	}
	var err error
	if l, ok := c.view.Graph().LinkBetween(entityID, otherID); ok {
		err = c.remote.DeleteEdge(ctx, l.ID)
	} else {
		_, err = c.remote.CreateEdge(ctx, entityID, otherID, nil)
	}
	if err != nil {
		return c.fail(ctx, "connection_failed", err)
	}
	c.view.RequestRefresh()
	return nil
}

// RequestDelete asks for confirmation before deleting the record open in the
// drawer.
func (c *Controller) RequestDelete() error {
	kind, id, ok := c.Drawer.Target()
	if !ok {
		return fmt.Errorf("%w: nothing selected to delete", ErrInvalidTransition)
	}

	name := id
	g := c.view.Graph()
	switch kind {
	case KindEntity:
		if n, found := g.Node(id); found {
			name = n.Name
		}
	case KindGroup:
		if gr, found := g.Group(id); found {
			name = gr.Name
		}
	}

	c.Confirm.Ask(Prompt{
		Title:        "Delete " + kind.String(),
		Message:      fmt.Sprintf("Delete %q? This cannot be undone.", name),
		ConfirmLabel: "Delete",
	}, func(ctx context.Context) error {
		return c.delete(ctx, kind, id)
	})
	return nil
}

// ConfirmDelete runs the pending delete.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	return c.Confirm.Accept(ctx)
}

func (c *Controller) CancelDelete() {
	c.Confirm.Dismiss()
}

// delete hides the record and closes the drawer before the remote call
// resolves. A failed call is logged; the next snapshot brings the record
// back.
func (c *Controller) delete(ctx context.Context, kind Kind, id string) error {
	var err error
	switch kind {
	case KindEntity:
		c.view.HideEntity(id)
		c.Drawer.Close()
		err = c.remote.DeleteEntity(ctx, id)
	case KindGroup:
		c.view.HideGroup(id)
		c.Drawer.Close()
		err = c.remote.DeleteGroup(ctx, id)
	default:
		return fmt.Errorf("delete: unknown kind %v", kind)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("kind", kind.String()).Str("id", id).Msg("delete failed")
		c.events.Event(ctx, kind.String()+"_delete_failed", map[string]any{"id": id})
		return err
	}
	c.events.Event(ctx, kind.String()+"_deleted", map[string]any{"id": id})
	c.view.RequestRefresh()
	return nil
}

func (c *Controller) fail(ctx context.Context, event string, err error) error {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		c.Err = apiErr.Message
	} else {
		c.Err = err.Error()
	}
	c.events.Event(ctx, event, map[string]any{"error": c.Err})
	return err
}

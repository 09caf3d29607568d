package editor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kevinxuez/social-map/internal/debounce"
	"github.com/kevinxuez/social-map/internal/naming"
)

// DefaultLabelDelay is the autosave window for edge label typing.
const DefaultLabelDelay = 500 * time.Millisecond

type LabelUpdater interface {
	UpdateEdgeLabel(ctx context.Context, id string, label *string) error
}

// EdgeLabelEditor edits one edge label at a time. Typing autosaves after a
// quiet period. Leaving the editor, or moving to another edge, does not
// cancel a pending autosave: the last draft typed for an edge is sent.
type EdgeLabelEditor struct {
	log      zerolog.Logger
	remote   LabelUpdater
	debounce *debounce.Keyed[string]
	timeout  time.Duration

	mu      sync.Mutex
	editing string
	draft   string
}

func NewEdgeLabelEditor(log zerolog.Logger, remote LabelUpdater, delay time.Duration) *EdgeLabelEditor {
	if delay <= 0 {
		delay = DefaultLabelDelay
	}
	return &EdgeLabelEditor{
		log:      log,
		remote:   remote,
		debounce: debounce.NewKeyed[string](delay),
		timeout:  10 * time.Second,
	}
}

// Begin starts editing edgeID, seeding the draft from its current label.
func (e *EdgeLabelEditor) Begin(edgeID string, current *string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editing = edgeID
	e.draft = deref(current)
}

// Editing returns the edge being edited.
func (e *EdgeLabelEditor) Editing() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editing, e.editing != ""
}

func (e *EdgeLabelEditor) Draft() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Type replaces the draft and schedules an autosave for the edge being
// edited.
func (e *EdgeLabelEditor) Type(text string) {
	e.mu.Lock()
	id := e.editing
	if id == "" {
		e.mu.Unlock()
		return
	}
	e.draft = text
	e.mu.Unlock()

	e.debounce.Call(id, func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		if err := e.remote.UpdateEdgeLabel(ctx, id, naming.Optional(text)); err != nil {
			e.log.Warn().Err(err).Str("edge_id", id).Msg("edge label autosave failed")
		}
	})
}

// Finish saves the draft now and leaves edit mode.
func (e *EdgeLabelEditor) Finish(ctx context.Context) error {
	return e.commit(ctx, true)
}

// Clear removes the label now and leaves edit mode.
func (e *EdgeLabelEditor) Clear(ctx context.Context) error {
	return e.commit(ctx, false)
}

// Cancel leaves edit mode. A pending autosave still fires.
func (e *EdgeLabelEditor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editing = ""
	e.draft = ""
}

// Pending is the number of autosaves waiting to fire.
func (e *EdgeLabelEditor) Pending() int {
	return e.debounce.Pending()
}

func (e *EdgeLabelEditor) commit(ctx context.Context, keep bool) error {
	e.mu.Lock()
	id, draft := e.editing, e.draft
	e.editing, e.draft = "", ""
	e.mu.Unlock()
	if id == "" {
		return nil
	}

	// A queued autosave for this edge holds older text.
	e.debounce.Cancel(id)

	var label *string
	if keep {
		label = naming.Optional(draft)
	}
	return e.remote.UpdateEdgeLabel(ctx, id, label)
}

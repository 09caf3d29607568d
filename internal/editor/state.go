// Package editor holds the interaction state behind the entity and group
// drawers: which record is selected, what is being edited, and the prompts
// guarding destructive actions.
package editor

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindEntity Kind = iota + 1
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindGroup:
		return "group"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// State is one of Idle, Viewing or Editing.
type State interface {
	isState()
}

type Idle struct{}

type Viewing struct {
	Kind Kind
	ID   string
}

// Editing with an empty ID is a new record.
type Editing struct {
	Kind Kind
	ID   string
}

func (Idle) isState()    {}
func (Viewing) isState() {}
func (Editing) isState() {}

func (e Editing) IsNew() bool { return e.ID == "" }

var ErrInvalidTransition = errors.New("invalid drawer transition")

// Machine is the drawer state. The zero value is Idle.
type Machine struct {
	state State
}

func (m *Machine) State() State {
	if m.state == nil {
		return Idle{}
	}
	return m.state
}

// Select opens a record for viewing from any state.
func (m *Machine) Select(kind Kind, id string) {
	m.state = Viewing{Kind: kind, ID: id}
}

// Edit switches the viewed record into edit mode.
func (m *Machine) Edit() error {
	v, ok := m.State().(Viewing)
	if !ok {
		return fmt.Errorf("%w: edit from %T", ErrInvalidTransition, m.State())
	}
	m.state = Editing(v)
	return nil
}

// Add opens an empty form for a new record.
func (m *Machine) Add(kind Kind) {
	m.state = Editing{Kind: kind}
}

// Saved moves a form to viewing the saved record. id is the created id for
// new records.
func (m *Machine) Saved(id string) error {
	e, ok := m.State().(Editing)
	if !ok {
		return fmt.Errorf("%w: save from %T", ErrInvalidTransition, m.State())
	}
	if !e.IsNew() {
		id = e.ID
	}
	if id == "" {
		return fmt.Errorf("%w: saved record has no id", ErrInvalidTransition)
	}
	m.state = Viewing{Kind: e.Kind, ID: id}
	return nil
}

// Cancel leaves a form. A new record goes back to Idle, an existing one to
// viewing it. Outside a form Cancel closes the drawer.
func (m *Machine) Cancel() {
	if e, ok := m.State().(Editing); ok && !e.IsNew() {
		m.state = Viewing(e)
		return
	}
	m.state = Idle{}
}

func (m *Machine) Close() {
	m.state = Idle{}
}

// Target returns the record currently open in the drawer, if any.
func (m *Machine) Target() (Kind, string, bool) {
	switch s := m.State().(type) {
	case Viewing:
		return s.Kind, s.ID, true
	case Editing:
		if !s.IsNew() {
			return s.Kind, s.ID, true
		}
	}
	return 0, "", false
}

package editor

import (
	"context"
	"errors"
	"sync"
)

type Prompt struct {
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
}

var ErrNoPrompt = errors.New("no confirmation pending")

// Confirm holds at most one pending destructive action until the user
// accepts or dismisses it.
type Confirm struct {
	mu     sync.Mutex
	prompt *Prompt
	action func(context.Context) error
}

// Ask replaces any pending prompt.
func (c *Confirm) Ask(p Prompt, action func(context.Context) error) {
	if p.ConfirmLabel == "" {
		p.ConfirmLabel = "Confirm"
	}
	if p.CancelLabel == "" {
		p.CancelLabel = "Cancel"
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt = &p
	c.action = action
}

func (c *Confirm) Current() (Prompt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prompt == nil {
		return Prompt{}, false
	}
	return *c.prompt, true
}

// Accept closes the prompt and runs its action.
func (c *Confirm) Accept(ctx context.Context) error {
	c.mu.Lock()
	action := c.action
	c.prompt, c.action = nil, nil
	c.mu.Unlock()
	if action == nil {
		return ErrNoPrompt
	}
	return action(ctx)
}

func (c *Confirm) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt, c.action = nil, nil
}

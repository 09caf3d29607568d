package viewmodel

import (
	"context"
	"errors"
	"strings"

	"github.com/kevinxuez/social-map/internal/apiclient"
	"github.com/kevinxuez/social-map/internal/naming"
	"github.com/kevinxuez/social-map/internal/socialgraph"
)

// UserDirectory is the part of the API client used to find or create the
// logged-in user's own entity.
type UserDirectory interface {
	ListEntities(ctx context.Context, f apiclient.EntityFilter) ([]socialgraph.Node, error)
	CreateEntity(ctx context.Context, in socialgraph.EntityInput) (socialgraph.Node, error)
}

// EnsureCurrentUser returns the entity flagged as the current user for
// email, creating it when missing. A blank profile name falls back to the
// email.
func EnsureCurrentUser(ctx context.Context, dir UserDirectory, name, email string) (socialgraph.Node, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return socialgraph.Node{}, false, errors.New("current user email is required")
	}

	found, err := dir.ListEntities(ctx, apiclient.EntityFilter{Search: email})
	if err != nil {
		return socialgraph.Node{}, false, err
	}
	for _, n := range found {
		if n.IsCurrentUser && n.ContactEmail != nil && strings.EqualFold(*n.ContactEmail, email) {
			return n, false, nil
		}
	}

	display := naming.Clean(name)
	if display == "" {
		display = email
	}
	created, err := dir.CreateEntity(ctx, socialgraph.EntityInput{
		Name:            display,
		ContactEmail:    &email,
		IsCurrentUser:   true,
		GroupsIn:        []string{},
		ConnectedPeople: []string{},
	})
	if err != nil {
		return socialgraph.Node{}, false, err
	}
	return created, true, nil
}

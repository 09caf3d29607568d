package cli

import (
	"fmt"
	"strings"

	"github.com/kevinxuez/social-map/internal/naming"
	"github.com/kevinxuez/social-map/internal/socialgraph"
	"github.com/kevinxuez/social-map/internal/viewmodel"
)

// resolveEntity finds an entity by id, then email, then name.
func resolveEntity(g *viewmodel.Graph, ref string) (viewmodel.Node, error) {
	ref = strings.TrimSpace(ref)
	if n, ok := g.Node(ref); ok {
		return n, nil
	}
	key := naming.Key(ref)
	if key == "" {
		return viewmodel.Node{}, fmt.Errorf("entity reference is empty")
	}
	for _, n := range g.Nodes {
		if n.ContactEmail != nil && naming.Key(*n.ContactEmail) == key {
			return n, nil
		}
	}
	var matches []viewmodel.Node
	for _, n := range g.Nodes {
		if naming.Key(n.Name) == key {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 0:
		return viewmodel.Node{}, fmt.Errorf("no entity matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return viewmodel.Node{}, fmt.Errorf("%d entities are named %q; use an id or email", len(matches), ref)
	}
}

func resolveGroup(g *viewmodel.Graph, ref string) (socialgraph.Group, error) {
	ref = strings.TrimSpace(ref)
	if gr, ok := g.Group(ref); ok {
		return gr, nil
	}
	key := naming.Key(ref)
	var matches []socialgraph.Group
	for _, gr := range g.Groups {
		if naming.Key(gr.Name) == key {
			matches = append(matches, gr)
		}
	}
	switch len(matches) {
	case 0:
		return socialgraph.Group{}, fmt.Errorf("no group matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return socialgraph.Group{}, fmt.Errorf("%d groups are named %q; use an id", len(matches), ref)
	}
}

func groupNames(g *viewmodel.Graph, ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if gr, ok := g.Group(id); ok {
			names = append(names, gr.Name)
		} else {
			names = append(names, id)
		}
	}
	return strings.Join(names, ", ")
}

func nodeName(g *viewmodel.Graph, id string) string {
	if n, ok := g.Node(id); ok {
		return n.Name
	}
	return id
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

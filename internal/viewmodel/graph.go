// Package viewmodel turns server snapshots and local edits into the graph
// handed to the layout engine.
package viewmodel

import (
	"github.com/kevinxuez/social-map/internal/geometry"
	"github.com/kevinxuez/social-map/internal/socialgraph"
)

// Node is a render-ready entity. X and Y are always set; VX and VY belong
// to the layout engine and are carried across refreshes untouched.
type Node struct {
	ID            string
	Name          string
	ContactEmail  *string
	ContactPhone  *string
	Notes         *string
	GroupIDs      []string
	MainGroupID   *string
	IsCurrentUser bool

	X, Y   float64
	VX, VY float64
}

type Link struct {
	ID     string
	Source string
	Target string
	Label  *string
}

// Graph is an immutable render input. Updates build a new Graph.
type Graph struct {
	Nodes  []Node
	Links  []Link
	Groups []socialgraph.Group

	nodeIndex map[string]int
	linkIndex map[string]int
}

func newGraph(nodes []Node, links []Link, groups []socialgraph.Group) *Graph {
	g := &Graph{
		Nodes:     nodes,
		Links:     links,
		Groups:    groups,
		nodeIndex: make(map[string]int, len(nodes)),
		linkIndex: make(map[string]int, len(links)),
	}
	for i, n := range nodes {
		g.nodeIndex[n.ID] = i
	}
	for i, l := range links {
		g.linkIndex[l.ID] = i
	}
	return g
}

// Empty returns a graph with no nodes, links or groups.
func Empty() *Graph {
	return newGraph([]Node{}, []Link{}, []socialgraph.Group{})
}

func (g *Graph) Node(id string) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

func (g *Graph) Link(id string) (Link, bool) {
	if g == nil {
		return Link{}, false
	}
	i, ok := g.linkIndex[id]
	if !ok {
		return Link{}, false
	}
	return g.Links[i], true
}

func (g *Graph) Group(id string) (socialgraph.Group, bool) {
	if g == nil {
		return socialgraph.Group{}, false
	}
	for _, gr := range g.Groups {
		if gr.ID == id {
			return gr, true
		}
	}
	return socialgraph.Group{}, false
}

// WithPosition returns a copy of g with one node moved. Unknown ids return g.
func (g *Graph) WithPosition(id string, x, y float64) *Graph {
	i, ok := g.nodeIndex[id]
	if !ok {
		return g
	}
	nodes := make([]Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	nodes[i].X, nodes[i].Y = x, y
	return newGraph(nodes, g.Links, g.Groups)
}

// Neighbor is one connection of an entity, as listed in its drawer.
type Neighbor struct {
	Node   Node
	LinkID string
	Label  *string
}

// Neighbors lists the entities linked to id in link order. Links are
// undirected, so either endpoint may be id.
func (g *Graph) Neighbors(id string) []Neighbor {
	var out []Neighbor
	if g == nil {
		return out
	}
	for _, l := range g.Links {
		other := ""
		switch id {
		case l.Source:
			other = l.Target
		case l.Target:
			other = l.Source
		default:
			continue
		}
		n, ok := g.Node(other)
		if !ok {
			continue
		}
		out = append(out, Neighbor{Node: n, LinkID: l.ID, Label: l.Label})
	}
	return out
}

// LinkBetween finds the link joining a and b in either direction.
func (g *Graph) LinkBetween(a, b string) (Link, bool) {
	if g == nil {
		return Link{}, false
	}
	for _, l := range g.Links {
		if (l.Source == a && l.Target == b) || (l.Source == b && l.Target == a) {
			return l, true
		}
	}
	return Link{}, false
}

// Hulls computes the group overlays from the current node positions.
func (g *Graph) Hulls(pad float64) []geometry.GroupHull {
	if g == nil {
		return nil
	}
	members := make(map[string][]geometry.Point)
	for _, n := range g.Nodes {
		for _, gid := range n.GroupIDs {
			members[gid] = append(members[gid], geometry.Point{X: n.X, Y: n.Y})
		}
	}
	return geometry.GroupHulls(g.Groups, members, pad)
}

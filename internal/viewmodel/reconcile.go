package viewmodel

import (
	"math/rand/v2"

	"github.com/kevinxuez/social-map/internal/socialgraph"
)

// DefaultSpread is the side of the square new nodes are scattered in.
const DefaultSpread = 500.0

// Reconciler merges snapshots into the previous graph.
type Reconciler struct {
	Spread float64
	// Rand returns values in [0,1). Defaults to math/rand/v2.
	Rand func() float64
}

// Reconcile merges snap into prev using the default spread.
func Reconcile(prev *Graph, snap socialgraph.Snapshot, pinned map[string]socialgraph.Position) *Graph {
	return Reconciler{}.Reconcile(prev, snap, pinned)
}

// Reconcile builds the next graph from snap. Nodes and links keep their id;
// a node already in prev keeps its layout state, and keeps its position
// unless snap carries coordinates. Pinned positions are unsaved local drags
// and beat both. Nodes new to the graph are scattered randomly. Nodes and
// links missing from snap are dropped; groups are taken as-is.
func (r Reconciler) Reconcile(prev *Graph, snap socialgraph.Snapshot, pinned map[string]socialgraph.Position) *Graph {
	spread := r.Spread
	if spread <= 0 {
		spread = DefaultSpread
	}
	rnd := r.Rand
	if rnd == nil {
		rnd = rand.Float64
	}

	nodes := make([]Node, 0, len(snap.Nodes))
	for _, in := range snap.Nodes {
		n := Node{
			ID:            in.ID,
			Name:          in.Name,
			ContactEmail:  in.ContactEmail,
			ContactPhone:  in.ContactPhone,
			Notes:         in.Notes,
			GroupIDs:      groupIDs(in),
			MainGroupID:   in.MainGroupID,
			IsCurrentUser: in.IsCurrentUser,
		}
		if n.MainGroupID != nil && !contains(n.GroupIDs, *n.MainGroupID) {
			n.MainGroupID = nil
		}

		old, seen := prev.Node(in.ID)
		switch {
		case in.X != nil && in.Y != nil:
			n.X, n.Y = *in.X, *in.Y
		case seen:
			n.X, n.Y = old.X, old.Y
		default:
			n.X = (rnd() - 0.5) * spread
			n.Y = (rnd() - 0.5) * spread
		}
		if seen {
			n.VX, n.VY = old.VX, old.VY
		}
		if p, ok := pinned[in.ID]; ok {
			n.X, n.Y = p.X, p.Y
		}
		nodes = append(nodes, n)
	}

	links := make([]Link, 0, len(snap.Links))
	for _, in := range snap.Links {
		links = append(links, Link{ID: in.ID, Source: in.Source, Target: in.Target, Label: in.Label})
	}

	groups := snap.Groups
	if groups == nil {
		groups = []socialgraph.Group{}
	}
	return newGraph(nodes, links, groups)
}

func groupIDs(n socialgraph.Node) []string {
	if n.GroupIDs == nil {
		return []string{}
	}
	out := make([]string, len(n.GroupIDs))
	copy(out, n.GroupIDs)
	return out
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

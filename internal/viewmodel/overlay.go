package viewmodel

import "sync"

// Overlay hides records that were deleted locally but may still be in the
// last snapshot. The session resets it after each successful fetch.
type Overlay struct {
	mu       sync.Mutex
	entities map[string]struct{}
	groups   map[string]struct{}
}

func (o *Overlay) HideEntity(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.entities == nil {
		o.entities = make(map[string]struct{})
	}
	o.entities[id] = struct{}{}
}

func (o *Overlay) HideGroup(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.groups == nil {
		o.groups = make(map[string]struct{})
	}
	o.groups[id] = struct{}{}
}

func (o *Overlay) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entities = nil
	o.groups = nil
}

func (o *Overlay) Empty() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entities) == 0 && len(o.groups) == 0
}

// Apply returns g without hidden entities, their links, and hidden groups.
// Hidden groups are also dropped from each node's memberships.
func (o *Overlay) Apply(g *Graph) *Graph {
	o.mu.Lock()
	defer o.mu.Unlock()
	if g == nil || (len(o.entities) == 0 && len(o.groups) == 0) {
		return g
	}

	nodes := make([]Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, hidden := o.entities[n.ID]; hidden {
			continue
		}
		if len(o.groups) > 0 {
			ids := make([]string, 0, len(n.GroupIDs))
			for _, gid := range n.GroupIDs {
				if _, hidden := o.groups[gid]; !hidden {
					ids = append(ids, gid)
				}
			}
			n.GroupIDs = ids
			if n.MainGroupID != nil {
				if _, hidden := o.groups[*n.MainGroupID]; hidden {
					n.MainGroupID = nil
				}
			}
		}
		nodes = append(nodes, n)
	}

	links := make([]Link, 0, len(g.Links))
	for _, l := range g.Links {
		_, hs := o.entities[l.Source]
		_, ht := o.entities[l.Target]
		if hs || ht {
			continue
		}
		links = append(links, l)
	}

	groups := g.Groups[:0:0]
	for _, gr := range g.Groups {
		if _, hidden := o.groups[gr.ID]; !hidden {
			groups = append(groups, gr)
		}
	}
	return newGraph(nodes, links, groups)
}

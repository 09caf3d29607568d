package socialgraph

// AddGroup adds gid to the node's groups. The first group joined becomes the
// main group when none is set.
func (n *Node) AddGroup(gid string) {
	if gid == "" || contains(n.GroupIDs, gid) {
		return
	}
	n.GroupIDs = append(n.GroupIDs, gid)
	if n.MainGroupID == nil {
		g := gid
		n.MainGroupID = &g
	}
}

// RemoveGroup drops gid from the node's groups and clears the main group
// when it pointed there.
func (n *Node) RemoveGroup(gid string) {
	out := n.GroupIDs[:0:0]
	for _, id := range n.GroupIDs {
		if id != gid {
			out = append(out, id)
		}
	}
	n.GroupIDs = out
	if n.MainGroupID != nil && *n.MainGroupID == gid {
		n.MainGroupID = nil
	}
}

// HasGroup reports whether the node is a member of gid.
func (n *Node) HasGroup(gid string) bool {
	return contains(n.GroupIDs, gid)
}

// SetMainGroup sets the main group. It reports false and leaves the node
// unchanged when gid is not one of its groups.
func (n *Node) SetMainGroup(gid string) bool {
	if gid == "" {
		n.MainGroupID = nil
		return true
	}
	if !contains(n.GroupIDs, gid) {
		return false
	}
	g := gid
	n.MainGroupID = &g
	return true
}

// MemberPositions collects the known positions of each group's members,
// keyed by group id. Nodes without coordinates are skipped.
func (s Snapshot) MemberPositions() map[string][][2]float64 {
	out := make(map[string][][2]float64)
	for _, n := range s.Nodes {
		if n.X == nil || n.Y == nil {
			continue
		}
		for _, gid := range n.GroupIDs {
			out[gid] = append(out[gid], [2]float64{*n.X, *n.Y})
		}
	}
	return out
}

package geometry

import "github.com/kevinxuez/social-map/internal/socialgraph"

// FillAlpha is the opacity applied to hull fills, as a byte.
const FillAlpha = 0x55

// GroupHull is one group's overlay, ready to draw.
type GroupHull struct {
	GroupID string  `json:"group_id"`
	Name    string  `json:"name"`
	Polygon Polygon `json:"polygon"`
	Fill    string  `json:"fill"`
	Stroke  string  `json:"stroke"`
}

// GroupHulls builds hulls in group order. Groups with no positioned members
// get no hull.
func GroupHulls(groups []socialgraph.Group, members map[string][]Point, pad float64) []GroupHull {
	out := make([]GroupHull, 0, len(groups))
	for _, g := range groups {
		poly := ComputeHull(members[g.ID], pad)
		if poly == nil {
			continue
		}
		fill := g.DisplayColor()
		out = append(out, GroupHull{
			GroupID: g.ID,
			Name:    g.Name,
			Polygon: poly,
			Fill:    fill,
			Stroke:  DeriveStrokeColor(fill),
		})
	}
	return out
}

// SnapshotHulls computes hulls straight from a server snapshot.
func SnapshotHulls(s socialgraph.Snapshot, pad float64) []GroupHull {
	members := make(map[string][]Point)
	for gid, pts := range s.MemberPositions() {
		for _, p := range pts {
			members[gid] = append(members[gid], Point{X: p[0], Y: p[1]})
		}
	}
	return GroupHulls(s.Groups, members, pad)
}

// HitTest returns the group whose hull contains pt. Later hulls are drawn
// on top, so they win.
func HitTest(hulls []GroupHull, pt Point) (string, bool) {
	for i := len(hulls) - 1; i >= 0; i-- {
		if PointInPolygon(pt, hulls[i].Polygon) {
			return hulls[i].GroupID, true
		}
	}
	return "", false
}

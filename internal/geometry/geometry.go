// Package geometry computes the group hulls drawn under the graph and the
// hit tests used to select a group by clicking inside its hull.
package geometry

import (
	"sort"
)

// DefaultPadding is the margin around the bounding box of a group with one
// or two members.
const DefaultPadding = 30.0

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Polygon []Point

// PointInPolygon uses ray casting. A tiny epsilon keeps horizontal edges
// from dividing by zero, so points exactly on an edge land on whichever side
// the perturbation puts them, but always the same side for the same input.
func PointInPolygon(pt Point, poly Polygon) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y
		if (yi > pt.Y) != (yj > pt.Y) &&
			pt.X < (xj-xi)*(pt.Y-yi)/(yj-yi+0.0000001)+xi {
			inside = !inside
		}
	}
	return inside
}

// ComputeHull returns the convex hull for three or more points, a rectangle
// padded by pad around one or two points, and nil when there are no points.
// Points that are all coincident or collinear have no area and get the
// padded rectangle too.
func ComputeHull(points []Point, pad float64) Polygon {
	if len(points) == 0 {
		return nil
	}
	if len(points) >= 3 {
		if hull := ConvexHull(points); len(hull) >= 3 {
			return hull
		}
	}
	return paddedRect(points, pad)
}

func paddedRect(points []Point, pad float64) Polygon {
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return Polygon{
		{minX - pad, minY - pad},
		{maxX + pad, minY - pad},
		{maxX + pad, maxY + pad},
		{minX - pad, maxY + pad},
	}
}

// ConvexHull is Andrew's monotone chain. The result is counter-clockwise
// without repeating the first point. Collinear input collapses to its two
// extreme points.
func ConvexHull(points []Point) Polygon {
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	if len(pts) < 3 {
		return Polygon(pts)
	}

	hull := make(Polygon, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

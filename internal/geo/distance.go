// Package geo holds the planar geometry helpers the sampling-based path
// planner uses for steering and proximity checks on the hospital
// floorplan. It replaces the teacher's latitude/longitude Haversine
// helpers (there is no curved-earth travel inside a hospital) with plane
// geometry of the same shape: a distance function, a radius check, and a
// bounded "move toward" step.
package geo

import "math"

// ArrivalRadiusMeters is how close a drone's planned stop must land to a
// location's coordinates to count as having arrived there, mirroring the
// teacher's pickup/delivery radius tolerance.
const ArrivalRadiusMeters = 1.0

// Point is a 2D floorplan coordinate. Floor is carried separately by
// models.Location and ignored here; planning only happens within a floor.
type Point struct {
	X, Y float64
}

// Distance returns the straight-line distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// WithinRadius reports whether b lies within radiusMeters of a.
func WithinRadius(a, b Point, radiusMeters float64) bool {
	return Distance(a, b) <= radiusMeters
}

// Steer returns the point reached by moving from `from` toward `to` by at
// most maxStep, used by the RRT-style planner to grow its tree one bounded
// increment at a time. If `to` is already within maxStep, it returns `to`
// unchanged.
func Steer(from, to Point, maxStep float64) Point {
	d := Distance(from, to)
	if d <= maxStep || d == 0 {
		return to
	}
	t := maxStep / d
	return Point{
		X: from.X + (to.X-from.X)*t,
		Y: from.Y + (to.Y-from.Y)*t,
	}
}

// SegmentsIntersect reports whether segment p1-p2 crosses segment p3-p4.
// Uses the standard orientation-test algorithm.
func SegmentsIntersect(p1, p2, p3, p4 Point) bool {
	o1 := orientation(p1, p2, p3)
	o2 := orientation(p1, p2, p4)
	o3 := orientation(p3, p4, p1)
	o4 := orientation(p3, p4, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(p1, p3, p2) {
		return true
	}
	if o2 == 0 && onSegment(p1, p4, p2) {
		return true
	}
	if o3 == 0 && onSegment(p3, p1, p4) {
		return true
	}
	if o4 == 0 && onSegment(p3, p2, p4) {
		return true
	}
	return false
}

func orientation(a, b, c Point) int {
	v := (b.Y-a.Y)*(c.X-b.X) - (b.X-a.X)*(c.Y-b.Y)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return 2
	default:
		return 0
	}
}

func onSegment(a, b, c Point) bool {
	return b.X <= math.Max(a.X, c.X) && b.X >= math.Min(a.X, c.X) &&
		b.Y <= math.Max(a.Y, c.Y) && b.Y >= math.Min(a.Y, c.Y)
}

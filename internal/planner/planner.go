// Package planner implements the dispatcher's two path-finding modes: a
// direct delegation to the graph's shortest path, and a sampling-based
// (RRT-style) obstacle-avoidance mode used while other drones are in
// flight. The incremental tree is a plain slice of nodes, each holding
// its parent index and path cost; the nearest node to a sample is found
// by a linear scan. The stochastic sampling step follows the pack's lognormal-sampling
// style (draw, transform, retry under a bounded iteration budget).
package planner

import (
	"math"

	"hospitaldrones/internal/geo"
	"hospitaldrones/internal/graphx"
)

// Bounds is the rectangular sampling region for the RRT tree, typically
// the bounding box of the floor's location coordinates plus margin.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// ActiveFlight is the planner's view of another drone currently in
// flight: its route (graph node ids), speed, flight start time, and
// whether it is an emergency drone, used for the collision check.
type ActiveFlight struct {
	DroneID       string
	Route         []string
	SpeedMPerSec  float64
	IsEmergency   bool
	StartTimeUnix int64
}

// Params configures one planning call.
type Params struct {
	Start          string
	Goal           string
	SelfIsEmergency bool
	OtherFlights   []ActiveFlight
	Bounds         Bounds
	Now            int64 // unix seconds, the instant planning happens
}

const (
	baseObstacleRadius = 1.5 // meters
	goalRadius         = 1.0
	stepSize           = 2.0
	goalSampleBias     = 0.10
	emergencyBudget    = 300
	normalBudget       = 500
	rewireRadius       = stepSize * 2
)

// Planner plans routes over a Graph, either directly (shortest path) or
// by sampling around other drones' predicted positions.
type Planner struct {
	graph *graphx.Graph
	rng   sampler
}

// sampler abstracts the random source so tests can supply a deterministic
// sequence instead of a real RNG.
type sampler interface {
	// Next returns a pseudo-random sample in [0, 1).
	Next() float64
}

// New returns a Planner over graph using a real pseudo-random sampler.
func New(graph *graphx.Graph) *Planner {
	return &Planner{graph: graph, rng: newLCG(1)}
}

// PlanResult is the outcome of a planning call.
type PlanResult struct {
	Path         []string // graph node ids, start..goal
	UsedFallback bool     // true if sampling failed or was not attempted
}

// Plan chooses the planning mode: shortest-path when no other drones are
// in flight, sampling-based otherwise, with a shortest-path fallback if
// sampling exhausts its iteration budget without reaching the goal.
func (p *Planner) Plan(params Params) (PlanResult, error) {
	if len(params.OtherFlights) == 0 {
		return p.shortestPathResult(params.Start, params.Goal, true)
	}

	budget := normalBudget
	if params.SelfIsEmergency {
		budget = emergencyBudget
	}

	path, ok := p.sample(params, budget)
	if !ok {
		return p.shortestPathResult(params.Start, params.Goal, true)
	}
	return PlanResult{Path: path, UsedFallback: false}, nil
}

func (p *Planner) shortestPathResult(start, goal string, fallback bool) (PlanResult, error) {
	path, _, err := p.graph.ShortestPath(start, goal)
	if err != nil {
		return PlanResult{}, err
	}
	return PlanResult{Path: path, UsedFallback: fallback}, nil
}

// treeNode is one point in the RRT tree: a floorplan coordinate, the
// index of its parent in the tree slice, and the path cost from the root.
type treeNode struct {
	pt     geo.Point
	parent int
	cost   float64
}

// sample runs the bounded RRT-style search described in the component
// design and returns the graph-node path if the goal was reached.
func (p *Planner) sample(params Params, budget int) ([]string, bool) {
	startLoc, ok := p.graph.Location(params.Start)
	if !ok {
		return nil, false
	}
	goalLoc, ok := p.graph.Location(params.Goal)
	if !ok {
		return nil, false
	}
	start := geo.Point{X: startLoc.X, Y: startLoc.Y}
	goal := geo.Point{X: goalLoc.X, Y: goalLoc.Y}

	tree := []treeNode{{pt: start, parent: -1, cost: 0}}
	goalIdx := -1

	for i := 0; i < budget; i++ {
		sample := p.sampleScenePoint(params.Bounds, goal)
		nearestIdx := nearest(tree, sample)
		candidate := geo.Steer(tree[nearestIdx].pt, sample, stepSize)

		if p.collides(tree[nearestIdx].pt, candidate, params) {
			continue
		}

		newIdx := len(tree)
		tree = append(tree, treeNode{
			pt:     candidate,
			parent: nearestIdx,
			cost:   tree[nearestIdx].cost + geo.Distance(tree[nearestIdx].pt, candidate),
		})
		p.rewire(tree, newIdx, params)

		if geo.WithinRadius(candidate, goal, goalRadius) {
			goalIdx = newIdx
			break
		}
	}

	if goalIdx == -1 {
		return nil, false
	}
	return p.treePathToGraphNodes(tree, goalIdx, params.Goal), true
}

func (p *Planner) sampleScenePoint(b Bounds, goal geo.Point) geo.Point {
	if p.rng.Next() < goalSampleBias {
		return goal
	}
	w := b.MaxX - b.MinX
	h := b.MaxY - b.MinY
	return geo.Point{
		X: b.MinX + p.rng.Next()*w,
		Y: b.MinY + p.rng.Next()*h,
	}
}

func nearest(tree []treeNode, pt geo.Point) int {
	best := 0
	bestDist := math.Inf(1)
	for i, n := range tree {
		if d := geo.Distance(n.pt, pt); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// rewire redirects any existing tree node within rewireRadius of the new
// node to route through it, when doing so lowers that node's cost and the
// new edge is itself collision-free.
func (p *Planner) rewire(tree []treeNode, newIdx int, params Params) {
	newNode := tree[newIdx]
	for i := range tree {
		if i == newIdx || i == newNode.parent {
			continue
		}
		d := geo.Distance(tree[i].pt, newNode.pt)
		if d > rewireRadius {
			continue
		}
		candidateCost := newNode.cost + d
		if candidateCost >= tree[i].cost {
			continue
		}
		if p.collides(newNode.pt, tree[i].pt, params) {
			continue
		}
		tree[i].parent = newIdx
		tree[i].cost = candidateCost
	}
}

// treePathToGraphNodes walks the tree from goalIdx back to the root,
// snapping each tree point to its nearest graph location, deduplicating
// consecutive repeats, and appending the true goal node if the snapped
// path doesn't already end there.
func (p *Planner) treePathToGraphNodes(tree []treeNode, goalIdx int, goalID string) []string {
	var pts []geo.Point
	for i := goalIdx; i != -1; i = tree[i].parent {
		pts = append([]geo.Point{tree[i].pt}, pts...)
	}

	var path []string
	for _, pt := range pts {
		id, ok := p.nearestGraphNode(pt)
		if !ok {
			continue
		}
		if len(path) == 0 || path[len(path)-1] != id {
			path = append(path, id)
		}
	}
	if len(path) == 0 || path[len(path)-1] != goalID {
		path = append(path, goalID)
	}
	return path
}

func (p *Planner) nearestGraphNode(pt geo.Point) (string, bool) {
	best := ""
	bestDist := math.Inf(1)
	for _, loc := range p.graph.Locations() {
		d := geo.Distance(pt, geo.Point{X: loc.X, Y: loc.Y})
		if d < bestDist {
			bestDist = d
			best = loc.ID
		}
	}
	return best, best != ""
}

// collides checks the candidate leg from..to against every other active
// flight's position predicted at params.Now, applying the emergency
// right-of-way clearance rules. Only the end point of the leg is tested
// against that single predicted position (plus a time-to-contact check);
// positions later in the traversal are not predicted.
func (p *Planner) collides(from, to geo.Point, params Params) bool {
	for _, flight := range params.OtherFlights {
		otherPos, otherSpeed, ok := p.predictPosition(flight, params.Now)
		if !ok {
			continue
		}
		clearance := requiredClearance(params.SelfIsEmergency, flight.IsEmergency, from, to, otherPos, otherSpeed)
		if geo.WithinRadius(to, otherPos, clearance) {
			return true
		}
		if relSpeed := math.Abs(stepSize - otherSpeed); relSpeed > 0 {
			dist := geo.Distance(to, otherPos)
			tToCollision := dist / relSpeed
			if tToCollision > 0 && tToCollision < 5 && flight.IsEmergency && !params.SelfIsEmergency {
				return true
			}
		}
	}
	return false
}

// requiredClearance returns the minimum separation distance demanded
// between self's candidate point and another drone's predicted position.
func requiredClearance(selfEmergency, otherEmergency bool, from, to, otherPos geo.Point, otherSpeed float64) float64 {
	if !otherEmergency || selfEmergency {
		return baseObstacleRadius
	}
	// Other drone is emergency and self is not: wider berth, tighter if
	// the emergency drone is ahead of self in a similar direction of
	// travel (it has right of way and is less likely to need to react).
	selfHeading := geo.Point{X: to.X - from.X, Y: to.Y - from.Y}
	toOther := geo.Point{X: otherPos.X - from.X, Y: otherPos.Y - from.Y}
	if sameDirection(selfHeading, toOther) {
		return baseObstacleRadius * 2.5
	}
	return baseObstacleRadius * 3
}

func sameDirection(a, b geo.Point) bool {
	dot := a.X*b.X + a.Y*b.Y
	return dot > 0
}

// predictPosition interpolates a flight's position along its route at
// time now, using its recorded start time and speed. Returns false if the
// flight has already completed its route (by path length estimate).
func (p *Planner) predictPosition(f ActiveFlight, now int64) (geo.Point, float64, bool) {
	if len(f.Route) == 0 || f.SpeedMPerSec <= 0 {
		return geo.Point{}, 0, false
	}
	elapsed := float64(now - f.StartTimeUnix)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := elapsed * f.SpeedMPerSec

	for i := 0; i < len(f.Route)-1; i++ {
		a, okA := p.graph.Location(f.Route[i])
		b, okB := p.graph.Location(f.Route[i+1])
		if !okA || !okB {
			continue
		}
		legLen := geo.Distance(geo.Point{X: a.X, Y: a.Y}, geo.Point{X: b.X, Y: b.Y})
		if remaining <= legLen {
			t := 0.0
			if legLen > 0 {
				t = remaining / legLen
			}
			return geo.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}, f.SpeedMPerSec, true
		}
		remaining -= legLen
	}
	// remaining exceeds the route's total length: the flight has already
	// reached its destination and is no longer an obstacle.
	return geo.Point{}, 0, false
}

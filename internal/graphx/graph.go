// Package graphx implements the weighted, undirected floor-plan graph the
// dispatcher and path planner route over: Dijkstra shortest path, a
// k=2 second-shortest-path query used for post-hoc efficiency reporting,
// and a nearest-of-set query used for drone selection. The priority-queue
// shortest-path search is grounded in the reference corpus's space-time
// A* implementation (container/heap with a mutable, indexed min-heap).
package graphx

import (
	"container/heap"
	"fmt"
	"math"

	"hospitaldrones/internal/geo"
	"hospitaldrones/models"
)

// edge is one directed half of a bidirectional connection.
type edge struct {
	to     string
	weight float64
}

// Graph is a weighted undirected graph of Locations.
type Graph struct {
	locations map[string]models.Location
	adjacency map[string][]edge
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		locations: make(map[string]models.Location),
		adjacency: make(map[string][]edge),
	}
}

// AddLocation registers a node. Re-adding the same id overwrites its
// metadata but keeps existing edges.
func (g *Graph) AddLocation(loc models.Location) {
	g.locations[loc.ID] = loc
	if _, ok := g.adjacency[loc.ID]; !ok {
		g.adjacency[loc.ID] = nil
	}
}

// Location returns the node metadata, if known.
func (g *Graph) Location(id string) (models.Location, bool) {
	loc, ok := g.locations[id]
	return loc, ok
}

// Locations returns all registered nodes, in no particular order.
func (g *Graph) Locations() []models.Location {
	out := make([]models.Location, 0, len(g.locations))
	for _, l := range g.locations {
		out = append(out, l)
	}
	return out
}

// AddEdge connects a and b with the given weight. When bidirectional is
// true (the default topology), the reverse edge is added too, preserving
// the invariant that the adjacency list is symmetric.
func (g *Graph) AddEdge(a, b string, weight float64, bidirectional bool) error {
	if _, ok := g.locations[a]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLocation, a)
	}
	if _, ok := g.locations[b]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLocation, b)
	}
	g.adjacency[a] = append(g.adjacency[a], edge{to: b, weight: weight})
	if bidirectional {
		g.adjacency[b] = append(g.adjacency[b], edge{to: a, weight: weight})
	}
	return nil
}

// Neighbors returns the (id, weight) pairs reachable directly from id.
func (g *Graph) Neighbors(id string) []struct {
	ID     string
	Weight float64
} {
	edges := g.adjacency[id]
	out := make([]struct {
		ID     string
		Weight float64
	}, len(edges))
	for i, e := range edges {
		out[i] = struct {
			ID     string
			Weight float64
		}{ID: e.to, Weight: e.weight}
	}
	return out
}

// pqNode is a mutable, indexed min-heap node over cumulative distance,
// mirroring the reference astar3DNode/astar3DHeap shape.
type pqNode struct {
	id    string
	dist  float64
	index int
}

type nodeHeap []*pqNode

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *nodeHeap) Push(x any) {
	n := x.(*pqNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// shortestPathExcluding runs lazy-deletion Dijkstra from start to target,
// skipping any edge (a,b) that appears in the skip set (used by
// SecondShortestPath's edge-removal search). Returns the node path and
// total weight, or (nil, +Inf) if target is unreachable.
func (g *Graph) shortestPathExcluding(start, target string, skip map[[2]string]bool) ([]string, float64) {
	dist := map[string]float64{start: 0}
	prev := map[string]string{}
	visited := map[string]bool{}

	h := &nodeHeap{}
	heap.Init(h)
	heap.Push(h, &pqNode{id: start, dist: 0})

	for h.Len() > 0 {
		cur := heap.Pop(h).(*pqNode)
		if visited[cur.id] {
			continue // lazy deletion: stale entry
		}
		visited[cur.id] = true
		if cur.id == target {
			break // early termination on pop
		}
		for _, e := range g.adjacency[cur.id] {
			if skip != nil && (skip[[2]string{cur.id, e.to}] || skip[[2]string{e.to, cur.id}]) {
				continue
			}
			nd := cur.dist + e.weight
			if existing, ok := dist[e.to]; !ok || nd < existing {
				dist[e.to] = nd
				prev[e.to] = cur.id
				heap.Push(h, &pqNode{id: e.to, dist: nd})
			}
		}
	}

	total, ok := dist[target]
	if !ok {
		return nil, math.Inf(1)
	}
	path := []string{target}
	for path[len(path)-1] != start {
		p, ok := prev[path[len(path)-1]]
		if !ok {
			return nil, math.Inf(1)
		}
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, total
}

// ShortestPath returns the lowest-weight node path from start to target.
// An unknown start node is a hard error; an unknown target yields an
// empty path and +Inf, same as an unreachable one.
func (g *Graph) ShortestPath(start, target string) ([]string, float64, error) {
	if _, ok := g.locations[start]; !ok {
		return nil, math.Inf(1), fmt.Errorf("%w: %s", ErrUnknownLocation, start)
	}
	if _, ok := g.locations[target]; !ok {
		return nil, math.Inf(1), nil
	}
	if start == target {
		return []string{start}, 0, nil
	}
	path, total := g.shortestPathExcluding(start, target, nil)
	return path, total, nil
}

// SecondShortestPath returns the best alternative path strictly different
// from the shortest one, found by removing each edge of the shortest path
// in turn and re-running Dijkstra. Returns (nil, +Inf) when no alternative
// exists.
func (g *Graph) SecondShortestPath(start, target string) ([]string, float64, error) {
	shortest, _, err := g.ShortestPath(start, target)
	if err != nil {
		return nil, math.Inf(1), err
	}
	if len(shortest) < 2 {
		return nil, math.Inf(1), nil
	}

	var best []string
	bestWeight := math.Inf(1)
	for i := 0; i+1 < len(shortest); i++ {
		a, b := shortest[i], shortest[i+1]
		skip := map[[2]string]bool{{a, b}: true}
		path, weight := g.shortestPathExcluding(start, target, skip)
		if path == nil {
			continue
		}
		if !samePath(path, shortest) && weight < bestWeight {
			best = path
			bestWeight = weight
		}
	}
	if best == nil {
		return nil, math.Inf(1), nil
	}
	return best, bestWeight, nil
}

func samePath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// NearestOfSet runs a single-source Dijkstra from `from` and returns the
// candidate with minimum distance, or ("", false) if none is reachable.
func (g *Graph) NearestOfSet(from string, candidates []string) (string, float64, bool) {
	if len(candidates) == 0 {
		return "", math.Inf(1), false
	}
	if _, ok := g.locations[from]; !ok {
		return "", math.Inf(1), false
	}

	want := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		want[c] = true
	}

	dist := map[string]float64{from: 0}
	visited := map[string]bool{}
	h := &nodeHeap{}
	heap.Init(h)
	heap.Push(h, &pqNode{id: from, dist: 0})

	bestID := ""
	bestDist := math.Inf(1)
	remaining := len(want)

	for h.Len() > 0 && remaining > 0 {
		cur := heap.Pop(h).(*pqNode)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true
		if want[cur.id] {
			if cur.dist < bestDist {
				bestDist = cur.dist
				bestID = cur.id
			}
			remaining--
		}
		for _, e := range g.adjacency[cur.id] {
			nd := cur.dist + e.weight
			if existing, ok := dist[e.to]; !ok || nd < existing {
				dist[e.to] = nd
				heap.Push(h, &pqNode{id: e.to, dist: nd})
			}
		}
	}

	if bestID == "" {
		return "", math.Inf(1), false
	}
	return bestID, bestDist, true
}

// EuclideanDistance returns the straight-line distance between two known
// locations, used by the planner's sampling and rewiring steps.
func (g *Graph) EuclideanDistance(a, b string) (float64, bool) {
	la, ok := g.locations[a]
	if !ok {
		return 0, false
	}
	lb, ok := g.locations[b]
	if !ok {
		return 0, false
	}
	return geo.Distance(geo.Point{X: la.X, Y: la.Y}, geo.Point{X: lb.X, Y: lb.Y}), true
}

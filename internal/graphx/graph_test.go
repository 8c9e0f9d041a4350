package graphx

import (
	"math"
	"testing"

	"hospitaldrones/models"
)

// eightNodeFloorplan builds an 8-node test floor plan spanning two wings,
// used only by the graph tests.
func eightNodeFloorplan(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for i := 1; i <= 8; i++ {
		g.AddLocation(models.Location{ID: nodeID(i), Name: nodeID(i), X: float64(i), Y: 0, Floor: 1})
	}
	edges := [][3]any{
		{1, 2, 5.0}, {2, 3, 5.0}, {3, 4, 5.0}, {1, 4, 12.0},
		{4, 5, 4.0}, {5, 6, 4.0}, {6, 7, 4.0}, {5, 8, 6.0},
		{2, 6, 9.0},
	}
	for _, e := range edges {
		if err := g.AddEdge(nodeID(e[0].(int)), nodeID(e[1].(int)), e[2].(float64), true); err != nil {
			t.Fatalf("add edge: %v", err)
		}
	}
	return g
}

func nodeID(i int) string {
	return string(rune('0' + i))
}

func TestShortestPath_Basic(t *testing.T) {
	g := eightNodeFloorplan(t)
	path, weight, err := g.ShortestPath(nodeID(1), nodeID(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if weight != 10 {
		t.Fatalf("expected weight 10 via 1-2-3, got %v (%v)", weight, path)
	}
}

func TestShortestPath_UnknownStartIsHardError(t *testing.T) {
	g := eightNodeFloorplan(t)
	if _, _, err := g.ShortestPath("nope", nodeID(1)); err == nil {
		t.Fatal("expected error for unknown start")
	}
}

func TestShortestPath_UnknownTargetIsEmpty(t *testing.T) {
	g := eightNodeFloorplan(t)
	path, weight, err := g.ShortestPath(nodeID(1), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != nil || !math.IsInf(weight, 1) {
		t.Fatalf("expected empty path and +Inf, got %v %v", path, weight)
	}
}

func TestShortestPath_Unreachable(t *testing.T) {
	g := New()
	g.AddLocation(models.Location{ID: "a"})
	g.AddLocation(models.Location{ID: "b"})
	path, weight, err := g.ShortestPath("a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != nil || !math.IsInf(weight, 1) {
		t.Fatalf("expected unreachable result, got %v %v", path, weight)
	}
}

func TestSecondShortestPath_DifferentFromShortest(t *testing.T) {
	g := eightNodeFloorplan(t)
	shortest, shortestW, _ := g.ShortestPath(nodeID(1), nodeID(4))
	second, secondW, err := g.SecondShortestPath(nodeID(1), nodeID(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second == nil {
		t.Fatal("expected an alternative path to exist")
	}
	if samePath(second, shortest) {
		t.Fatalf("second path must differ from shortest: %v", second)
	}
	if secondW < shortestW {
		t.Fatalf("second path cannot be cheaper than shortest: %v < %v", secondW, shortestW)
	}
}

func TestSecondShortestPath_NoAlternative(t *testing.T) {
	g := New()
	g.AddLocation(models.Location{ID: "a"})
	g.AddLocation(models.Location{ID: "b"})
	g.AddLocation(models.Location{ID: "c"})
	_ = g.AddEdge("a", "b", 1, true)
	_ = g.AddEdge("b", "c", 1, true)
	_, weight, err := g.SecondShortestPath("a", "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsInf(weight, 1) {
		t.Fatalf("expected no alternative path, got weight %v", weight)
	}
}

func TestNearestOfSet(t *testing.T) {
	g := eightNodeFloorplan(t)
	best, dist, ok := g.NearestOfSet(nodeID(1), []string{nodeID(6), nodeID(7), nodeID(8)})
	if !ok {
		t.Fatal("expected a reachable candidate")
	}
	if best != nodeID(6) {
		t.Fatalf("expected nearest candidate to be node 6, got %s (dist=%v)", best, dist)
	}
}

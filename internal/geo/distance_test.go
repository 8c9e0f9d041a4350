package geo

import "testing"

func TestDistance_ZeroForSamePoint(t *testing.T) {
	p := Point{X: 3, Y: 4}
	if got := Distance(p, p); got != 0 {
		t.Fatalf("Distance(p, p) = %v, want 0", got)
	}
}

func TestDistance_PythagoreanTriple(t *testing.T) {
	if got := Distance(Point{0, 0}, Point{3, 4}); got != 5 {
		t.Fatalf("Distance = %v, want 5", got)
	}
}

func TestWithinRadius_Boundary(t *testing.T) {
	a := Point{0, 0}
	b := Point{0, 1}
	if !WithinRadius(a, b, 1) {
		t.Fatal("expected point exactly at radius to count as within")
	}
	if WithinRadius(a, b, 0.5) {
		t.Fatal("expected point beyond radius to be excluded")
	}
}

func TestSteer_StopsShortOfTargetBeyondMaxStep(t *testing.T) {
	from := Point{0, 0}
	to := Point{10, 0}
	got := Steer(from, to, 4)
	if got.X != 4 || got.Y != 0 {
		t.Fatalf("expected steered point (4,0), got %+v", got)
	}
}

func TestSteer_ReachesTargetWithinMaxStep(t *testing.T) {
	from := Point{0, 0}
	to := Point{2, 0}
	got := Steer(from, to, 10)
	if got != to {
		t.Fatalf("expected steer to reach target directly, got %+v", got)
	}
}

func TestSegmentsIntersect_CrossingLines(t *testing.T) {
	if !SegmentsIntersect(Point{0, 0}, Point{4, 4}, Point{0, 4}, Point{4, 0}) {
		t.Fatal("expected crossing diagonals to intersect")
	}
}

func TestSegmentsIntersect_ParallelNonTouching(t *testing.T) {
	if SegmentsIntersect(Point{0, 0}, Point{4, 0}, Point{0, 1}, Point{4, 1}) {
		t.Fatal("expected parallel segments not to intersect")
	}
}

package catalog

import "testing"

func sumWeight(c *Catalog, bin map[string]int) float64 {
	var total float64
	for id, n := range bin {
		it, _ := c.Lookup(id)
		total += float64(n) * it.WeightKG
	}
	return total
}

func TestValidate_EmptyPayloadFails(t *testing.T) {
	c := Default()
	if err := c.Validate(map[string]int{}); err == nil {
		t.Fatal("expected error on empty payload")
	}
}

func TestSplit_UnderCapacity_SingleBin(t *testing.T) {
	c := Default()
	items := map[string]int{"med_insulin": 2} // 0.1kg total
	bins, err := c.Split(items, false)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(bins) != 1 {
		t.Fatalf("expected single bin, got %d", len(bins))
	}
	if bins[0]["med_insulin"] != 2 {
		t.Fatalf("bin contents mismatch: %+v", bins[0])
	}
}

func TestSplit_ExactlyAtCapacity_SingleBin(t *testing.T) {
	c := Default()
	// food_meal = 0.4kg, 5 units = 2.0kg exactly.
	items := map[string]int{"food_meal": 5}
	bins, err := c.Split(items, false)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(bins) != 1 {
		t.Fatalf("expected exactly one bin at capacity, got %d bins", len(bins))
	}
}

func TestSplit_OverCapacity_MultipleBins(t *testing.T) {
	c := Default()
	// 5 food_meal (2.0kg) + 4 med_insulin (0.2kg) = 2.2kg total.
	items := map[string]int{"food_meal": 5, "med_insulin": 4}
	bins, err := c.Split(items, true)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(bins) < 2 {
		t.Fatalf("expected at least two bins for 2.2kg payload, got %d", len(bins))
	}
	for i, b := range bins {
		if w := sumWeight(c, b); w > MaxPayloadCapacityKG+1e-9 {
			t.Fatalf("bin %d exceeds capacity: %.3f", i, w)
		}
	}
	// Critical patient: insulin (emergency priority 9) should be packed
	// ahead of meals (emergency priority 2) into the first bin.
	if _, ok := bins[0]["med_insulin"]; !ok {
		t.Fatalf("expected insulin in first bin under critical packing, got %+v", bins[0])
	}
}

func TestSplit_PreservesAllUnits(t *testing.T) {
	c := Default()
	items := map[string]int{"food_meal": 5, "med_insulin": 4}
	bins, err := c.Split(items, false)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	totals := map[string]int{}
	for _, b := range bins {
		for id, n := range b {
			totals[id] += n
		}
	}
	for id, want := range items {
		if totals[id] != want {
			t.Fatalf("unit count mismatch for %s: want %d got %d", id, want, totals[id])
		}
	}
}

func TestTotalWeight(t *testing.T) {
	c := Default()
	w, unknown := c.TotalWeight(map[string]int{"food_meal": 2})
	if len(unknown) != 0 {
		t.Fatalf("unexpected unknown items: %v", unknown)
	}
	if w != 0.8 {
		t.Fatalf("expected 0.8kg, got %.3f", w)
	}
}

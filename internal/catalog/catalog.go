// Package catalog holds the fixed, read-only item catalog consulted by the
// dispatcher: item weights, the payload-capacity constant, and the
// priority-aware bin-packing splitter used when a request's payload
// exceeds a single drone's capacity.
//
// The catalog is an out-of-scope external collaborator per the top-level
// specification (item weights are a read-only input); this package is
// therefore a small, dependency-free table plus pure functions, grounded
// in the same fixed-category-record shape the reference DAG optimizer
// uses for its strategy enums.
package catalog

import (
	"fmt"
	"sort"
)

// MaxPayloadCapacityKG is the maximum payload weight a single drone flight
// may carry.
const MaxPayloadCapacityKG = 2.0

// Item is a fixed category-indexed catalog record.
type Item struct {
	ID                string
	Name              string
	WeightKG          float64
	EmergencyPriority int // 1..10, used when the patient is critical
	RoutinePriority   int // 1..10, used otherwise
}

// defaultCatalog is the fixed set of deliverable medical items. It mirrors
// a real hospital formulary closely enough to exercise the splitter's
// edge cases (light bulky items vs heavy dense ones).
var defaultCatalog = map[string]Item{
	"med_insulin":       {ID: "med_insulin", Name: "Insulin vial", WeightKG: 0.05, EmergencyPriority: 9, RoutinePriority: 6},
	"med_epinephrine":   {ID: "med_epinephrine", Name: "Epinephrine auto-injector", WeightKG: 0.03, EmergencyPriority: 10, RoutinePriority: 4},
	"med_antibiotics":   {ID: "med_antibiotics", Name: "Antibiotic course", WeightKG: 0.2, EmergencyPriority: 7, RoutinePriority: 6},
	"blood_unit":        {ID: "blood_unit", Name: "Blood unit", WeightKG: 0.5, EmergencyPriority: 10, RoutinePriority: 3},
	"iv_fluid_bag":      {ID: "iv_fluid_bag", Name: "IV fluid bag", WeightKG: 1.0, EmergencyPriority: 8, RoutinePriority: 5},
	"food_meal":         {ID: "food_meal", Name: "Meal tray", WeightKG: 0.4, EmergencyPriority: 2, RoutinePriority: 8},
	"bandage_kit":       {ID: "bandage_kit", Name: "Bandage kit", WeightKG: 0.15, EmergencyPriority: 6, RoutinePriority: 5},
	"oxygen_cartridge":  {ID: "oxygen_cartridge", Name: "Oxygen cartridge", WeightKG: 0.9, EmergencyPriority: 9, RoutinePriority: 4},
}

// Catalog is a read-only lookup table of Items, keyed by item id. The zero
// value is not usable; construct with New or Default.
type Catalog struct {
	items map[string]Item
}

// Default returns a Catalog backed by the built-in formulary.
func Default() *Catalog {
	return &Catalog{items: defaultCatalog}
}

// New constructs a Catalog from an explicit item set, for tests that need
// deterministic weights/priorities distinct from the built-in formulary.
func New(items map[string]Item) *Catalog {
	cp := make(map[string]Item, len(items))
	for k, v := range items {
		cp[k] = v
	}
	return &Catalog{items: cp}
}

// Lookup returns the Item for id, if known.
func (c *Catalog) Lookup(id string) (Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// TotalWeight sums count * item weight over the payload map. Unknown item
// ids contribute zero weight and are reported via the returned slice of
// unknown ids so callers can decide whether to reject the request.
func (c *Catalog) TotalWeight(items map[string]int) (float64, []string) {
	var total float64
	var unknown []string
	for id, count := range items {
		it, ok := c.items[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		total += float64(count) * it.WeightKG
	}
	sort.Strings(unknown)
	return total, unknown
}

// Validate rejects only an empty payload. It never fails on overweight;
// capacity is handled by Split.
func (c *Catalog) Validate(items map[string]int) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: payload is empty", ErrInvalidPayload)
	}
	total := 0
	for _, count := range items {
		total += count
	}
	if total <= 0 {
		return fmt.Errorf("%w: payload has zero units", ErrInvalidPayload)
	}
	return nil
}

// unit is one item instance pending assignment to a bin, preserving the
// original item id so bins can be reassembled into count maps.
type unit struct {
	itemID   string
	weightKG float64
	priority int
}

// Split performs greedy bin-packing: units are sorted by
// (−priority, +weight) using EmergencyPriority when patientCritical else
// RoutinePriority, then packed into the current bin until the next unit
// would exceed MaxPayloadCapacityKG, at which point a new bin opens.
// Every unit is preserved; bins are returned in fill order so earlier
// bins are never topped up after a later one has been opened.
func (c *Catalog) Split(items map[string]int, patientCritical bool) ([]map[string]int, error) {
	if err := c.Validate(items); err != nil {
		return nil, err
	}

	units := make([]unit, 0)
	for id, count := range items {
		it, ok := c.items[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown item %q", ErrInvalidPayload, id)
		}
		priority := it.RoutinePriority
		if patientCritical {
			priority = it.EmergencyPriority
		}
		for i := 0; i < count; i++ {
			units = append(units, unit{itemID: id, weightKG: it.WeightKG, priority: priority})
		}
	}

	sort.SliceStable(units, func(i, j int) bool {
		if units[i].priority != units[j].priority {
			return units[i].priority > units[j].priority
		}
		return units[i].weightKG < units[j].weightKG
	})

	var bins []map[string]int
	var binWeights []float64
	for _, u := range units {
		placed := false
		if len(bins) > 0 {
			last := len(bins) - 1
			if binWeights[last]+u.weightKG <= MaxPayloadCapacityKG+1e-9 {
				bins[last][u.itemID]++
				binWeights[last] += u.weightKG
				placed = true
			}
		}
		if !placed {
			bins = append(bins, map[string]int{u.itemID: 1})
			binWeights = append(binWeights, u.weightKG)
		}
	}
	return bins, nil
}

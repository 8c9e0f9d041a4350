package models

// Location identifies a node in the hospital's floor-plan graph. It is
// immutable once the graph is constructed.
type Location struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Floor int     `json:"floor"`
}

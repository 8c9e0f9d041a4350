package graphx

import "errors"

// ErrUnknownLocation is returned when an operation references a location
// id that was never registered via AddLocation.
var ErrUnknownLocation = errors.New("graphx: unknown location")

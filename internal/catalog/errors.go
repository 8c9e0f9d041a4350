package catalog

import "errors"

// ErrInvalidPayload is returned when a payload map is empty, has zero
// total units, or references an unknown catalog item.
var ErrInvalidPayload = errors.New("catalog: invalid payload")

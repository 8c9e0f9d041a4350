package dispatch

import "errors"

var (
	// ErrUnknownLocation is returned when a location id does not exist in
	// the dispatcher's graph (add_drone, create_request).
	ErrUnknownLocation = errors.New("dispatch: unknown location")
	// ErrEmptyPayload is returned when create_request is given no items.
	ErrEmptyPayload = errors.New("dispatch: payload is empty")
	// ErrUnknownPatient is returned when create_request names a patient id
	// the patient store cannot resolve.
	ErrUnknownPatient = errors.New("dispatch: unknown patient")
	// ErrUnknownRequest is returned by any operation keyed on a request id
	// the dispatcher has never seen.
	ErrUnknownRequest = errors.New("dispatch: unknown request")
	// ErrUnknownDrone is returned by any operation keyed on a drone id the
	// dispatcher has never seen.
	ErrUnknownDrone = errors.New("dispatch: unknown drone")
)

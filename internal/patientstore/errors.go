package patientstore

import "errors"

// ErrInvalidPatientID is returned when a Request's PatientID is not a
// valid patients.id reference.
var ErrInvalidPatientID = errors.New("patientstore: invalid patient id")

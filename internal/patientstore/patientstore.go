// Package patientstore is the dispatcher's named view onto the patient
// data the priority function consults: it is a thin, read-mostly facade
// over repository.PatientRepository (the SQLite persistence layer),
// giving the priority-scoring dependency its own seam so the dispatcher
// depends on a small interface rather than the full repository package.
// The split mirrors the teacher's own habit of keeping a narrow
// repository.*I interface next to the concrete *Repository type.
package patientstore

import (
	"context"

	"hospitaldrones/models"
	"hospitaldrones/repository"
)

// Store is the read-only patient lookup the dispatcher's priority
// scoring consults when a Request carries a PatientID.
type Store interface {
	Lookup(ctx context.Context, patientID string) (*models.Patient, error)
}

// sqliteStore adapts repository.PatientRepositoryI (int64 ids) to the
// dispatcher's string-keyed Request.PatientID field.
type sqliteStore struct {
	repo repository.PatientRepositoryI
}

// New wraps a PatientRepository as a Store.
func New(repo repository.PatientRepositoryI) Store {
	return &sqliteStore{repo: repo}
}

// Lookup resolves patientID (the decimal string form of the patients.id
// primary key) to a Patient, or (nil, nil) if patientID is empty or
// unknown.
func (s *sqliteStore) Lookup(ctx context.Context, patientID string) (*models.Patient, error) {
	if patientID == "" {
		return nil, nil
	}
	id, err := parsePatientID(patientID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

package repository

import (
	"context"
	"time"

	"hospitaldrones/models"
)

// UserRepositoryI defines operations on User entities (gRPC-adapter
// authentication principals).
type UserRepositoryI interface {
	Create(ctx context.Context, username string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

// PatientRepositoryI defines read access to the patient store the
// priority function consults for unsupplied prioritization attributes.
type PatientRepositoryI interface {
	GetByID(ctx context.Context, id int64) (*models.Patient, error)
	List(ctx context.Context, limit, offset int) ([]models.Patient, error)
}

// FleetRepositoryI defines operations on the persisted drone provisioning
// roster (not the dispatcher's in-memory live state).
type FleetRepositoryI interface {
	Create(ctx context.Context, rec *FleetDroneRecord) (*FleetDroneRecord, error)
	GetByPublicID(ctx context.Context, publicID string) (*FleetDroneRecord, error)
	GetBySerial(ctx context.Context, serial string) (*FleetDroneRecord, error)
	ListAll(ctx context.Context, nameOrSerialContains string) ([]FleetDroneRecord, error)
}

// DeliveryLogRepositoryI defines the completed-request audit trail.
type DeliveryLogRepositoryI interface {
	Append(ctx context.Context, req *models.Request) error
	ListSince(ctx context.Context, since time.Time) ([]DeliveryLogEntry, error)
}

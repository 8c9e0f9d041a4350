package repository

import (
	"context"
	"database/sql"
	"time"

	"hospitaldrones/models"
)

// DeliveryLogRepository is an append-only audit trail of completed
// requests: one row per Request (including each split child) once it
// reaches RequestStatusCompleted. It replaces the reference order
// repository's read/write CRUD surface with a write-once log, since
// completed requests are immutable history rather than live state.
type DeliveryLogRepository struct {
	db *sql.DB
}

func NewDeliveryLogRepository(db *sql.DB) *DeliveryLogRepository {
	return &DeliveryLogRepository{db: db}
}

// Append records a completed request's delivery metrics. It is safe to
// call at most once per request id; this repository does not enforce
// that, and the dispatcher does not call Append.
func (r *DeliveryLogRepository) Append(ctx context.Context, req *models.Request) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var parentID sql.NullString
	if req.ParentRequestID != "" {
		parentID = sql.NullString{String: req.ParentRequestID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO delivery_log (
			request_public_id, parent_public_id, drone_public_id, triage_class,
			distance_meters, drone_energy_kwh, comparison_energy_kwh, energy_saved_kwh,
			co2_saved_kg, traditional_method, path_efficiency_pct
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, parentID, req.AssignedDroneID, req.TriageClass.Name,
		req.DistanceMeters, req.DroneEnergyKWh, req.ComparisonEnergyKWh, req.EnergySavedKWh,
		req.CO2SavedKg, req.TraditionalMethod, req.PathEfficiencyPct,
	)
	return err
}

// DeliveryLogEntry is a row of the audit trail. The dispatcher's
// statistics and energy reports are computed from its in-memory state,
// not from these rows.
type DeliveryLogEntry struct {
	RequestPublicID     string
	ParentPublicID      string
	DronePublicID       string
	TriageClass         string
	DistanceMeters      float64
	DroneEnergyKWh      float64
	ComparisonEnergyKWh float64
	EnergySavedKWh      float64
	CO2SavedKg          float64
	TraditionalMethod   string
	PathEfficiencyPct   float64
	CompletedAt         time.Time
}

// ListSince returns every completed delivery recorded after since,
// ordered oldest first, for statistics aggregation.
func (r *DeliveryLogRepository) ListSince(ctx context.Context, since time.Time) ([]DeliveryLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT request_public_id, parent_public_id, drone_public_id, triage_class,
		       distance_meters, drone_energy_kwh, comparison_energy_kwh, energy_saved_kwh,
		       co2_saved_kg, traditional_method, path_efficiency_pct, completed_at
		FROM delivery_log WHERE completed_at >= ? ORDER BY completed_at ASC`,
		since.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DeliveryLogEntry
	for rows.Next() {
		var e DeliveryLogEntry
		var parentID, completedAt sql.NullString
		if err := rows.Scan(&e.RequestPublicID, &parentID, &e.DronePublicID, &e.TriageClass,
			&e.DistanceMeters, &e.DroneEnergyKWh, &e.ComparisonEnergyKWh, &e.EnergySavedKWh,
			&e.CO2SavedKg, &e.TraditionalMethod, &e.PathEfficiencyPct, &completedAt); err != nil {
			return nil, err
		}
		if parentID.Valid {
			e.ParentPublicID = parentID.String
		}
		if completedAt.Valid {
			if t, perr := time.Parse("2006-01-02 15:04:05", completedAt.String); perr == nil {
				e.CompletedAt = t
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

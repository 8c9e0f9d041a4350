package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// FleetDroneRecord is the persisted provisioning record for a drone: the
// static facts assigned at registration time. The dispatcher's live
// models.Drone (battery level, status, position) is runtime-only and
// never round-trips through this table; FleetRepository exists purely so
// the fleet roster survives a restart and admin tooling can list it.
type FleetDroneRecord struct {
	ID                 int64
	PublicID           string
	SerialNumber       string
	Name               string
	HomeLocationID     string
	IsEmergency        bool
	BatteryCapacityKWh float64
	RegisteredAt       time.Time
}

// FleetRepository persists the drone provisioning roster. Grounded on the
// reference drone repository's CRUD-plus-filtered-list shape, adapted to
// a roster table instead of a live-status table.
type FleetRepository struct {
	db *sql.DB
}

func NewFleetRepository(db *sql.DB) *FleetRepository {
	return &FleetRepository{db: db}
}

func (r *FleetRepository) Create(ctx context.Context, rec *FleetDroneRecord) (*FleetDroneRecord, error) {
	if rec == nil {
		return nil, errors.New("fleet record is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO fleet_drones (public_id, serial_number, name, home_location_id, is_emergency, battery_capacity_kwh)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.PublicID, rec.SerialNumber, rec.Name, rec.HomeLocationID, boolToInt(rec.IsEmergency), rec.BatteryCapacityKWh)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	rec.ID = id
	return rec, nil
}

func (r *FleetRepository) GetByPublicID(ctx context.Context, publicID string) (*FleetDroneRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanFleetRow(r.db.QueryRowContext(ctx, `
		SELECT id, public_id, serial_number, name, home_location_id, is_emergency, battery_capacity_kwh, registered_at
		FROM fleet_drones WHERE public_id = ?`, publicID))
}

func (r *FleetRepository) GetBySerial(ctx context.Context, serial string) (*FleetDroneRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanFleetRow(r.db.QueryRowContext(ctx, `
		SELECT id, public_id, serial_number, name, home_location_id, is_emergency, battery_capacity_kwh, registered_at
		FROM fleet_drones WHERE serial_number = ?`, serial))
}

func scanFleetRow(row *sql.Row) (*FleetDroneRecord, error) {
	var rec FleetDroneRecord
	var isEmergency int
	var registeredAt string
	err := row.Scan(&rec.ID, &rec.PublicID, &rec.SerialNumber, &rec.Name, &rec.HomeLocationID,
		&isEmergency, &rec.BatteryCapacityKWh, &registeredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec.IsEmergency = isEmergency != 0
	if t, perr := time.Parse("2006-01-02 15:04:05", registeredAt); perr == nil {
		rec.RegisteredAt = t
	}
	return &rec, nil
}

// ListAll returns the full roster ordered by id, optionally filtered to a
// substring of name or serial number.
func (r *FleetRepository) ListAll(ctx context.Context, nameOrSerialContains string) ([]FleetDroneRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT id, public_id, serial_number, name, home_location_id, is_emergency, battery_capacity_kwh, registered_at FROM fleet_drones`
	var args []any
	if s := strings.TrimSpace(nameOrSerialContains); s != "" {
		query += " WHERE name LIKE ? OR serial_number LIKE ?"
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FleetDroneRecord
	for rows.Next() {
		var rec FleetDroneRecord
		var isEmergency int
		var registeredAt string
		if err := rows.Scan(&rec.ID, &rec.PublicID, &rec.SerialNumber, &rec.Name, &rec.HomeLocationID,
			&isEmergency, &rec.BatteryCapacityKWh, &registeredAt); err != nil {
			return nil, err
		}
		rec.IsEmergency = isEmergency != 0
		if t, perr := time.Parse("2006-01-02 15:04:05", registeredAt); perr == nil {
			rec.RegisteredAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *FleetRepository) Delete(ctx context.Context, publicID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `DELETE FROM fleet_drones WHERE public_id = ?`, publicID)
	return err
}

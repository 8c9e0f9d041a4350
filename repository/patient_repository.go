package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hospitaldrones/models"
)

// PatientRepository is the SQLite-backed patient store the priority
// function consults to fill in prioritization attributes a request did
// not explicitly supply. It follows UserRepository's shape: short
// per-call contexts, nil-on-not-found rather than a sentinel error.
type PatientRepository struct {
	db *sql.DB
}

func NewPatientRepository(db *sql.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) GetByID(ctx context.Context, id int64) (*models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p models.Patient
	var lifeYears, clinicalSeverity sql.NullFloat64
	var isParent, criticalVitals int
	err := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, age, risk_score, quality_of_life_score,
		       expected_life_years_gained, clinical_severity_score, is_parent,
		       social_role, lifestyle_responsibility, lifestyle_risk_count,
		       critical_vitals, health_risk_count, days_in_hospital
		FROM patients WHERE id = ?`, id).Scan(
		&p.ID, &p.FullName, &p.Age, &p.RiskScore, &p.QualityOfLifeScore,
		&lifeYears, &clinicalSeverity, &isParent,
		&p.SocialRole, &p.LifestyleResponsibility, &p.LifestyleRiskCount,
		&criticalVitals, &p.HealthRiskCount, &p.DaysInHospital,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if lifeYears.Valid {
		p.ExpectedLifeYearsGained = &lifeYears.Float64
	}
	if clinicalSeverity.Valid {
		p.ClinicalSeverityScore = &clinicalSeverity.Float64
	}
	p.IsParent = isParent != 0
	p.CriticalVitals = criticalVitals != 0
	return &p, nil
}

// Create inserts a patient record. Used by seed data loading and tests;
// the dispatcher itself only ever reads patients.
func (r *PatientRepository) Create(ctx context.Context, p models.Patient) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO patients (
			full_name, age, risk_score, quality_of_life_score,
			expected_life_years_gained, clinical_severity_score, is_parent,
			social_role, lifestyle_responsibility, lifestyle_risk_count,
			critical_vitals, health_risk_count, days_in_hospital
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.FullName, p.Age, p.RiskScore, p.QualityOfLifeScore,
		p.ExpectedLifeYearsGained, p.ClinicalSeverityScore, boolToInt(p.IsParent),
		p.SocialRole, p.LifestyleResponsibility, p.LifestyleRiskCount,
		boolToInt(p.CriticalVitals), p.HealthRiskCount, p.DaysInHospital,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *PatientRepository) List(ctx context.Context, limit, offset int) ([]models.Patient, error) {
	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, full_name, age, risk_score, quality_of_life_score,
		       expected_life_years_gained, clinical_severity_score, is_parent,
		       social_role, lifestyle_responsibility, lifestyle_risk_count,
		       critical_vitals, health_risk_count, days_in_hospital
		FROM patients ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Patient
	for rows.Next() {
		var p models.Patient
		var lifeYears, clinicalSeverity sql.NullFloat64
		var isParent, criticalVitals int
		if err := rows.Scan(
			&p.ID, &p.FullName, &p.Age, &p.RiskScore, &p.QualityOfLifeScore,
			&lifeYears, &clinicalSeverity, &isParent,
			&p.SocialRole, &p.LifestyleResponsibility, &p.LifestyleRiskCount,
			&criticalVitals, &p.HealthRiskCount, &p.DaysInHospital,
		); err != nil {
			return nil, err
		}
		if lifeYears.Valid {
			p.ExpectedLifeYearsGained = &lifeYears.Float64
		}
		if clinicalSeverity.Valid {
			p.ClinicalSeverityScore = &clinicalSeverity.Float64
		}
		p.IsParent = isParent != 0
		p.CriticalVitals = criticalVitals != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

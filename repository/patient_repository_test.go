package repository

import (
	"context"
	"testing"

	"hospitaldrones/internal/db"
	"hospitaldrones/models"
)

func TestPatientRepository_CreateAndGet(t *testing.T) {
	d, err := db.Open("file:patientrepo?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	repo := NewPatientRepository(d)
	ctx := context.Background()

	lifeYears := 30.0
	id, err := repo.Create(ctx, models.Patient{
		FullName:                "Jamie Rivera",
		Age:                     34,
		RiskScore:               0.7,
		QualityOfLifeScore:      0.6,
		ExpectedLifeYearsGained: &lifeYears,
		IsParent:                true,
		SocialRole:              "healthcare_worker",
		LifestyleResponsibility: "responsible",
		CriticalVitals:          true,
		HealthRiskCount:         2,
		DaysInHospital:          5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected patient, got nil")
	}
	if got.FullName != "Jamie Rivera" || got.Age != 34 || !got.IsParent || !got.CriticalVitals {
		t.Fatalf("unexpected patient: %+v", got)
	}
	if got.ExpectedLifeYearsGained == nil || *got.ExpectedLifeYearsGained != 30.0 {
		t.Fatalf("expected life years gained to round-trip, got %+v", got.ExpectedLifeYearsGained)
	}
	if got.ClinicalSeverityScore != nil {
		t.Fatalf("expected nil clinical severity score, got %v", *got.ClinicalSeverityScore)
	}
}

func TestPatientRepository_GetByIDMissingReturnsNil(t *testing.T) {
	d, err := db.Open("file:patientrepomissing?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	repo := NewPatientRepository(d)
	got, err := repo.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing patient, got %+v", got)
	}
}

func TestPatientRepository_List(t *testing.T) {
	d, err := db.Open("file:patientrepolist?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	repo := NewPatientRepository(d)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := repo.Create(ctx, models.Patient{FullName: "Patient", Age: 20 + i}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	list, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 patients, got %d", len(list))
	}
}

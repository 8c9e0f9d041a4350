package patientstore

import (
	"context"
	"testing"

	"hospitaldrones/models"
)

type fakeRepo struct {
	patients map[int64]*models.Patient
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*models.Patient, error) {
	return f.patients[id], nil
}

func (f *fakeRepo) List(ctx context.Context, limit, offset int) ([]models.Patient, error) {
	return nil, nil
}

func TestLookup_EmptyIDReturnsNil(t *testing.T) {
	s := New(&fakeRepo{patients: map[int64]*models.Patient{}})
	p, err := s.Lookup(context.Background(), "")
	if err != nil || p != nil {
		t.Fatalf("expected (nil, nil) for an empty patient id, got (%v, %v)", p, err)
	}
}

func TestLookup_ResolvesDecimalID(t *testing.T) {
	want := &models.Patient{ID: 7, FullName: "Jane Doe"}
	s := New(&fakeRepo{patients: map[int64]*models.Patient{7: want}})
	got, err := s.Lookup(context.Background(), "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("expected patient 7, got %v", got)
	}
}

func TestLookup_NonNumericIDErrors(t *testing.T) {
	s := New(&fakeRepo{patients: map[int64]*models.Patient{}})
	if _, err := s.Lookup(context.Background(), "not-a-number"); err == nil {
		t.Fatal("expected an error for a non-numeric patient id")
	}
}

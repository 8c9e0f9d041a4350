package priority

import (
	"testing"
	"time"

	"hospitaldrones/models"
)

func baseRequest(class models.TriageClass, waitingMinutes float64, ts time.Time) *models.Request {
	return &models.Request{
		TriageClass:    class,
		Timestamp:      ts,
		Prioritization: models.PrioritizationAttributes{WaitingMinutes: waitingMinutes},
	}
}

func TestHigherPriority_ClassDominatesScore(t *testing.T) {
	now := time.Now()
	emergency := baseRequest(models.CTAS_I, 0, now)
	routine := baseRequest(models.CTAS_V, 500, now.Add(-time.Hour))

	if !HigherPriority(emergency, routine, Score(emergency, nil), Score(routine, nil)) {
		t.Fatal("a CTAS I request must outrank a CTAS V request regardless of score or wait time")
	}
}

func TestHigherPriority_ScoreBreaksTieWithinClass(t *testing.T) {
	now := time.Now()
	critical := Score(baseRequest(models.CTAS_III, 10, now), &models.Patient{RiskScore: 0.9})
	mild := Score(baseRequest(models.CTAS_III, 10, now), &models.Patient{RiskScore: 0.1})
	if critical <= mild {
		t.Fatalf("higher clinical risk must score higher: critical=%v mild=%v", critical, mild)
	}
}

func TestHigherPriority_WaitingTimeMattersWithinClass(t *testing.T) {
	now := time.Now()
	waitedLong := baseRequest(models.CTAS_III, 90, now)
	waitedShort := baseRequest(models.CTAS_III, 1, now)

	if !HigherPriority(waitedLong, waitedShort, Score(waitedLong, nil), Score(waitedShort, nil)) {
		t.Fatal("a longer-waiting request of the same class and otherwise-equal attributes should win")
	}
}

func TestHigherPriority_TertiarySplitSequence(t *testing.T) {
	now := time.Now()
	first := baseRequest(models.CTAS_III, 10, now)
	first.ParentRequestID = "parent-1"
	first.DeliverySequence = 0

	second := baseRequest(models.CTAS_III, 10, now)
	second.ParentRequestID = "parent-1"
	second.DeliverySequence = 1

	s := Score(first, nil)
	if !HigherPriority(first, second, s, s) {
		t.Fatal("earlier delivery sequence within the same split parent must win a tie")
	}
}

func TestHigherPriority_NonSplitBeatsSplitOnTie(t *testing.T) {
	now := time.Now()
	whole := baseRequest(models.CTAS_III, 10, now)
	split := baseRequest(models.CTAS_III, 10, now)
	split.ParentRequestID = "parent-1"

	s := Score(whole, nil)
	if !HigherPriority(whole, split, s, s) {
		t.Fatal("a non-split request should win a tie against a split child")
	}
}

func TestHigherPriority_QuaternaryTimestamp(t *testing.T) {
	older := baseRequest(models.CTAS_III, 10, time.Now().Add(-time.Hour))
	newer := baseRequest(models.CTAS_III, 10, time.Now())
	s := Score(older, nil)
	if !HigherPriority(older, newer, s, Score(newer, nil)) {
		t.Fatal("the older of two otherwise identical requests must win")
	}
}

func TestScore_CriticalVitalsPatientScoresHigherThanNone(t *testing.T) {
	now := time.Now()
	r := baseRequest(models.CTAS_II, 5, now)
	withPatient := Score(r, &models.Patient{CriticalVitals: true, HealthRiskCount: 3, DaysInHospital: 10})
	withoutPatient := Score(r, nil)
	if withPatient <= withoutPatient {
		t.Fatalf("critical vitals patient should score higher: with=%v without=%v", withPatient, withoutPatient)
	}
}

func TestAgeTerm_InfantsAndElderlyWeightedHighest(t *testing.T) {
	if ageTerm(2) != 1.0 {
		t.Fatalf("expected infant age term 1.0, got %v", ageTerm(2))
	}
	if got := ageTerm(80); got < 0.5 {
		t.Fatalf("elderly age term should floor at 0.5, got %v", got)
	}
	if ageTerm(40) >= ageTerm(2) {
		t.Fatalf("midlife age term should be lower than infant: midlife=%v infant=%v", ageTerm(40), ageTerm(2))
	}
}

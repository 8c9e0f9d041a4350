// Package priority implements the dispatcher's two-tier triage ordering:
// CTAS class first, then a weighted "vital priority score" that breaks
// ties within a class, followed by deterministic tertiary/quaternary
// tie-breaks. The heavily-commented scoring-formula layout below follows
// the doc-comment-per-coefficient style of the battery-backtest oracle's
// dispatch strategy (internal/strategy/oracle.go in the pack), applied
// here to a weighted sum instead of a DP value function.
//
// # Vital Priority Score
//
//	score = clinicalSeverity * 30
//	      + min(expectedLifeYearsGained/50, 1) * 25
//	      + min(waitingMinutes/targetResponseMinutes, 2) * 20
//	      + ageTerm * 15
//	      + isParentBonus                                   // +8
//	      + qualityOfLife * 6
//	      + criticalVitalsBonus                              // +10
//	      + min(healthRiskCount*0.5, 5)
//	      + min(daysInHospital/30, 1) * 4
//	      + socialRoleWeight
//	      + lifestyleAdjustment
//
// Patient-attribute terms fall back to a patient-derived value when the
// request does not explicitly supply it; see Score's body for the exact
// fallback used for each term.
package priority

import (
	"math"

	"hospitaldrones/models"
)

// Epsilon is the tolerance used when comparing two vital priority scores,
// to absorb floating-point noise without permitting a real ordering
// inversion.
const Epsilon = 0.01

const (
	wClinicalSeverity   = 30
	wLifeYearsGained    = 25
	wWaiting            = 20
	wAge                = 15
	bonusParent         = 8
	wQualityOfLife      = 6
	bonusCriticalVitals = 10
	wSocialRole         = 1 // multiplier; role weights already carry the scale
	defaultAgeYears     = 40.0
)

var socialRoleWeights = map[string]float64{
	"healthcare_worker": 4,
	"essential_worker":  3,
	"elderly_caregiver": 2.5,
	"general":           1,
}

var lifestyleWeights = map[string]float64{
	"responsible":   0,
	"moderate":      -1,
	"irresponsible": -3,
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ageTerm(age float64) float64 {
	switch {
	case age < 5:
		return 1.0
	case age < 25:
		return clamp(1-age/100+0.3, 0, 1)
	case age > 75:
		return math.Max(0.5, 1-age/100)
	default:
		return 1 - age/100
	}
}

// resolvedAge returns the age to use for the age term and the is_parent /
// expected-life-years fallbacks: the request's explicit age if supplied,
// else the linked patient's age, else a neutral default.
func resolvedAge(req *models.Request, patient *models.Patient) float64 {
	if req.Prioritization.Age != nil {
		return *req.Prioritization.Age
	}
	if patient != nil {
		return float64(patient.Age)
	}
	return defaultAgeYears
}

// Score computes the vital priority score for req, consulting patient
// (which may be nil) for any prioritization attribute the request did not
// explicitly supply.
func Score(req *models.Request, patient *models.Patient) float64 {
	p := req.Prioritization
	age := resolvedAge(req, patient)

	var clinicalSeverity float64
	if p.ClinicalSeverityScore != nil {
		clinicalSeverity = *p.ClinicalSeverityScore
	} else if patient != nil {
		clinicalSeverity = patient.RiskScore
	}

	var lifeYearsGained float64
	if p.ExpectedLifeYearsGained != nil {
		lifeYearsGained = *p.ExpectedLifeYearsGained
	} else if patient != nil && age <= 65 {
		lifeYearsGained = 65 - age
	}

	targetMinutes := req.TriageClass.TargetResponseMinutes
	var waitRatio float64
	if targetMinutes <= 0 {
		if p.WaitingMinutes > 0 {
			waitRatio = 2
		}
	} else {
		waitRatio = math.Min(p.WaitingMinutes/targetMinutes, 2)
	}

	isParent := false
	if p.IsParent != nil {
		isParent = *p.IsParent
	} else if patient != nil {
		isParent = age >= 20 && age <= 60
	}

	var qualityOfLife float64
	if p.QualityOfLifeScore != nil {
		qualityOfLife = *p.QualityOfLifeScore
	} else if patient != nil {
		qualityOfLife = patient.QualityOfLifeScore
	}

	var criticalBonus, healthRiskBonus, hospitalStayBonus float64
	if patient != nil {
		if patient.CriticalVitals {
			criticalBonus = bonusCriticalVitals
		}
		healthRiskBonus = math.Min(float64(patient.HealthRiskCount)*0.5, 5)
		hospitalStayBonus = math.Min(patient.DaysInHospital/30, 1) * 4
	}

	socialRole := ""
	if p.SocialRole != nil {
		socialRole = *p.SocialRole
	} else if patient != nil {
		socialRole = patient.SocialRole
	}
	socialWeight := 1.0 // absent counts as +1, same numeric value as "general"
	if w, ok := socialRoleWeights[socialRole]; ok {
		socialWeight = w
	}

	var lifestyleAdj float64
	lifestyle := ""
	if p.LifestyleResponsibility != nil {
		lifestyle = *p.LifestyleResponsibility
	} else if patient != nil {
		lifestyle = patient.LifestyleResponsibility
	}
	if w, ok := lifestyleWeights[lifestyle]; ok {
		lifestyleAdj = w
	} else if patient != nil {
		lifestyleAdj = -math.Min(float64(patient.LifestyleRiskCount)*0.5, 2)
	}

	score := clinicalSeverity*wClinicalSeverity +
		math.Min(lifeYearsGained/50, 1)*wLifeYearsGained +
		waitRatio*wWaiting +
		ageTerm(age)*wAge +
		qualityOfLife*wQualityOfLife +
		criticalBonus + healthRiskBonus + hospitalStayBonus +
		socialWeight*wSocialRole +
		lifestyleAdj

	if isParent {
		score += bonusParent
	}
	return score
}

// HigherPriority reports whether a must be served before b under the
// dispatcher's total order: CTAS class first, then vital priority score
// (epsilon-tolerant), then the tertiary split/timestamp tie-breaks.
func HigherPriority(a, b *models.Request, scoreA, scoreB float64) bool {
	if a.TriageClass.Value != b.TriageClass.Value {
		return a.TriageClass.Value > b.TriageClass.Value
	}
	if math.Abs(scoreA-scoreB) > Epsilon {
		return scoreA > scoreB
	}
	if tie, higher := tertiaryTieBreak(a, b); tie {
		return higher
	}
	// Quaternary: older timestamp wins.
	return a.Timestamp.Before(b.Timestamp)
}

// tertiaryTieBreak applies the split/parent/sequence tie-break rules. The
// bool return indicates whether the rule produced a decision; when false,
// callers fall through to the quaternary timestamp rule.
func tertiaryTieBreak(a, b *models.Request) (decided bool, aHigher bool) {
	aSplit := a.ParentRequestID != ""
	bSplit := b.ParentRequestID != ""

	if aSplit && bSplit && a.ParentRequestID == b.ParentRequestID {
		return true, a.DeliverySequence < b.DeliverySequence
	}
	if aSplit != bSplit {
		// Between split and non-split of equal score, non-split wins.
		return true, !aSplit
	}
	if aSplit && bSplit {
		// Different parents: lower parent id wins. Parent ids are opaque
		// strings; compare lexicographically for a stable, deterministic
		// order (ids carry a random UUID, so this order is not creation
		// order).
		return true, a.ParentRequestID < b.ParentRequestID
	}
	return false, false
}

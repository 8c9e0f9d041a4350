package models

import "time"

// RequestStatus represents the current progress of a delivery request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAssigned  RequestStatus = "assigned"
	RequestStatusInTransit RequestStatus = "in_transit"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// TriageClass is the closed CTAS I..V enumeration. Higher Value means
// higher clinical priority; Value and TargetResponseMinutes are fixed by
// spec and never derived.
type TriageClass struct {
	Name                  string
	Value                 int
	TargetResponseMinutes float64
}

var (
	CTAS_I   = TriageClass{Name: "ctas_i", Value: 5, TargetResponseMinutes: 0}
	CTAS_II  = TriageClass{Name: "ctas_ii", Value: 4, TargetResponseMinutes: 15}
	CTAS_III = TriageClass{Name: "ctas_iii", Value: 3, TargetResponseMinutes: 30}
	CTAS_IV  = TriageClass{Name: "ctas_iv", Value: 2, TargetResponseMinutes: 60}
	CTAS_V   = TriageClass{Name: "ctas_v", Value: 1, TargetResponseMinutes: 120}
)

// IsEmergency reports whether the class is CTAS I or II.
func (c TriageClass) IsEmergency() bool { return c.Value >= CTAS_II.Value }

// triageAliases maps the accepted boundary input strings (canonical and
// legacy) to a TriageClass. Held here rather than in the dispatcher so any
// caller (gRPC adapter, tests) can resolve a string the same way.
var triageAliases = map[string]TriageClass{
	"ctas_i":              CTAS_I,
	"ctas_ii":             CTAS_II,
	"ctas_iii":            CTAS_III,
	"ctas_iv":             CTAS_IV,
	"ctas_v":              CTAS_V,
	"emergency_critical":  CTAS_I,
	"emergency_urgent":    CTAS_II,
	"normal_high":         CTAS_III,
	"normal_low":          CTAS_IV,
}

// ParseTriageClass resolves a boundary-input triage string, accepting the
// canonical ctas_i..ctas_v spellings and the legacy aliases.
func ParseTriageClass(s string) (TriageClass, bool) {
	tc, ok := triageAliases[s]
	return tc, ok
}

// PrioritizationAttributes carries the optional, caller- or
// patient-derived inputs to the vital priority score. A nil pointer means
// "not explicitly supplied"; the priority function derives a value from
// the linked Patient (if any) in that case.
type PrioritizationAttributes struct {
	Age                     *float64
	WaitingMinutes          float64
	IsParent                *bool
	ExpectedLifeYearsGained *float64
	QualityOfLifeScore      *float64
	LifestyleResponsibility *string // "responsible" | "moderate" | "irresponsible"
	SocialRole              *string // "healthcare_worker" | "essential_worker" | "elderly_caregiver" | "general"
	ClinicalSeverityScore   *float64
}

// Request represents a single medical-delivery request, or one split child
// of an over-capacity request. Requests are retained forever in the
// dispatcher's requests table; they are never deleted, only transitioned
// through RequestStatus.
type Request struct {
	ID                 string
	RequesterID        string
	RequesterName      string
	RequesterLocationID string
	TriageClass        TriageClass
	Description        string
	EmergencyFlag      bool
	Timestamp          time.Time
	CompletedAt        *time.Time
	Status             RequestStatus
	AssignedDroneID    string
	PatientID          string

	// PayloadItems maps catalog item id -> unit count for this request (or
	// split child).
	PayloadItems map[string]int

	ParentRequestID string
	IsPartial       bool
	DeliverySequence int
	TotalDeliveries  int

	Prioritization PrioritizationAttributes

	// Post-completion metrics, populated by Completion (§4.5 step 5).
	DistanceMeters       float64
	DroneEnergyKWh       float64
	ComparisonEnergyKWh  float64
	EnergySavedKWh       float64
	CO2SavedKg           float64
	TraditionalMethod    string
	PathEfficiencyPct    float64
	PathEfficiencyRatio  float64
	TimeSavedSeconds     float64

	// SpeedMPerSec is set when the request is assigned (fresh or via
	// interception) so completion can turn route distances into flight
	// times for the path-efficiency metrics.
	SpeedMPerSec float64
}

// WaitingMinutesSince recomputes waiting_minutes as of now, per §4.5
// processing-pass step 1.
func (r *Request) WaitingMinutesSince(now time.Time) float64 {
	return now.Sub(r.Timestamp).Minutes()
}

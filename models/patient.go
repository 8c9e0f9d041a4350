package models

// Patient holds the read-only clinical attributes the priority function
// consults when a Request carries a PatientID but does not explicitly
// supply one of the PrioritizationAttributes. Patients are persisted via
// repository.PatientRepository; the dispatcher never mutates them.
type Patient struct {
	ID                      int64
	FullName                string
	Age                     int
	RiskScore               float64
	QualityOfLifeScore      float64
	ExpectedLifeYearsGained *float64
	ClinicalSeverityScore   *float64
	IsParent                bool
	SocialRole              string // defaults to "general" when unset
	LifestyleResponsibility string // "" when unset
	LifestyleRiskCount      int
	CriticalVitals          bool
	HealthRiskCount         int
	DaysInHospital          float64
}

// Package dispatch is the single-actor dispatcher: the mutex-guarded
// state machine that owns every drone and request, runs the priority
// queue, assigns and intercepts flights, drives the charging lifecycle,
// and settles completed deliveries. One sync.Mutex guards all shared
// state; it is held only for the duration of one state transition and is
// never held across a wait, following the mutex-guarded single-actor
// loop grounded in the reference corpus's simulation driver
// (orange-dot-mapf-het/internal/sim/simulator.go's step/plan methods,
// each locking on entry and unlocking on return). Timers are cooperative:
// each one-shot time.AfterFunc callback acquires the lock, does one
// bounded unit of work, and returns, so no timer ever blocks another.
package dispatch

import (
	"container/heap"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hospitaldrones/internal/catalog"
	"hospitaldrones/internal/energy"
	"hospitaldrones/internal/graphx"
	"hospitaldrones/internal/obslog"
	"hospitaldrones/internal/patientstore"
	"hospitaldrones/internal/planner"
	"hospitaldrones/internal/priority"
	"hospitaldrones/models"
)

// Config holds the dispatcher's fixed operating constants (spec §4.5).
type Config struct {
	EmergencySpeedMPerSec   float64
	NormalSpeedMPerSec      float64
	LowPrioritySpeedMPerSec float64
	MinBatteryReserveKWh    float64
	ChargeRateKWhPerSec     float64
	ChargeTargetFraction    float64
	ChargingStationIDs      []string
	Bounds                  planner.Bounds
}

// DefaultConfig returns the constants named in the dispatcher design:
// 4.0/2.5/1.5 m/s emergency/normal/low-priority speeds, a 0.0243 kWh
// minimum battery reserve, a 0.01 kWh/s charge rate, and an 80% charge
// target, over the given charging stations and sampling bounds.
func DefaultConfig(chargingStationIDs []string, bounds planner.Bounds) Config {
	return Config{
		EmergencySpeedMPerSec:   4.0,
		NormalSpeedMPerSec:      2.5,
		LowPrioritySpeedMPerSec: 1.5,
		MinBatteryReserveKWh:    0.0243,
		ChargeRateKWhPerSec:     0.01,
		ChargeTargetFraction:    0.8,
		ChargingStationIDs:      chargingStationIDs,
		Bounds:                  bounds,
	}
}

// Dispatcher is the single-actor state machine described in spec §5. All
// exported methods acquire mu for the duration of one state transition.
type Dispatcher struct {
	mu sync.Mutex

	cfg      Config
	graph    *graphx.Graph
	planner  *planner.Planner
	energy   energy.Model
	catalog  *catalog.Catalog
	patients patientstore.Store
	log      *obslog.Logger

	drones   map[string]*models.Drone
	requests map[string]*models.Request
	queue    *requestHeap
	stats    Statistics

	now   func() int64
	newID func(prefix string) string
}

// New constructs a Dispatcher. patients and log may be nil (a nil patient
// store means every request must be self-contained; a nil log discards
// events).
func New(cfg Config, graph *graphx.Graph, patients patientstore.Store, log *obslog.Logger) *Dispatcher {
	d := &Dispatcher{
		cfg:      cfg,
		graph:    graph,
		planner:  planner.New(graph),
		energy:   energy.DefaultModel(),
		catalog:  catalog.Default(),
		patients: patients,
		log:      log,
		drones:   make(map[string]*models.Drone),
		requests: make(map[string]*models.Request),
		now:      func() int64 { return time.Now().Unix() },
		newID:    func(prefix string) string { return prefix + "-" + uuid.NewString() },
	}
	d.queue = &requestHeap{less: d.queueLess}
	return d
}

func (d *Dispatcher) queueLess(a, b string) bool {
	ra, rb := d.requests[a], d.requests[b]
	if ra == nil || rb == nil {
		return a < b
	}
	scoreA := priority.Score(ra, d.lookupPatient(ra.PatientID))
	scoreB := priority.Score(rb, d.lookupPatient(rb.PatientID))
	return priority.HigherPriority(ra, rb, scoreA, scoreB)
}

// lookupPatient resolves a PatientID with the dispatcher's lock already
// held; a short background context is enough since the store is a local
// SQLite file.
func (d *Dispatcher) lookupPatient(patientID string) *models.Patient {
	if d.patients == nil || patientID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	p, err := d.patients.Lookup(ctx, patientID)
	if err != nil {
		return nil
	}
	return p
}

func (d *Dispatcher) logf() *obslog.Logger {
	if d.log == nil {
		return obslog.New(nil)
	}
	return d.log
}

// AddDrone registers a new drone at locationID, fully charged, and
// returns its id.
func (d *Dispatcher) AddDrone(locationID string, isEmergency bool, batteryCapacityKWh float64) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.graph.Location(locationID); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownLocation, locationID)
	}

	id := d.newID("drone")
	d.drones[id] = &models.Drone{
		ID:                 id,
		SerialNumber:       id,
		Name:               id,
		CurrentLocationID:  locationID,
		Status:             models.DroneStatusAvailable,
		EmergencyFlag:      isEmergency,
		BatteryCapacityKWh: batteryCapacityKWh,
		BatteryLevelKWh:    batteryCapacityKWh,
	}
	d.stats.TotalDrones++
	d.processPassLocked(d.now())
	return id, nil
}

// CreateRequestInput is the create_request payload (spec §6).
type CreateRequestInput struct {
	RequesterID         string
	RequesterName       string
	RequesterLocationID string
	TriageClass         models.TriageClass
	Description         string
	EmergencyFlag       bool
	PatientID           string // "" when no patient is linked
	PayloadItems        map[string]int
	Prioritization      models.PrioritizationAttributes
}

// CreateRequest validates the payload, splits it across multiple drone
// flights if it exceeds a single drone's capacity, enqueues the
// resulting request(s), runs a processing pass, and returns the
// caller-visible request id (the first split child's id, when split).
func (d *Dispatcher) CreateRequest(in CreateRequestInput) (string, error) {
	if err := d.catalog.Validate(in.PayloadItems); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEmptyPayload, err)
	}
	if _, ok := d.graph.Location(in.RequesterLocationID); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownLocation, in.RequesterLocationID)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var patient *models.Patient
	if in.PatientID != "" {
		patient = d.lookupPatient(in.PatientID)
		if patient == nil {
			return "", fmt.Errorf("%w: %s", ErrUnknownPatient, in.PatientID)
		}
	}

	total, _ := d.catalog.TotalWeight(in.PayloadItems)
	now := d.now()

	if total <= catalog.MaxPayloadCapacityKG {
		id := d.newID("req")
		req := d.newRequest(id, in, in.PayloadItems, now)
		d.requests[id] = req
		d.enqueue(id)
		d.stats.TotalRequests++
		d.logf().RequestCreated(id, req.TriageClass.Name, req.EmergencyFlag || req.TriageClass.IsEmergency())
		d.processPassLocked(now)
		return id, nil
	}

	bins, err := d.catalog.Split(in.PayloadItems, patient != nil && patient.CriticalVitals)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEmptyPayload, err)
	}

	ids := make([]string, len(bins))
	for i := range bins {
		ids[i] = d.newID("req")
	}
	parentID := ids[0]
	for i, bin := range bins {
		req := d.newRequest(ids[i], in, bin, now)
		req.ParentRequestID = parentID
		req.IsPartial = true
		req.DeliverySequence = i + 1
		req.TotalDeliveries = len(bins)
		d.requests[ids[i]] = req
		d.enqueue(ids[i])
	}
	d.stats.TotalRequests += len(bins)
	d.logf().RequestSplit(parentID, len(bins))
	d.processPassLocked(now)
	return parentID, nil
}

func (d *Dispatcher) newRequest(id string, in CreateRequestInput, items map[string]int, now int64) *models.Request {
	return &models.Request{
		ID:                  id,
		RequesterID:         in.RequesterID,
		RequesterName:       in.RequesterName,
		RequesterLocationID: in.RequesterLocationID,
		TriageClass:         in.TriageClass,
		Description:         in.Description,
		EmergencyFlag:       in.EmergencyFlag,
		Timestamp:           time.Unix(now, 0),
		Status:              models.RequestStatusPending,
		PatientID:           in.PatientID,
		PayloadItems:        items,
		Prioritization:      in.Prioritization,
	}
}

func (d *Dispatcher) enqueue(id string) {
	heap.Push(d.queue, id)
}

// CancelRequest marks a pending request cancelled. Unknown ids error;
// non-pending requests are a no-op (spec §6).
func (d *Dispatcher) CancelRequest(requestID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	req, ok := d.requests[requestID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, requestID)
	}
	if req.Status == models.RequestStatusPending {
		req.Status = models.RequestStatusCancelled
		d.stats.CancelledRequests++
		d.logf().RequestCancelled(requestID)
	}
	return nil
}

// GetRequestStatus returns a snapshot of a request.
func (d *Dispatcher) GetRequestStatus(requestID string) (models.Request, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	req, ok := d.requests[requestID]
	if !ok {
		return models.Request{}, fmt.Errorf("%w: %s", ErrUnknownRequest, requestID)
	}
	return *req, nil
}

// GetDroneStatus returns a snapshot of a drone.
func (d *Dispatcher) GetDroneStatus(droneID string) (models.Drone, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	drone, ok := d.drones[droneID]
	if !ok {
		return models.Drone{}, fmt.Errorf("%w: %s", ErrUnknownDrone, droneID)
	}
	return drone.Snapshot(), nil
}

// GetAllPendingRequests returns every pending request, highest priority
// first.
func (d *Dispatcher) GetAllPendingRequests() []models.Request {
	d.mu.Lock()
	defer d.mu.Unlock()

	var pending []*models.Request
	for _, req := range d.requests {
		if req.Status == models.RequestStatusPending {
			pending = append(pending, req)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		scoreI := priority.Score(pending[i], d.lookupPatient(pending[i].PatientID))
		scoreJ := priority.Score(pending[j], d.lookupPatient(pending[j].PatientID))
		return priority.HigherPriority(pending[i], pending[j], scoreI, scoreJ)
	})
	out := make([]models.Request, len(pending))
	for i, r := range pending {
		out[i] = *r
	}
	return out
}

// GetStatistics returns the running counters and energy/CO2 totals.
func (d *Dispatcher) GetStatistics() Statistics {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recomputeCountsLocked()
}

func (d *Dispatcher) recomputeCountsLocked() Statistics {
	s := d.stats
	s.PendingRequests, s.AssignedRequests = 0, 0
	for _, req := range d.requests {
		switch req.Status {
		case models.RequestStatusPending:
			s.PendingRequests++
		case models.RequestStatusAssigned, models.RequestStatusInTransit:
			s.AssignedRequests++
		}
	}
	s.AvailableDrones, s.ChargingDrones = 0, 0
	for _, dr := range d.drones {
		if dr.Status == models.DroneStatusAvailable {
			s.AvailableDrones++
		}
		if dr.IsCharging {
			s.ChargingDrones++
		}
	}
	return s
}

// GetEnergyReport returns the post-completion energy report for a
// request, or (zero, false) if the request doesn't exist or hasn't
// completed yet.
func (d *Dispatcher) GetEnergyReport(requestID string) (EnergyReport, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	req, ok := d.requests[requestID]
	if !ok || req.Status != models.RequestStatusCompleted {
		return EnergyReport{}, false
	}
	return EnergyReport{
		RequestID:           req.ID,
		DistanceMeters:      req.DistanceMeters,
		DroneEnergyKWh:      req.DroneEnergyKWh,
		ComparisonEnergyKWh: req.ComparisonEnergyKWh,
		EnergySavedKWh:      req.EnergySavedKWh,
		CO2SavedKg:          req.CO2SavedKg,
		TraditionalMethod:   req.TraditionalMethod,
		PathEfficiencyPct:   req.PathEfficiencyPct,
		PathEfficiencyRatio: req.PathEfficiencyRatio,
		TimeSavedSeconds:    req.TimeSavedSeconds,
	}, true
}

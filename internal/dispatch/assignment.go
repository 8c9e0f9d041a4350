package dispatch

import (
	"container/heap"
	"sort"
	"time"

	"hospitaldrones/internal/planner"
	"hospitaldrones/models"
)

// processPassLocked is the serialized processing pass (spec §4.5): it
// recomputes waiting_minutes for every pending request, then drains the
// queue in priority order, attempting interception before a fresh
// assignment for each request, reinserting anything that still can't be
// served. Callers must already hold mu.
func (d *Dispatcher) processPassLocked(now int64) {
	nowTime := time.Unix(now, 0)
	for _, req := range d.requests {
		if req.Status == models.RequestStatusPending {
			req.Prioritization.WaitingMinutes = req.WaitingMinutesSince(nowTime)
		}
	}

	n := d.queue.Len()
	var requeue []string
	for i := 0; i < n; i++ {
		id := heap.Pop(d.queue).(string)
		req := d.requests[id]
		if req == nil || req.Status != models.RequestStatusPending {
			continue // lazy eviction of stale/cancelled entries
		}

		assigned := false
		if !d.isEmergencyRequest(req) {
			assigned = d.tryIntercept(req, now)
		}
		if !assigned {
			assigned = d.tryFreshAssign(req, now)
		}
		if !assigned {
			requeue = append(requeue, id)
		}
	}
	for _, id := range requeue {
		heap.Push(d.queue, id)
	}
}

func (d *Dispatcher) isEmergencyRequest(req *models.Request) bool {
	return req.EmergencyFlag || req.TriageClass.IsEmergency()
}

func (d *Dispatcher) speedFor(req *models.Request, isEmergency bool) float64 {
	switch {
	case isEmergency:
		return d.cfg.EmergencySpeedMPerSec
	case req.TriageClass.Value == models.CTAS_III.Value:
		return d.cfg.NormalSpeedMPerSec
	default:
		return d.cfg.LowPrioritySpeedMPerSec
	}
}

// eligibleDrones returns the ids of drones available for a request of the
// given emergency class, keyed by current location.
func (d *Dispatcher) eligibleDrones(isEmergency bool) map[string][]string {
	byLocation := make(map[string][]string)
	for id, dr := range d.drones {
		if dr.EmergencyFlag != isEmergency {
			continue
		}
		if !dr.IsEligible(d.cfg.MinBatteryReserveKWh) {
			continue
		}
		byLocation[dr.CurrentLocationID] = append(byLocation[dr.CurrentLocationID], id)
	}
	for loc := range byLocation {
		sort.Strings(byLocation[loc])
	}
	return byLocation
}

// routeDistance sums Euclidean leg distances along a planner-returned
// path. Planner paths are not guaranteed to follow graph edges (the
// sampling mode snaps tree points to nearest nodes), so distance is
// always computed geometrically rather than via edge weight.
func (d *Dispatcher) routeDistance(route []string) float64 {
	var total float64
	for i := 0; i+1 < len(route); i++ {
		if dist, ok := d.graph.EuclideanDistance(route[i], route[i+1]); ok {
			total += dist
		}
	}
	return total
}

// activeFlightSnapshot builds the planner's view of every drone currently
// mid-flight, excluding excludeDroneID (the drone being planned for).
func (d *Dispatcher) activeFlightSnapshot(excludeDroneID string) []planner.ActiveFlight {
	var flights []planner.ActiveFlight
	for id, dr := range d.drones {
		if id == excludeDroneID || dr.FlightStartTime == nil || len(dr.DeliveryRoute) == 0 {
			continue
		}
		flights = append(flights, planner.ActiveFlight{
			DroneID:       id,
			Route:         dr.DeliveryRoute,
			SpeedMPerSec:  dr.CurrentSpeedMPerSec,
			IsEmergency:   dr.EmergencyFlag,
			StartTimeUnix: *dr.FlightStartTime,
		})
	}
	return flights
}

// tryFreshAssign implements spec §4.5's fresh-assignment step: pick the
// nearest eligible drone, plan a route, verify the trip fits within the
// battery reserve, and commit the assignment with an auto-completion
// timer. Returns false (no mutation beyond a possible charging dispatch)
// if no drone can currently serve the request.
func (d *Dispatcher) tryFreshAssign(req *models.Request, now int64) bool {
	isEmergency := d.isEmergencyRequest(req)
	byLocation := d.eligibleDrones(isEmergency)
	if len(byLocation) == 0 {
		return false
	}

	locations := make([]string, 0, len(byLocation))
	for loc := range byLocation {
		locations = append(locations, loc)
	}
	nearestLoc, _, ok := d.graph.NearestOfSet(req.RequesterLocationID, locations)
	if !ok {
		return false
	}
	droneID := byLocation[nearestLoc][0] // lowest id at that location, per §4.7

	drone := d.drones[droneID]
	result, err := d.planner.Plan(planner.Params{
		Start:           drone.CurrentLocationID,
		Goal:            req.RequesterLocationID,
		SelfIsEmergency: isEmergency,
		OtherFlights:    d.activeFlightSnapshot(droneID),
		Bounds:          d.cfg.Bounds,
		Now:             now,
	})
	if err != nil {
		return false
	}
	if result.UsedFallback {
		d.logf().PlannerFallback(droneID)
	}

	payloadWeight, _ := d.catalog.TotalWeight(req.PayloadItems)
	distance := d.routeDistance(result.Path)
	requiredEnergy := d.energy.Consumption(distance, payloadWeight)

	if drone.BatteryLevelKWh-requiredEnergy < d.cfg.MinBatteryReserveKWh {
		d.sendToChargingLocked(drone, now)
		d.logf().AssignmentDeferred(req.ID, "nearest eligible drone lacks reserve, sent to charging")
		return false
	}

	speed := d.speedFor(req, isEmergency)
	startTime := now

	drone.Status = models.DroneStatusAssigned
	drone.AssignedRequestID = req.ID
	drone.RequestIDs = []string{req.ID}
	drone.DeliveryRoute = result.Path
	drone.CurrentPayloadWeightKg = payloadWeight
	drone.CurrentSpeedMPerSec = speed
	drone.FlightStartTime = &startTime
	drone.BatteryConsumedThisFlightKWh = 0
	drone.IsReturnTrip = false

	req.Status = models.RequestStatusAssigned
	req.AssignedDroneID = droneID
	req.SpeedMPerSec = speed

	etaSeconds := distance/speed + 5
	d.scheduleCompletion(req.ID, etaSeconds)

	d.logf().AssignmentSucceeded(req.ID, droneID, distance, requiredEnergy)
	return true
}

// scheduleCompletion arms a one-shot auto-completion timer for a
// request. The callback acquires the lock, re-validates the request is
// still assigned (guarding against a manual completion or cancellation
// racing the timer), and otherwise completes it using the drone's
// current recorded route/payload.
func (d *Dispatcher) scheduleCompletion(requestID string, etaSeconds float64) {
	if etaSeconds < 0 {
		etaSeconds = 0
	}
	time.AfterFunc(time.Duration(etaSeconds*float64(time.Second)), func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		req, ok := d.requests[requestID]
		if !ok || req.Status != models.RequestStatusAssigned {
			d.logf().TimerMisfire(requestID, "auto_complete")
			return
		}
		drone := d.drones[req.AssignedDroneID]
		finalLocation := req.RequesterLocationID
		if drone != nil && len(drone.DeliveryRoute) > 0 {
			finalLocation = drone.DeliveryRoute[len(drone.DeliveryRoute)-1]
		}
		d.completeRequestLocked(requestID, finalLocation, "drone", d.now())
	})
}

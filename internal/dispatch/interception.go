package dispatch

import (
	"math"

	"hospitaldrones/models"
)

// interceptAcceptMargin is the "up to 10% worse than a dedicated flight"
// tolerance from spec §4.6: interception is still accepted when the
// combined-flight energy is no more than 10% above the baseline of
// finishing the current flight plus a dedicated new one.
const interceptAcceptMargin = 1.10

// interceptCandidate is one in-flight drone evaluated as a host for a new
// non-emergency request.
type interceptCandidate struct {
	drone         *models.Drone
	combinedRoute []string
	insertIdx     int
	combinedEnergy float64
	saving        float64
}

// tryIntercept evaluates every eligible in-flight drone as a host for
// req, accepting the one with the greatest energy saving over a
// dedicated dispatch, per spec §4.6.
func (d *Dispatcher) tryIntercept(req *models.Request, now int64) bool {
	payloadWeight, _ := d.catalog.TotalWeight(req.PayloadItems)

	var best *interceptCandidate
	for _, drone := range d.drones {
		if drone.EmergencyFlag || drone.IsReturnTrip || drone.IsCharging {
			continue
		}
		if drone.Status != models.DroneStatusAssigned && drone.Status != models.DroneStatusInTransit {
			continue
		}
		if len(drone.DeliveryRoute) == 0 || drone.FlightStartTime == nil {
			continue
		}

		cand := d.evaluateIntercept(drone, req, payloadWeight, now)
		if cand == nil {
			continue
		}
		if best == nil || cand.saving > best.saving {
			best = cand
		}
	}

	if best == nil {
		return false
	}
	d.acceptIntercept(best, req, now)
	return true
}

func (d *Dispatcher) evaluateIntercept(drone *models.Drone, req *models.Request, payloadWeight float64, now int64) *interceptCandidate {
	origin := drone.DeliveryRoute[0]
	_, dedicatedDist, err := d.graph.ShortestPath(origin, req.RequesterLocationID)
	if err != nil || math.IsInf(dedicatedDist, 1) {
		return nil
	}
	dedicatedEnergy := d.energy.Consumption(dedicatedDist, payloadWeight)

	remaining := d.remainingRouteDistance(drone, now)
	baselineEnergy := d.energy.Consumption(remaining, drone.CurrentPayloadWeightKg) + dedicatedEnergy

	combinedRoute, insertIdx := insertWaypointCheapest(d, drone.DeliveryRoute, req.RequesterLocationID)
	combinedDistance := d.routeDistance(combinedRoute)
	combinedPayload := drone.CurrentPayloadWeightKg + payloadWeight
	combinedEnergy := d.energy.Consumption(combinedDistance, combinedPayload)

	fits := combinedEnergy <= drone.BatteryLevelKWh-d.cfg.MinBatteryReserveKWh
	improves := combinedEnergy <= baselineEnergy || combinedEnergy <= baselineEnergy*interceptAcceptMargin
	if !fits || !improves {
		d.logf().InterceptionRejected(req.ID, drone.ID, "does not fit reserve or exceeds margin")
		return nil
	}

	return &interceptCandidate{
		drone:          drone,
		combinedRoute:  combinedRoute,
		insertIdx:      insertIdx,
		combinedEnergy: combinedEnergy,
		saving:         baselineEnergy - combinedEnergy,
	}
}

// remainingRouteDistance estimates how much of a flight's planned route
// is still ahead of it, by projecting elapsed flight time at its current
// speed against the route's total geometric length.
func (d *Dispatcher) remainingRouteDistance(drone *models.Drone, now int64) float64 {
	full := d.routeDistance(drone.DeliveryRoute)
	if drone.FlightStartTime == nil || drone.CurrentSpeedMPerSec <= 0 {
		return full
	}
	elapsed := float64(now - *drone.FlightStartTime)
	if elapsed < 0 {
		elapsed = 0
	}
	traveled := elapsed * drone.CurrentSpeedMPerSec
	remaining := full - traveled
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (d *Dispatcher) acceptIntercept(cand *interceptCandidate, req *models.Request, now int64) {
	drone := cand.drone
	payloadWeight, _ := d.catalog.TotalWeight(req.PayloadItems)
	drone.DeliveryRoute = cand.combinedRoute
	drone.CurrentPayloadWeightKg += payloadWeight
	drone.RequestIDs = append(drone.RequestIDs, req.ID)

	speed := d.speedFor(req, false)
	req.Status = models.RequestStatusAssigned
	req.AssignedDroneID = drone.ID
	req.SpeedMPerSec = speed

	// Secondary completion timer: the remaining distance from the drone's
	// projected current position to the newly-inserted stop, at its
	// existing flight speed, plus the same 5-second slack as a fresh
	// assignment's ETA. The original request's own auto-completion timer,
	// armed when the flight was first assigned, is left untouched.
	distToInsertion := d.routeDistance(cand.combinedRoute[:cand.insertIdx+1])
	remaining := distToInsertion - (d.routeDistance(drone.DeliveryRoute) - d.remainingRouteDistance(drone, now))
	if remaining < 0 {
		remaining = 0
	}
	etaSeconds := remaining/drone.CurrentSpeedMPerSec + 5
	d.scheduleCompletion(req.ID, etaSeconds)

	d.logf().InterceptionAccepted(req.ID, drone.ID, cand.saving)
}

// insertWaypointCheapest inserts waypoint into route at the position that
// minimizes the added geometric distance (classic cheapest-insertion
// heuristic), trying prepend, append, and every interior slot. Returns
// the new route and the index waypoint was inserted at.
func insertWaypointCheapest(d *Dispatcher, route []string, waypoint string) ([]string, int) {
	if len(route) == 0 {
		return []string{waypoint}, 0
	}

	bestIdx := len(route)
	bestCost := math.Inf(1)
	for i := 0; i <= len(route); i++ {
		var cost float64
		switch {
		case i == 0:
			cost, _ = d.graph.EuclideanDistance(waypoint, route[0])
		case i == len(route):
			cost, _ = d.graph.EuclideanDistance(route[len(route)-1], waypoint)
		default:
			prevToW, _ := d.graph.EuclideanDistance(route[i-1], waypoint)
			wToNext, _ := d.graph.EuclideanDistance(waypoint, route[i])
			prevToNext, _ := d.graph.EuclideanDistance(route[i-1], route[i])
			cost = prevToW + wToNext - prevToNext
		}
		if cost < bestCost {
			bestCost = cost
			bestIdx = i
		}
	}

	out := make([]string, 0, len(route)+1)
	out = append(out, route[:bestIdx]...)
	out = append(out, waypoint)
	out = append(out, route[bestIdx:]...)
	return out, bestIdx
}

package dispatch

import (
	"time"

	"hospitaldrones/models"
)

// isChargingStation reports whether locationID is one of the
// dispatcher's configured charging stations.
func (d *Dispatcher) isChargingStation(locationID string) bool {
	for _, id := range d.cfg.ChargingStationIDs {
		if id == locationID {
			return true
		}
	}
	return false
}

// sendToChargingLocked starts a drone's charging lifecycle (spec §4.8):
// if it is already at a charging station it begins charging immediately;
// otherwise it is sent on a return flight to the nearest one. Callers
// must already hold mu.
func (d *Dispatcher) sendToChargingLocked(drone *models.Drone, now int64) {
	if d.isChargingStation(drone.CurrentLocationID) {
		d.beginChargingLocked(drone)
		return
	}

	stationID, distance, ok := d.graph.NearestOfSet(drone.CurrentLocationID, d.cfg.ChargingStationIDs)
	if !ok {
		// No reachable station: degrade to available at its current spot
		// rather than stranding it in a returning state forever.
		drone.Status = models.DroneStatusAvailable
		return
	}

	startTime := now
	drone.Status = models.DroneStatusReturning
	drone.IsReturnTrip = true
	drone.DeliveryRoute = []string{drone.CurrentLocationID, stationID}
	drone.CurrentPayloadWeightKg = 0
	drone.CurrentSpeedMPerSec = d.cfg.NormalSpeedMPerSec
	drone.FlightStartTime = &startTime
	drone.AssignedRequestID = ""
	drone.RequestIDs = nil

	etaSeconds := distance/d.cfg.NormalSpeedMPerSec + 2
	d.logf().DroneSentToCharging(drone.ID, stationID, etaSeconds)

	droneID := drone.ID
	time.AfterFunc(time.Duration(etaSeconds*float64(time.Second)), func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.onChargingArrival(droneID, stationID, distance)
	})
}

// onChargingArrival is the arrival-timer callback: it deducts the
// return-leg energy, teleports the drone to the station, and begins
// charging. Idempotent against a drone that is no longer returning
// (e.g. it was somehow reassigned, which the dispatcher never does to a
// returning drone, but the guard mirrors every other timer callback).
func (d *Dispatcher) onChargingArrival(droneID, stationID string, distance float64) {
	drone, ok := d.drones[droneID]
	if !ok || drone.Status != models.DroneStatusReturning {
		d.logf().TimerMisfire(droneID, "charging_arrival")
		return
	}

	energyUsed := d.energy.Consumption(distance, 0)
	drone.BatteryLevelKWh -= energyUsed
	if drone.BatteryLevelKWh < 0 {
		drone.BatteryLevelKWh = 0
	}
	drone.CurrentLocationID = stationID
	drone.DeliveryRoute = nil
	drone.FlightStartTime = nil
	drone.IsReturnTrip = false

	d.beginChargingLocked(drone)
}

// beginChargingLocked transitions a drone (already at a charging
// station) into the charging state and arms its completion timer.
func (d *Dispatcher) beginChargingLocked(drone *models.Drone) {
	drone.Status = models.DroneStatusCharging
	drone.IsCharging = true
	drone.DeliveryRoute = nil
	drone.CurrentPayloadWeightKg = 0
	drone.CurrentSpeedMPerSec = 0
	drone.FlightStartTime = nil

	target := d.cfg.ChargeTargetFraction * drone.BatteryCapacityKWh
	energyNeeded := target - drone.BatteryLevelKWh
	delaySeconds := 0.0
	if energyNeeded > 0 {
		delaySeconds = energyNeeded / d.cfg.ChargeRateKWhPerSec
	}

	d.logf().ChargingStarted(drone.ID, energyNeeded)

	droneID := drone.ID
	time.AfterFunc(time.Duration(delaySeconds*float64(time.Second)), func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.onChargingComplete(droneID)
	})
}

// onChargingComplete is the charging-completion timer callback: it tops
// the battery up to the target fraction, returns the drone to service,
// and runs a processing pass so any requests waiting on drone
// availability get a chance at assignment.
func (d *Dispatcher) onChargingComplete(droneID string) {
	drone, ok := d.drones[droneID]
	if !ok || !drone.IsCharging {
		d.logf().TimerMisfire(droneID, "charging_complete")
		return
	}

	drone.BatteryLevelKWh = d.cfg.ChargeTargetFraction * drone.BatteryCapacityKWh
	drone.IsCharging = false
	drone.Status = models.DroneStatusAvailable

	d.logf().ChargingCompleted(droneID)
	d.processPassLocked(d.now())
}

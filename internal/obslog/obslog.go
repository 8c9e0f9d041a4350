// Package obslog is the dispatcher's structured-logging wrapper: a thin
// set of named events over log/slog, grounded in the pack's own
// slog.Info/slog.Warn-with-attribute-pairs idiom (internal/router's model
// routing log lines). No third-party logging library appears anywhere in
// the example pack, so log/slog is the corpus-consistent choice.
package obslog

import (
	"log/slog"
	"os"
)

// Logger wraps a *slog.Logger with the dispatcher's named event methods,
// so call sites read as domain events rather than ad-hoc slog.Info calls.
type Logger struct {
	l *slog.Logger
}

// New returns a Logger that emits through l; a nil l means
// slog.Default().
func New(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{l: l}
}

// NewJSON returns a Logger writing structured JSON to os.Stdout at the
// given level. cmd/server does not use it; it builds its Logger with
// New(nil).
func NewJSON(level slog.Level) *Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &Logger{l: slog.New(h)}
}

func (lg *Logger) RequestCreated(id, triageClass string, emergency bool) {
	lg.l.Info("request created", slog.String("request_id", id), slog.String("triage_class", triageClass), slog.Bool("emergency", emergency))
}

func (lg *Logger) RequestSplit(parentID string, children int) {
	lg.l.Info("request split across drones", slog.String("parent_request_id", parentID), slog.Int("children", children))
}

func (lg *Logger) AssignmentSucceeded(requestID, droneID string, distanceMeters, energyKWh float64) {
	lg.l.Info("fresh assignment", slog.String("request_id", requestID), slog.String("drone_id", droneID),
		slog.Float64("distance_m", distanceMeters), slog.Float64("energy_kwh", energyKWh))
}

func (lg *Logger) AssignmentDeferred(requestID, reason string) {
	lg.l.Info("assignment deferred", slog.String("request_id", requestID), slog.String("reason", reason))
}

func (lg *Logger) InterceptionAccepted(requestID, droneID string, energySavedKWh float64) {
	lg.l.Info("interception accepted", slog.String("request_id", requestID), slog.String("drone_id", droneID),
		slog.Float64("energy_saved_kwh", energySavedKWh))
}

func (lg *Logger) InterceptionRejected(requestID, droneID, reason string) {
	lg.l.Debug("interception rejected", slog.String("request_id", requestID), slog.String("drone_id", droneID), slog.String("reason", reason))
}

func (lg *Logger) RequestCompleted(requestID, droneID string, energySavedKWh, co2SavedKg float64) {
	lg.l.Info("request completed", slog.String("request_id", requestID), slog.String("drone_id", droneID),
		slog.Float64("energy_saved_kwh", energySavedKWh), slog.Float64("co2_saved_kg", co2SavedKg))
}

func (lg *Logger) RequestCancelled(requestID string) {
	lg.l.Info("request cancelled", slog.String("request_id", requestID))
}

func (lg *Logger) DroneSentToCharging(droneID, stationID string, etaSeconds float64) {
	lg.l.Info("drone sent to charging", slog.String("drone_id", droneID), slog.String("station_id", stationID), slog.Float64("eta_s", etaSeconds))
}

func (lg *Logger) ChargingStarted(droneID string, energyNeededKWh float64) {
	lg.l.Info("charging started", slog.String("drone_id", droneID), slog.Float64("energy_needed_kwh", energyNeededKWh))
}

func (lg *Logger) ChargingCompleted(droneID string) {
	lg.l.Info("charging completed", slog.String("drone_id", droneID))
}

func (lg *Logger) PlannerFallback(droneID string) {
	lg.l.Debug("planner fell back to shortest path", slog.String("drone_id", droneID))
}

func (lg *Logger) TimerMisfire(requestID, event string) {
	lg.l.Debug("timer fired against stale state, ignoring", slog.String("request_id", requestID), slog.String("event", event))
}

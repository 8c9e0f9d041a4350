package dispatch

import (
	"testing"
	"time"

	"hospitaldrones/internal/graphx"
	"hospitaldrones/internal/planner"
	"hospitaldrones/models"
)

// testGraph lays out a small hospital floor: a dispensary, two wards a
// short hop apart, and a charging station off to the side. Distances are
// kept small (a few meters) so the dispatcher's flat 5-second ETA slack
// dominates flight time and tests don't need to sleep for long.
func testGraph(t *testing.T) *graphx.Graph {
	t.Helper()
	g := graphx.New()
	g.AddLocation(models.Location{ID: "dispensary", X: 0, Y: 0})
	g.AddLocation(models.Location{ID: "ward_a", X: 1, Y: 0})
	g.AddLocation(models.Location{ID: "ward_b", X: 2, Y: 0})
	g.AddLocation(models.Location{ID: "charging_1", X: 0, Y: 1})
	must := func(err error) {
		if err != nil {
			t.Fatalf("add edge: %v", err)
		}
	}
	must(g.AddEdge("dispensary", "ward_a", 1, true))
	must(g.AddEdge("ward_a", "ward_b", 1, true))
	must(g.AddEdge("dispensary", "charging_1", 1, true))
	return g
}

func testDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	g := testGraph(t)
	cfg := DefaultConfig([]string{"charging_1"}, planner.Bounds{MinX: -2, MinY: -2, MaxX: 3, MaxY: 3})
	return New(cfg, g, nil, nil)
}

func basicRequest(locationID string, class models.TriageClass) CreateRequestInput {
	return CreateRequestInput{
		RequesterID:         "nurse-1",
		RequesterName:       "Nurse Joy",
		RequesterLocationID: locationID,
		TriageClass:         class,
		PayloadItems:        map[string]int{"med_insulin": 1},
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not met within %v", timeout)
	}
}

func TestAddDrone_UnknownLocationErrors(t *testing.T) {
	d := testDispatcher(t)
	if _, err := d.AddDrone("nowhere", false, 2.0); err == nil {
		t.Fatal("expected an error for an unknown location")
	}
}

func TestCreateRequest_EmptyPayloadErrors(t *testing.T) {
	d := testDispatcher(t)
	in := basicRequest("ward_a", models.CTAS_III)
	in.PayloadItems = map[string]int{}
	if _, err := d.CreateRequest(in); err == nil {
		t.Fatal("expected an error for an empty payload")
	}
}

func TestCreateRequest_UnknownPatientErrors(t *testing.T) {
	d := testDispatcher(t)
	in := basicRequest("ward_a", models.CTAS_III)
	in.PatientID = "999"
	if _, err := d.CreateRequest(in); err == nil {
		t.Fatal("expected an error for an unknown patient")
	}
}

// Scenario: emergency dispatch. A CTAS I request with one available
// emergency drone is assigned immediately.
func TestCreateRequest_EmergencyDispatchAssignsDrone(t *testing.T) {
	d := testDispatcher(t)
	droneID, err := d.AddDrone("dispensary", true, 2.0)
	if err != nil {
		t.Fatalf("add drone: %v", err)
	}

	reqID, err := d.CreateRequest(basicRequest("ward_b", models.CTAS_I))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	req, err := d.GetRequestStatus(reqID)
	if err != nil {
		t.Fatalf("get request status: %v", err)
	}
	if req.Status != models.RequestStatusAssigned {
		t.Fatalf("expected assigned, got %v", req.Status)
	}
	if req.AssignedDroneID != droneID {
		t.Fatalf("expected drone %s, got %s", droneID, req.AssignedDroneID)
	}

	drone, err := d.GetDroneStatus(droneID)
	if err != nil {
		t.Fatalf("get drone status: %v", err)
	}
	if drone.Status != models.DroneStatusAssigned {
		t.Fatalf("expected drone assigned, got %v", drone.Status)
	}
}

// Scenario: priority preemption. A low-priority request is already
// pending with no drones available; when the first (emergency-capable)
// drone joins the fleet, the later, higher-priority request is served
// first.
func TestCreateRequest_PriorityPreemption(t *testing.T) {
	d := testDispatcher(t)

	lowID, err := d.CreateRequest(basicRequest("ward_a", models.CTAS_V))
	if err != nil {
		t.Fatalf("create low-priority request: %v", err)
	}
	highID, err := d.CreateRequest(basicRequest("ward_b", models.CTAS_I))
	if err != nil {
		t.Fatalf("create emergency request: %v", err)
	}

	if _, err := d.AddDrone("dispensary", true, 2.0); err != nil {
		t.Fatalf("add drone: %v", err)
	}

	highReq, err := d.GetRequestStatus(highID)
	if err != nil {
		t.Fatalf("get high request status: %v", err)
	}
	if highReq.Status != models.RequestStatusAssigned {
		t.Fatalf("expected the emergency request to be assigned first, got %v", highReq.Status)
	}

	lowReq, err := d.GetRequestStatus(lowID)
	if err != nil {
		t.Fatalf("get low request status: %v", err)
	}
	if lowReq.Status != models.RequestStatusPending {
		t.Fatalf("expected the low-priority request to still be pending, got %v", lowReq.Status)
	}
}

// Scenario: payload split. A payload heavier than one drone's capacity
// is split into multiple requests sharing a parent id, the first child
// being its own parent.
func TestCreateRequest_SplitsOverCapacityPayload(t *testing.T) {
	d := testDispatcher(t)
	in := basicRequest("ward_a", models.CTAS_IV)
	in.PayloadItems = map[string]int{"iv_fluid_bag": 3} // 3 x 1kg > 2kg capacity

	parentID, err := d.CreateRequest(in)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	pending := d.GetAllPendingRequests()
	if len(pending) != 2 {
		t.Fatalf("expected 2 split children, got %d", len(pending))
	}
	sawParentAsOwnID := false
	for _, req := range pending {
		if req.ParentRequestID != parentID {
			t.Fatalf("expected parent id %s, got %s", parentID, req.ParentRequestID)
		}
		if req.ID == parentID {
			sawParentAsOwnID = true
		}
		if req.TotalDeliveries != 2 {
			t.Fatalf("expected total_deliveries=2, got %d", req.TotalDeliveries)
		}
	}
	if !sawParentAsOwnID {
		t.Fatal("expected the first split child's id to equal the parent id")
	}
}

// Scenario: interception. A second, non-emergency request whose drop-off
// sits on an already-flying drone's route is folded into that flight
// instead of waiting for a second drone.
func TestProcessPass_InterceptsSecondRequestOntoActiveFlight(t *testing.T) {
	d := testDispatcher(t)
	droneID, err := d.AddDrone("dispensary", false, 2.0)
	if err != nil {
		t.Fatalf("add drone: %v", err)
	}

	firstID, err := d.CreateRequest(basicRequest("ward_b", models.CTAS_III))
	if err != nil {
		t.Fatalf("create first request: %v", err)
	}
	firstReq, err := d.GetRequestStatus(firstID)
	if err != nil || firstReq.Status != models.RequestStatusAssigned {
		t.Fatalf("expected first request assigned, got %v (err=%v)", firstReq.Status, err)
	}

	secondID, err := d.CreateRequest(basicRequest("ward_a", models.CTAS_III))
	if err != nil {
		t.Fatalf("create second request: %v", err)
	}

	secondReq, err := d.GetRequestStatus(secondID)
	if err != nil {
		t.Fatalf("get second request status: %v", err)
	}
	if secondReq.Status != models.RequestStatusAssigned {
		t.Fatalf("expected the second request to be intercepted onto the active flight, got %v", secondReq.Status)
	}
	if secondReq.AssignedDroneID != droneID {
		t.Fatalf("expected the same drone to carry both requests, got %s", secondReq.AssignedDroneID)
	}

	drone, err := d.GetDroneStatus(droneID)
	if err != nil {
		t.Fatalf("get drone status: %v", err)
	}
	if len(drone.RequestIDs) != 2 {
		t.Fatalf("expected the drone to carry 2 requests, got %v", drone.RequestIDs)
	}
}

// Scenario: charging lifecycle. Completing a request sends the drone
// toward the nearest charging station and, once it arrives, into the
// charging state.
func TestCompleteRequest_SendsDroneToCharging(t *testing.T) {
	d := testDispatcher(t)
	droneID, err := d.AddDrone("dispensary", false, 2.0)
	if err != nil {
		t.Fatalf("add drone: %v", err)
	}
	reqID, err := d.CreateRequest(basicRequest("ward_b", models.CTAS_III))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	if err := d.CompleteRequest(reqID, "ward_b", "manual_test", nil); err != nil {
		t.Fatalf("complete request: %v", err)
	}

	req, err := d.GetRequestStatus(reqID)
	if err != nil {
		t.Fatalf("get request status: %v", err)
	}
	if req.Status != models.RequestStatusCompleted {
		t.Fatalf("expected completed, got %v", req.Status)
	}
	if req.DistanceMeters <= 0 {
		t.Fatal("expected a positive recorded distance")
	}

	waitFor(t, 6*time.Second, func() bool {
		drone, err := d.GetDroneStatus(droneID)
		if err != nil {
			return false
		}
		return drone.Status == models.DroneStatusCharging || drone.Status == models.DroneStatusAvailable
	})

	report, ok := d.GetEnergyReport(reqID)
	if !ok {
		t.Fatal("expected an energy report for a completed request")
	}
	if report.DroneEnergyKWh <= 0 {
		t.Fatal("expected a positive drone energy figure")
	}
}

// Scenario: planner fallback under contention. A second drone assigned
// while another is already in flight still reaches a valid route instead
// of erroring out, whether or not sampling found a detour. The first
// flight is an emergency one, which never takes interceptions, so the
// second request has to go to the second drone.
func TestCreateRequest_SecondDroneRoutesAroundActiveFlight(t *testing.T) {
	d := testDispatcher(t)
	if _, err := d.AddDrone("dispensary", true, 2.0); err != nil {
		t.Fatalf("add drone 1: %v", err)
	}
	secondDroneID, err := d.AddDrone("charging_1", false, 2.0)
	if err != nil {
		t.Fatalf("add drone 2: %v", err)
	}

	if _, err := d.CreateRequest(basicRequest("ward_b", models.CTAS_I)); err != nil {
		t.Fatalf("create first request: %v", err)
	}
	secondID, err := d.CreateRequest(basicRequest("ward_a", models.CTAS_IV))
	if err != nil {
		t.Fatalf("create second request: %v", err)
	}

	secondReq, err := d.GetRequestStatus(secondID)
	if err != nil {
		t.Fatalf("get second request status: %v", err)
	}
	if secondReq.Status == models.RequestStatusPending {
		t.Fatal("expected the second request to be served by the second drone despite contention")
	}
	if secondReq.AssignedDroneID != secondDroneID {
		t.Fatalf("expected the second drone %s to serve the second request, got %q", secondDroneID, secondReq.AssignedDroneID)
	}
}

func TestCancelRequest_OnlyPendingCancels(t *testing.T) {
	d := testDispatcher(t)
	reqID, err := d.CreateRequest(basicRequest("ward_a", models.CTAS_IV))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if err := d.CancelRequest(reqID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	req, err := d.GetRequestStatus(reqID)
	if err != nil || req.Status != models.RequestStatusCancelled {
		t.Fatalf("expected cancelled, got %v (err=%v)", req.Status, err)
	}

	if err := d.CancelRequest("does-not-exist"); err == nil {
		t.Fatal("expected an error for an unknown request id")
	}
}

func TestGetStatistics_CountsPendingAndDrones(t *testing.T) {
	d := testDispatcher(t)
	if _, err := d.AddDrone("dispensary", false, 2.0); err != nil {
		t.Fatalf("add drone: %v", err)
	}
	if _, err := d.CreateRequest(basicRequest("ward_a", models.CTAS_IV)); err != nil {
		t.Fatalf("create request: %v", err)
	}
	stats := d.GetStatistics()
	if stats.TotalDrones != 1 {
		t.Fatalf("expected 1 drone, got %d", stats.TotalDrones)
	}
	if stats.TotalRequests != 1 {
		t.Fatalf("expected 1 total request, got %d", stats.TotalRequests)
	}
}

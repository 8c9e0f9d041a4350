//go:build grpcserver

package grpcapi

import (
	"context"

	dronev1 "hospitaldrones/api/drone/v1"
	"hospitaldrones/internal/auth"
	"hospitaldrones/internal/dispatch"
	"hospitaldrones/models"
)

// DroneServer implements DroneService: the drone-facing surface
// (complete_request, get_drone_status), restricted to drone principals.
type DroneServer struct {
	dronev1.UnimplementedDroneServiceServer
	d *dispatch.Dispatcher
}

// CompleteRequest reports a drone-side delivery completion. An optional
// payload_weight_override_kg overrides the catalog-computed weight when
// the drone's own scale disagrees with the requested manifest.
func (s *DroneServer) CompleteRequest(ctx context.Context, req *dronev1.CompleteRequestRequest) (*dronev1.CompleteRequestResponse, error) {
	if _, err := auth.RequireDrone(ctx); err != nil {
		return nil, err
	}

	var override *float64
	if req.PayloadWeightOverrideKg != nil {
		v := req.GetPayloadWeightOverrideKg()
		override = &v
	}

	if err := s.d.CompleteRequest(req.GetRequestId(), req.GetFinalLocationId(), req.GetMethod(), override); err != nil {
		return nil, toStatusError(err)
	}
	return &dronev1.CompleteRequestResponse{}, nil
}

// GetDroneStatus forwards to Dispatcher.GetDroneStatus.
func (s *DroneServer) GetDroneStatus(ctx context.Context, req *dronev1.GetDroneStatusRequest) (*dronev1.GetDroneStatusResponse, error) {
	if _, err := auth.RequireDrone(ctx); err != nil {
		return nil, err
	}
	dr, err := s.d.GetDroneStatus(req.GetDroneId())
	if err != nil {
		return nil, toStatusError(err)
	}
	return &dronev1.GetDroneStatusResponse{Drone: toProtoDrone(&dr)}, nil
}

func toProtoDrone(d *models.Drone) *dronev1.Drone {
	return &dronev1.Drone{
		Id:                  d.ID,
		Status:              string(d.Status),
		CurrentLocationId:   d.CurrentLocationID,
		AssignedRequestId:   d.AssignedRequestID,
		RequestIds:          d.RequestIDs,
		BatteryLevelKwh:     d.BatteryLevelKWh,
		BatteryCapacityKwh:  d.BatteryCapacityKWh,
		IsCharging:          d.IsCharging,
		DeliveryRoute:       d.DeliveryRoute,
		CurrentSpeedMPerSec: d.CurrentSpeedMPerSec,
	}
}

//go:build grpcserver

package grpcapi

import (
	"context"
	"errors"

	dispatchv1 "hospitaldrones/api/dispatch/v1"
	"hospitaldrones/internal/auth"
	"hospitaldrones/internal/dispatch"
	"hospitaldrones/internal/patientstore"
	"hospitaldrones/models"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DispatchServer implements DispatchService: the requester-facing
// surface (create_request, cancel_request, get_request_status,
// get_all_pending_requests), restricted to end-user and admin
// principals.
type DispatchServer struct {
	dispatchv1.UnimplementedDispatchServiceServer
	d *dispatch.Dispatcher
}

// CreateRequest validates the caller and forwards to Dispatcher.CreateRequest.
func (s *DispatchServer) CreateRequest(ctx context.Context, req *dispatchv1.CreateRequestRequest) (*dispatchv1.CreateRequestResponse, error) {
	p, err := auth.RequireEndUserOrAdmin(ctx)
	if err != nil {
		return nil, err
	}

	triage, ok := models.ParseTriageClass(req.GetTriageClass())
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown triage class %q", req.GetTriageClass())
	}

	items := make(map[string]int, len(req.GetPayloadItems()))
	for id, qty := range req.GetPayloadItems() {
		items[id] = int(qty)
	}

	id, err := s.d.CreateRequest(dispatch.CreateRequestInput{
		RequesterID:         p.Name,
		RequesterName:       req.GetRequesterName(),
		RequesterLocationID: req.GetLocationId(),
		TriageClass:         triage,
		Description:         req.GetDescription(),
		EmergencyFlag:       req.GetEmergencyFlag(),
		PatientID:           req.GetPatientId(),
		PayloadItems:        items,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &dispatchv1.CreateRequestResponse{RequestId: id}, nil
}

// CancelRequest forwards to Dispatcher.CancelRequest.
func (s *DispatchServer) CancelRequest(ctx context.Context, req *dispatchv1.CancelRequestRequest) (*dispatchv1.CancelRequestResponse, error) {
	if _, err := auth.RequireEndUserOrAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.d.CancelRequest(req.GetRequestId()); err != nil {
		return nil, toStatusError(err)
	}
	return &dispatchv1.CancelRequestResponse{}, nil
}

// GetRequestStatus forwards to Dispatcher.GetRequestStatus.
func (s *DispatchServer) GetRequestStatus(ctx context.Context, req *dispatchv1.GetRequestStatusRequest) (*dispatchv1.GetRequestStatusResponse, error) {
	if _, err := auth.RequireEndUserOrAdmin(ctx); err != nil {
		return nil, err
	}
	r, err := s.d.GetRequestStatus(req.GetRequestId())
	if err != nil {
		return nil, toStatusError(err)
	}
	return &dispatchv1.GetRequestStatusResponse{Request: toProtoRequest(&r)}, nil
}

// GetAllPendingRequests forwards to Dispatcher.GetAllPendingRequests.
func (s *DispatchServer) GetAllPendingRequests(ctx context.Context, _ *dispatchv1.GetAllPendingRequestsRequest) (*dispatchv1.GetAllPendingRequestsResponse, error) {
	if _, err := auth.RequireEndUserOrAdmin(ctx); err != nil {
		return nil, err
	}
	pending := s.d.GetAllPendingRequests()
	out := make([]*dispatchv1.Request, len(pending))
	for i := range pending {
		out[i] = toProtoRequest(&pending[i])
	}
	return &dispatchv1.GetAllPendingRequestsResponse{Requests: out}, nil
}

func toProtoRequest(r *models.Request) *dispatchv1.Request {
	return &dispatchv1.Request{
		Id:                r.ID,
		ParentRequestId:   r.ParentRequestID,
		Status:            string(r.Status),
		TriageClass:       r.TriageClass.Name,
		LocationId:        r.RequesterLocationID,
		AssignedDroneId:   r.AssignedDroneID,
		DeliverySequence:  int32(r.DeliverySequence),
		TotalDeliveries:   int32(r.TotalDeliveries),
		DistanceMeters:    r.DistanceMeters,
		DroneEnergyKwh:    r.DroneEnergyKWh,
		EnergySavedKwh:    r.EnergySavedKWh,
		Co2SavedKg:        r.CO2SavedKg,
		PathEfficiencyPct: r.PathEfficiencyPct,
	}
}

func toStatusError(err error) error {
	switch {
	case errors.Is(err, dispatch.ErrUnknownRequest), errors.Is(err, dispatch.ErrUnknownDrone), errors.Is(err, dispatch.ErrUnknownPatient):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, dispatch.ErrUnknownLocation), errors.Is(err, dispatch.ErrEmptyPayload):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, patientstore.ErrInvalidPatientID):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Errorf(codes.Internal, "%v", err)
	}
}

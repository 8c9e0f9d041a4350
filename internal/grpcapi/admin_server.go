//go:build grpcserver

package grpcapi

import (
	"context"

	adminv1 "hospitaldrones/api/admin/v1"
	"hospitaldrones/internal/auth"
	"hospitaldrones/internal/dispatch"
)

// AdminServer implements AdminService: fleet-operator operations
// (add_drone, get_statistics, get_energy_report), restricted to admin
// principals.
type AdminServer struct {
	adminv1.UnimplementedAdminServiceServer
	d *dispatch.Dispatcher
}

// AddDrone registers a new drone with the dispatcher.
func (s *AdminServer) AddDrone(ctx context.Context, req *adminv1.AddDroneRequest) (*adminv1.AddDroneResponse, error) {
	if _, err := auth.RequireKind(ctx, "admin"); err != nil {
		return nil, err
	}
	id, err := s.d.AddDrone(req.GetHomeLocationId(), req.GetIsEmergency(), req.GetBatteryCapacityKwh())
	if err != nil {
		return nil, toStatusError(err)
	}
	return &adminv1.AddDroneResponse{DroneId: id}, nil
}

// GetStatistics returns the dispatcher's running counters and cumulative
// energy/CO2 accounting.
func (s *AdminServer) GetStatistics(ctx context.Context, _ *adminv1.GetStatisticsRequest) (*adminv1.GetStatisticsResponse, error) {
	if _, err := auth.RequireKind(ctx, "admin"); err != nil {
		return nil, err
	}
	stats := s.d.GetStatistics()
	return &adminv1.GetStatisticsResponse{
		TotalRequests:       int32(stats.TotalRequests),
		PendingRequests:     int32(stats.PendingRequests),
		AssignedRequests:    int32(stats.AssignedRequests),
		CompletedRequests:   int32(stats.CompletedRequests),
		CancelledRequests:   int32(stats.CancelledRequests),
		TotalDrones:         int32(stats.TotalDrones),
		AvailableDrones:     int32(stats.AvailableDrones),
		ChargingDrones:      int32(stats.ChargingDrones),
		TotalDistanceMeters: stats.TotalDistanceMeters,
		TotalDroneEnergyKwh: stats.TotalDroneEnergyKWh,
		TotalEnergySavedKwh: stats.TotalEnergySavedKWh,
		TotalCo2SavedKg:     stats.TotalCO2SavedKg,
	}, nil
}

// GetEnergyReport returns the per-request energy report for a completed
// request.
func (s *AdminServer) GetEnergyReport(ctx context.Context, req *adminv1.GetEnergyReportRequest) (*adminv1.GetEnergyReportResponse, error) {
	if _, err := auth.RequireKind(ctx, "admin"); err != nil {
		return nil, err
	}
	report, ok := s.d.GetEnergyReport(req.GetRequestId())
	if !ok {
		return nil, notFoundf("no completed request %s", req.GetRequestId())
	}
	return &adminv1.GetEnergyReportResponse{
		RequestId:           report.RequestID,
		DistanceMeters:      report.DistanceMeters,
		DroneEnergyKwh:      report.DroneEnergyKWh,
		ComparisonEnergyKwh: report.ComparisonEnergyKWh,
		EnergySavedKwh:      report.EnergySavedKWh,
		Co2SavedKg:          report.CO2SavedKg,
		TraditionalMethod:   report.TraditionalMethod,
		PathEfficiencyPct:   report.PathEfficiencyPct,
		PathEfficiencyRatio: report.PathEfficiencyRatio,
		TimeSavedSeconds:    report.TimeSavedSeconds,
	}, nil
}

//go:build grpcserver

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospitaldrones/internal/config"
	"hospitaldrones/internal/db"
	"hospitaldrones/internal/dispatch"
	"hospitaldrones/internal/graphx"
	"hospitaldrones/internal/grpcapi"
	"hospitaldrones/internal/patientstore"
	"hospitaldrones/internal/planner"
	"hospitaldrones/models"
	"hospitaldrones/repository"
)

func main() {
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}()

	patients := patientstore.New(repository.NewPatientRepository(d))
	fleet := repository.NewFleetRepository(d)

	graph, chargingStations, bounds := seedFloorPlan()
	dcfg := dispatch.DefaultConfig(chargingStations, bounds)
	dispatcher := dispatch.New(dcfg, graph, patients, nil)

	if err := restoreFleet(dispatcher, fleet, graph); err != nil {
		log.Fatalf("restore fleet: %v", err)
	}

	shutdown, err := grpcapi.StartGRPC(cfg, dispatcher)
	if err != nil {
		log.Fatalf("start grpc: %v", err)
	}
	log.Printf("gRPC server listening on %s", cfg.GRPC.Address)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// seedFloorPlan builds the hospital's static floor-plan graph: a central
// dispensary, a handful of wards, and two charging stations. There is no
// persistence layer for floor-plan topology — it is fixed per deployment,
// the way the reference corpus's simulators hardcode their scenario maps.
func seedFloorPlan() (*graphx.Graph, []string, planner.Bounds) {
	g := graphx.New()
	locations := []models.Location{
		{ID: "dispensary", Name: "Central Dispensary", X: 0, Y: 0, Floor: 1},
		{ID: "ward_a", Name: "Ward A", X: 40, Y: 10, Floor: 1},
		{ID: "ward_b", Name: "Ward B", X: 60, Y: -20, Floor: 1},
		{ID: "ward_c", Name: "Ward C", X: -30, Y: 35, Floor: 2},
		{ID: "icu", Name: "ICU", X: 15, Y: 55, Floor: 2},
		{ID: "er", Name: "Emergency Room", X: -45, Y: -25, Floor: 1},
		{ID: "charging_1", Name: "Rooftop Charging Pad", X: 0, Y: 70, Floor: 3},
		{ID: "charging_2", Name: "East Wing Charging Pad", X: 70, Y: 40, Floor: 2},
	}
	for _, loc := range locations {
		g.AddLocation(loc)
	}

	edges := [][2]string{
		{"dispensary", "ward_a"}, {"dispensary", "ward_b"}, {"dispensary", "ward_c"},
		{"dispensary", "er"}, {"ward_a", "icu"}, {"ward_c", "icu"},
		{"dispensary", "charging_1"}, {"ward_b", "charging_2"}, {"icu", "charging_1"},
	}
	for _, e := range edges {
		dist, _ := g.EuclideanDistance(e[0], e[1])
		if err := g.AddEdge(e[0], e[1], dist, true); err != nil {
			log.Fatalf("seed floor plan: %v", err)
		}
	}

	bounds := planner.Bounds{MinX: -100, MinY: -100, MaxX: 100, MaxY: 100}
	return g, []string{"charging_1", "charging_2"}, bounds
}

// restoreFleet re-registers every persisted drone from the fleet roster
// with the dispatcher, so a restart doesn't lose provisioned drones
// (though any mid-flight live state from before the restart is not
// recoverable — the dispatcher has no live-state persistence, only the
// roster).
func restoreFleet(d *dispatch.Dispatcher, fleet *repository.FleetRepository, graph *graphx.Graph) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	roster, err := fleet.ListAll(ctx, "")
	if err != nil {
		return err
	}
	for _, rec := range roster {
		if _, ok := graph.Location(rec.HomeLocationID); !ok {
			log.Printf("skip fleet drone %s: unknown home location %s", rec.PublicID, rec.HomeLocationID)
			continue
		}
		if _, err := d.AddDrone(rec.HomeLocationID, rec.IsEmergency, rec.BatteryCapacityKWh); err != nil {
			return err
		}
	}
	return nil
}

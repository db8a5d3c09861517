package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/terralawn/mowplan/internal/adapters/nats"
	"github.com/terralawn/mowplan/internal/adapters/postgres"
	"github.com/terralawn/mowplan/internal/adapters/valkey"
	"github.com/terralawn/mowplan/internal/core/ports"
	"github.com/terralawn/mowplan/internal/core/usecases"
	"github.com/terralawn/mowplan/internal/pkg/config"
	"github.com/terralawn/mowplan/internal/pkg/logging"
	"github.com/terralawn/mowplan/internal/pkg/telemetry"
)

// The worker consumes mow.plan.requested events and runs the planning
// pipeline out-of-band, for clients that don't want to hold an HTTP
// request open for a large field.
func main() {
	cfg, err := config.Load("mowplan-worker")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
	}

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer publisher.Close()

	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer subscriber.Close()

	// An unavailable cache goes in as untyped nil so the plan service
	// skips it; a nil pointer in an interface is not nil.
	var planCache ports.CacheService
	if cache != nil {
		planCache = cache
	}
	planSvc := usecases.NewPlanService(
		postgres.NewMissionRepo(db),
		postgres.NewPlanRepo(db),
		planCache,
		publisher,
	)

	err = subscriber.SubscribePlanRequests(ctx, func(ctx context.Context, missionID string) error {
		slog.Info("plan request received", "mission_id", missionID)
		plan, err := planSvc.PlanMission(ctx, missionID)
		if err != nil {
			slog.Error("planning failed", "mission_id", missionID, "error", err)
			// Planner errors are terminal for this mission; ack so the
			// request is not redelivered. The failure event is already
			// published by the service.
			return nil
		}
		slog.Info("plan completed",
			"mission_id", missionID,
			"plan_id", plan.ID,
			"coverage", plan.Result.CoverageFraction,
			"duration_ms", plan.DurationMS,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("plan worker running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("worker stopping")
}

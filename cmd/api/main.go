package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/terralawn/mowplan/internal/adapters/http"
	natsadapter "github.com/terralawn/mowplan/internal/adapters/nats"
	"github.com/terralawn/mowplan/internal/adapters/postgres"
	"github.com/terralawn/mowplan/internal/adapters/valkey"
	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/core/ports"
	"github.com/terralawn/mowplan/internal/core/usecases"
	"github.com/terralawn/mowplan/internal/pkg/config"
	"github.com/terralawn/mowplan/internal/pkg/logging"
	"github.com/terralawn/mowplan/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("mowplan-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	missionRepo := postgres.NewMissionRepo(db)
	planRepo := postgres.NewPlanRepo(db)

	// Use cases. Unavailable adapters go in as untyped nil so the plan
	// service skips them; a nil pointer in an interface is not nil.
	var planCache ports.CacheService
	if cache != nil {
		planCache = cache
	}
	var planEvents ports.EventPublisher
	if publisher != nil {
		planEvents = publisher
	}
	missionSvc := usecases.NewMissionService(missionRepo)
	planSvc := usecases.NewPlanService(missionRepo, planRepo, planCache, planEvents)

	deps := &http.Dependencies{
		Missions: missionSvc,
		Plans:    planSvc,
		NATS:     natsConn,
		DB:       db,
		Cache:    cache,
	}

	plannerDefaults := domain.PlanConfig{
		LaneWidthM:              cfg.Planner.LaneWidthM,
		ObstacleMarginM:         cfg.Planner.ObstacleMarginM,
		MBBOrientationOffsetDeg: cfg.Planner.MBBOrientationOffsetDeg,
		StartCorner:             cfg.Planner.StartCorner,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    4 * 1024 * 1024, // mission files with polygonalized fences get large
		AppName:      "MowPlan API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps, plannerDefaults)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

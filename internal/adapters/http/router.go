package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, plannerDefaults domain.PlanConfig) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1. Planning runs the whole pipeline inline, so it
	// gets a wider timeout than the read endpoints.
	v1 := app.Group("/v1")
	v1.Post("/missions", timeout.NewWithContext(CreateMissionHandler(deps), 15*time.Second))
	v1.Post("/missions/import", timeout.NewWithContext(ImportMissionHandler(deps, plannerDefaults), 15*time.Second))
	v1.Get("/missions", timeout.NewWithContext(ListMissionsHandler(deps), 15*time.Second))
	v1.Get("/missions/:id", timeout.NewWithContext(GetMissionHandler(deps), 15*time.Second))
	v1.Delete("/missions/:id", timeout.NewWithContext(DeleteMissionHandler(deps), 15*time.Second))
	v1.Post("/missions/:id/plan", timeout.NewWithContext(PlanMissionHandler(deps), 60*time.Second))
	v1.Get("/missions/:id/plan", timeout.NewWithContext(LatestPlanHandler(deps), 15*time.Second))
	v1.Get("/plans/:id", timeout.NewWithContext(GetPlanHandler(deps), 15*time.Second))
	v1.Get("/plans/:id/geojson", timeout.NewWithContext(PlanGeoJSONHandler(deps), 15*time.Second))
	v1.Get("/plans/:id/waypoints", timeout.NewWithContext(PlanWaypointsHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket: relay of plan lifecycle events
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}

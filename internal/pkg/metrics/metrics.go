package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mowplan",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mowplan",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Planner metrics
	PlansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mowplan",
		Subsystem: "planner",
		Name:      "plans_total",
		Help:      "Total planning runs by outcome",
	}, []string{"outcome"})

	PlanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mowplan",
		Subsystem: "planner",
		Name:      "plan_duration_seconds",
		Help:      "Duration of full pipeline runs",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	CoverageFraction = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mowplan",
		Subsystem: "planner",
		Name:      "coverage_fraction",
		Help:      "Coverage fraction of completed plans",
		Buckets:   []float64{0.5, 0.8, 0.9, 0.95, 0.99, 1},
	})

	PathVertices = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mowplan",
		Subsystem: "planner",
		Name:      "path_vertices",
		Help:      "Vertex count of emitted mow paths",
		Buckets:   prometheus.ExponentialBuckets(8, 2, 10),
	})

	RoadmapSegments = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mowplan",
		Subsystem: "planner",
		Name:      "roadmap_segments",
		Help:      "Segment count of built roadmaps",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mowplan",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mowplan",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

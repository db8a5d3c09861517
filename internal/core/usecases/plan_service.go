package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/terralawn/mowplan/internal/core/coverage"
	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/core/ports"
	"github.com/terralawn/mowplan/internal/pkg/metrics"
)

// PlanService runs the coverage pipeline for missions and manages
// plan persistence, caching, and event publication.
type PlanService struct {
	missions ports.MissionRepository
	plans    ports.PlanRepository
	cache    ports.CacheService
	events   ports.EventPublisher
}

// NewPlanService creates a new PlanService. cache and events may be
// nil; the service degrades to direct repository access.
func NewPlanService(missions ports.MissionRepository, plans ports.PlanRepository, cache ports.CacheService, events ports.EventPublisher) *PlanService {
	return &PlanService{missions: missions, plans: plans, cache: cache, events: events}
}

// PlanMission loads a mission, runs the planning pipeline over a
// frozen snapshot of its inputs, and persists the outcome. A failed
// run leaves the mission's last successful plan untouched.
func (s *PlanService) PlanMission(ctx context.Context, missionID string) (*domain.Plan, error) {
	mission, err := s.missions.GetByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("load mission %s: %w", missionID, err)
	}

	started := time.Now()
	result, err := coverage.Plan(ctx, mission.Boundary, mission.Obstacles, mission.Config)
	duration := time.Since(started)
	metrics.PlanDuration.Observe(duration.Seconds())

	if err != nil {
		metrics.PlansTotal.WithLabelValues(outcomeLabel(err)).Inc()
		if s.events != nil {
			if pubErr := s.events.PublishPlanFailed(ctx, missionID, err); pubErr != nil {
				slog.WarnContext(ctx, "publish plan failure event", "error", pubErr)
			}
		}
		return nil, fmt.Errorf("plan mission %s: %w", missionID, err)
	}

	plan := &domain.Plan{
		ID:         uuid.NewString(),
		MissionID:  missionID,
		Result:     *result,
		DurationMS: duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}

	metrics.PlansTotal.WithLabelValues("ok").Inc()
	metrics.CoverageFraction.Observe(result.CoverageFraction)
	metrics.PathVertices.Observe(float64(len(result.MowPath)))
	metrics.RoadmapSegments.Observe(float64(len(result.Roadmap)))

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("persist plan: %w", err)
	}
	s.cachePlan(ctx, plan)

	if s.events != nil {
		if pubErr := s.events.PublishPlanCompleted(ctx, plan); pubErr != nil {
			slog.WarnContext(ctx, "publish plan completed event", "error", pubErr)
		}
	}
	return plan, nil
}

// GetPlan returns a plan by ID, cache-aside.
func (s *PlanService) GetPlan(ctx context.Context, id string) (*domain.Plan, error) {
	cacheKey := "plans:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var plan domain.Plan
			if err := json.Unmarshal(data, &plan); err == nil {
				metrics.CacheHits.WithLabelValues("plan").Inc()
				return &plan, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("plan").Inc()
	}

	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cachePlan(ctx, plan)
	return plan, nil
}

// LatestPlan returns the most recent plan for a mission.
func (s *PlanService) LatestPlan(ctx context.Context, missionID string) (*domain.Plan, error) {
	return s.plans.LatestByMission(ctx, missionID)
}

func (s *PlanService) cachePlan(ctx context.Context, plan *domain.Plan) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(plan); err == nil {
		// Plans are immutable once written; a long TTL is safe.
		_ = s.cache.Set(ctx, "plans:id:"+plan.ID, data, 3600)
	}
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyBoundary):
		return "empty_boundary"
	case errors.Is(err, domain.ErrDegenerateHull):
		return "degenerate_hull"
	case errors.Is(err, domain.ErrNoPath):
		return "no_path"
	case errors.Is(err, domain.ErrGeometryPrecision):
		return "geometry_precision"
	default:
		return "error"
	}
}

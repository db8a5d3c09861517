package ports

import (
	"context"

	"github.com/terralawn/mowplan/internal/core/domain"
)

// EventPublisher publishes planner events to a message broker.
type EventPublisher interface {
	PublishPlanRequested(ctx context.Context, missionID string) error
	PublishPlanCompleted(ctx context.Context, plan *domain.Plan) error
	PublishPlanFailed(ctx context.Context, missionID string, planErr error) error
}

// EventSubscriber subscribes to planner events from a message broker.
type EventSubscriber interface {
	SubscribePlanRequests(ctx context.Context, handler func(ctx context.Context, missionID string) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

package ports

import (
	"context"

	"github.com/terralawn/mowplan/internal/core/domain"
)

// MissionRepository persists planning requests.
type MissionRepository interface {
	Create(ctx context.Context, mission *domain.Mission) error
	GetByID(ctx context.Context, id string) (*domain.Mission, error)
	List(ctx context.Context, limit, offset int) ([]domain.Mission, int, error)
	Delete(ctx context.Context, id string) error
}

// PlanRepository persists pipeline results.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) error
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	LatestByMission(ctx context.Context, missionID string) (*domain.Plan, error)
}

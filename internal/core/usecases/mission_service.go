package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/core/ports"
)

// MissionService handles mission CRUD and input validation.
type MissionService struct {
	missions ports.MissionRepository
}

// NewMissionService creates a new MissionService.
func NewMissionService(missions ports.MissionRepository) *MissionService {
	return &MissionService{missions: missions}
}

// Create validates and stores a new mission. Rings are closed on the
// way in so every downstream consumer sees first == last.
func (s *MissionService) Create(ctx context.Context, mission *domain.Mission) (*domain.Mission, error) {
	if len(mission.Boundary.Vertices()) < 3 {
		return nil, fmt.Errorf("boundary needs at least 3 vertices, got %d", len(mission.Boundary.Vertices()))
	}
	if mission.Config.LaneWidthM <= 0.1 {
		return nil, fmt.Errorf("lane width %.3f m must exceed 0.1 m", mission.Config.LaneWidthM)
	}
	if mission.Config.StartCorner < 0 || mission.Config.StartCorner > 3 {
		return nil, fmt.Errorf("start corner must be 0-3, got %d", mission.Config.StartCorner)
	}
	if mission.Config.MBBOrientationOffsetDeg < 0 || mission.Config.MBBOrientationOffsetDeg > 180 {
		return nil, fmt.Errorf("orientation offset must be within [0, 180], got %.1f", mission.Config.MBBOrientationOffsetDeg)
	}

	mission.ID = uuid.NewString()
	mission.CreatedAt = time.Now().UTC()
	mission.Boundary = mission.Boundary.Close()
	for i, o := range mission.Obstacles {
		if len(o.Vertices()) < 3 {
			return nil, fmt.Errorf("obstacle %d needs at least 3 vertices", i)
		}
		mission.Obstacles[i] = o.Close()
	}

	if err := s.missions.Create(ctx, mission); err != nil {
		return nil, fmt.Errorf("create mission: %w", err)
	}
	return mission, nil
}

// GetByID returns a single mission.
func (s *MissionService) GetByID(ctx context.Context, id string) (*domain.Mission, error) {
	return s.missions.GetByID(ctx, id)
}

// List returns missions with offset pagination.
func (s *MissionService) List(ctx context.Context, limit, offset int) ([]domain.Mission, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.missions.List(ctx, limit, offset)
}

// Delete removes a mission.
func (s *MissionService) Delete(ctx context.Context, id string) error {
	return s.missions.Delete(ctx, id)
}

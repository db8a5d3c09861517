package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/terralawn/mowplan/internal/core/domain"
)

// PlanRepo implements ports.PlanRepository with pgx.
type PlanRepo struct {
	db *DB
}

// NewPlanRepo creates a new PlanRepo.
func NewPlanRepo(db *DB) *PlanRepo {
	return &PlanRepo{db: db}
}

// Create inserts a plan. The coverage fraction is denormalized into
// its own column for cheap dashboard queries.
func (r *PlanRepo) Create(ctx context.Context, p *domain.Plan) error {
	result, err := json.Marshal(p.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO plans (id, mission_id, result, coverage_fraction, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.MissionID, result, p.Result.CoverageFraction, p.DurationMS, p.CreatedAt)
	return err
}

// GetByID returns a plan by UUID.
func (r *PlanRepo) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	return r.scanOne(ctx, `
		SELECT id, mission_id, result, duration_ms, created_at
		FROM plans WHERE id = $1
	`, id)
}

// LatestByMission returns the most recent plan for a mission.
func (r *PlanRepo) LatestByMission(ctx context.Context, missionID string) (*domain.Plan, error) {
	return r.scanOne(ctx, `
		SELECT id, mission_id, result, duration_ms, created_at
		FROM plans WHERE mission_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, missionID)
}

func (r *PlanRepo) scanOne(ctx context.Context, query string, arg any) (*domain.Plan, error) {
	var p domain.Plan
	var result []byte
	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.MissionID, &result, &p.DurationMS, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(result, &p.Result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &p, nil
}

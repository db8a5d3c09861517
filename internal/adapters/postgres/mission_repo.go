package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/terralawn/mowplan/internal/core/domain"
)

// MissionRepo implements ports.MissionRepository with pgx. Geometry
// columns are JSONB: polygons are small and opaque to SQL.
type MissionRepo struct {
	db *DB
}

// NewMissionRepo creates a new MissionRepo.
func NewMissionRepo(db *DB) *MissionRepo {
	return &MissionRepo{db: db}
}

// Create inserts a mission.
func (r *MissionRepo) Create(ctx context.Context, m *domain.Mission) error {
	boundary, err := json.Marshal(m.Boundary)
	if err != nil {
		return fmt.Errorf("marshal boundary: %w", err)
	}
	obstacles, err := json.Marshal(m.Obstacles)
	if err != nil {
		return fmt.Errorf("marshal obstacles: %w", err)
	}
	cfg, err := json.Marshal(m.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO missions (id, name, boundary, obstacles, config, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.Name, boundary, obstacles, cfg, m.CreatedAt)
	return err
}

// GetByID returns a mission by UUID.
func (r *MissionRepo) GetByID(ctx context.Context, id string) (*domain.Mission, error) {
	var m domain.Mission
	var boundary, obstacles, cfg []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, boundary, obstacles, config, created_at
		FROM missions WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &boundary, &obstacles, &cfg, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(boundary, &m.Boundary); err != nil {
		return nil, fmt.Errorf("unmarshal boundary: %w", err)
	}
	if err := json.Unmarshal(obstacles, &m.Obstacles); err != nil {
		return nil, fmt.Errorf("unmarshal obstacles: %w", err)
	}
	if err := json.Unmarshal(cfg, &m.Config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &m, nil
}

// List returns missions ordered newest first, with the total count.
func (r *MissionRepo) List(ctx context.Context, limit, offset int) ([]domain.Mission, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM missions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, boundary, obstacles, config, created_at
		FROM missions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var missions []domain.Mission
	for rows.Next() {
		var m domain.Mission
		var boundary, obstacles, cfg []byte
		if err := rows.Scan(&m.ID, &m.Name, &boundary, &obstacles, &cfg, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(boundary, &m.Boundary); err != nil {
			return nil, 0, fmt.Errorf("unmarshal boundary: %w", err)
		}
		if err := json.Unmarshal(obstacles, &m.Obstacles); err != nil {
			return nil, 0, fmt.Errorf("unmarshal obstacles: %w", err)
		}
		if err := json.Unmarshal(cfg, &m.Config); err != nil {
			return nil, 0, fmt.Errorf("unmarshal config: %w", err)
		}
		missions = append(missions, m)
	}
	return missions, total, rows.Err()
}

// Delete removes a mission and its plans.
func (r *MissionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM missions WHERE id = $1`, id)
	return err
}

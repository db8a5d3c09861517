package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/core/usecases"
)

// --- Mock PlanRepository ---

type mockPlanRepo struct {
	createFn func(ctx context.Context, p *domain.Plan) error
	plans    map[string]*domain.Plan
}

func (m *mockPlanRepo) Create(ctx context.Context, p *domain.Plan) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	if m.plans == nil {
		m.plans = map[string]*domain.Plan{}
	}
	m.plans[p.ID] = p
	return nil
}

func (m *mockPlanRepo) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	if p, ok := m.plans[id]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

func (m *mockPlanRepo) LatestByMission(ctx context.Context, missionID string) (*domain.Plan, error) {
	for _, p := range m.plans {
		if p.MissionID == missionID {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	completed []string
	failed    []string
}

func (m *mockPublisher) PublishPlanRequested(ctx context.Context, missionID string) error {
	return nil
}

func (m *mockPublisher) PublishPlanCompleted(ctx context.Context, plan *domain.Plan) error {
	m.completed = append(m.completed, plan.MissionID)
	return nil
}

func (m *mockPublisher) PublishPlanFailed(ctx context.Context, missionID string, planErr error) error {
	m.failed = append(m.failed, missionID)
	return nil
}

// --- Tests ---

func TestPlanService_PlanMission(t *testing.T) {
	mission := &domain.Mission{
		ID:       "m-1",
		Name:     "back lawn",
		Boundary: testBoundary().Close(),
		Config:   testConfig(),
	}
	missions := &mockMissionRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Mission, error) {
			if id != "m-1" {
				t.Errorf("unexpected mission id %s", id)
			}
			return mission, nil
		},
	}
	plans := &mockPlanRepo{}
	pub := &mockPublisher{}

	svc := usecases.NewPlanService(missions, plans, nil, pub)
	plan, err := svc.PlanMission(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.ID == "" || plan.MissionID != "m-1" {
		t.Errorf("plan identity wrong: %+v", plan)
	}
	if plan.Result.CoverageFraction < 0.9 {
		t.Errorf("expected high coverage on an open square, got %f", plan.Result.CoverageFraction)
	}
	if len(plan.Result.MowPath) == 0 {
		t.Error("expected a mow path")
	}
	if len(plans.plans) != 1 {
		t.Error("plan was not persisted")
	}
	if len(pub.completed) != 1 {
		t.Error("completion event was not published")
	}
}

func TestPlanService_PlanMission_PublishesFailure(t *testing.T) {
	// Degenerate boundary: the pipeline fails, the failure event fires,
	// and nothing is persisted.
	mission := &domain.Mission{
		ID: "m-2",
		Boundary: domain.Polygon{
			{Lon: 0, Lat: 0}, {Lon: 0, Lat: 0}, {Lon: 0, Lat: 0}, {Lon: 0, Lat: 0},
		},
		Config: testConfig(),
	}
	missions := &mockMissionRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Mission, error) {
			return mission, nil
		},
	}
	plans := &mockPlanRepo{}
	pub := &mockPublisher{}

	svc := usecases.NewPlanService(missions, plans, nil, pub)
	_, err := svc.PlanMission(context.Background(), "m-2")
	if !errors.Is(err, domain.ErrDegenerateHull) {
		t.Fatalf("expected ErrDegenerateHull, got %v", err)
	}
	if len(plans.plans) != 0 {
		t.Error("failed run must not persist a plan")
	}
	if len(pub.failed) != 1 {
		t.Error("failure event was not published")
	}
}

func TestPlanService_GetPlan_NoCache(t *testing.T) {
	plans := &mockPlanRepo{plans: map[string]*domain.Plan{
		"p-1": {ID: "p-1", MissionID: "m-1"},
	}}

	svc := usecases.NewPlanService(&mockMissionRepo{}, plans, nil, nil)
	plan, err := svc.GetPlan(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.ID != "p-1" {
		t.Errorf("expected p-1, got %s", plan.ID)
	}
}

package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/terralawn/mowplan/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// planEvent is the wire form of plan lifecycle messages.
type planEvent struct {
	MissionID        string  `json:"mission_id"`
	PlanID           string  `json:"plan_id,omitempty"`
	CoverageFraction float64 `json:"coverage_fraction,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// NewPublisher connects to NATS and ensures the plan stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "MOW_PLANS",
		Subjects:  []string{"mow.plan.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishPlanRequested(ctx context.Context, missionID string) error {
	data, err := json.Marshal(planEvent{MissionID: missionID})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("mow.plan.requested", data)
	return err
}

func (p *Publisher) PublishPlanCompleted(ctx context.Context, plan *domain.Plan) error {
	data, err := json.Marshal(planEvent{
		MissionID:        plan.MissionID,
		PlanID:           plan.ID,
		CoverageFraction: plan.Result.CoverageFraction,
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("mow.plan.completed", data)
	return err
}

func (p *Publisher) PublishPlanFailed(ctx context.Context, missionID string, planErr error) error {
	data, err := json.Marshal(planEvent{MissionID: missionID, Error: planErr.Error()})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("mow.plan.failed", data)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. the
// WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

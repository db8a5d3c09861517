package http

import (
	"github.com/nats-io/nats.go"

	"github.com/terralawn/mowplan/internal/adapters/postgres"
	"github.com/terralawn/mowplan/internal/adapters/valkey"
	"github.com/terralawn/mowplan/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Missions *usecases.MissionService
	Plans    *usecases.PlanService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}

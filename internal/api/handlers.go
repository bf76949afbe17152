package api

import (
	"context"
	"time"

	"github.com/vytor/timestrainer/internal/game"
	"github.com/vytor/timestrainer/internal/services"
)

// Pinger is the readiness dependency, normally the database.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	DB           Pinger
	GameService  services.GameService
	StatsService services.StatsService
	// TickInterval is how often the WebSocket stream pushes a fresh view.
	TickInterval time.Duration
}

func (s *Server) pushInterval() time.Duration {
	if s.TickInterval <= 0 {
		return game.DefaultTickInterval
	}
	return s.TickInterval
}

// actionResponse is returned by the submit endpoints.
type actionResponse struct {
	View    game.View    `json:"view"`
	Outcome game.Outcome `json:"outcome"`
}

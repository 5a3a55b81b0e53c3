package service

import (
	"context"
	"time"

	"tournament-gateway/internal/cache"
	"tournament-gateway/internal/constants"

	"github.com/rs/zerolog"
)

// Pinger is the store connectivity probe. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type BasicStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type DetailedStatus struct {
	Status         string      `json:"status"`
	Database       string      `json:"database"`
	Timestamp      time.Time   `json:"timestamp"`
	ResponseTimeMS int64       `json:"responseTime"`
	Cache          cache.Stats `json:"cache"`
}

type HealthService struct {
	db     Pinger
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewHealthService(db Pinger, c *cache.Cache, logger zerolog.Logger) *HealthService {
	return &HealthService{db: db, cache: c, logger: logger}
}

func (s *HealthService) Basic() BasicStatus {
	return BasicStatus{Status: "OK", Timestamp: time.Now().UTC()}
}

// Detailed reports degraded when the store probe fails, independent of any
// other subsystem state.
func (s *HealthService) Detailed(ctx context.Context) DetailedStatus {
	start := time.Now()

	status := DetailedStatus{
		Status:    "healthy",
		Database:  "connected",
		Timestamp: start.UTC(),
		Cache:     s.cache.Stats(),
	}

	probeCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.db.PingContext(probeCtx); err != nil {
		s.logger.Error().Err(err).Msg("database connectivity probe failed")
		status.Status = "degraded"
		status.Database = "disconnected"
	}

	status.ResponseTimeMS = time.Since(start).Milliseconds()
	return status
}

func (s *HealthService) Degraded(status DetailedStatus) bool {
	return status.Status != "healthy"
}

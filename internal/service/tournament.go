package service

import (
	"context"
	"time"

	"tournament-gateway/internal/apperr"
	"tournament-gateway/internal/cache"
	"tournament-gateway/internal/constants"
	"tournament-gateway/internal/domain"
	"tournament-gateway/internal/store"

	"github.com/rs/zerolog"
)

// TournamentCreator mints a tournament id in the upstream system.
type TournamentCreator interface {
	CreateTournament(ctx context.Context, providerID, name string) (string, error)
}

type TournamentService struct {
	tournaments store.Store[domain.Tournament]
	riot        TournamentCreator
	cache       *cache.Cache
	logger      zerolog.Logger
}

func NewTournamentService(tournaments store.Store[domain.Tournament], riot TournamentCreator, c *cache.Cache, logger zerolog.Logger) *TournamentService {
	return &TournamentService{tournaments: tournaments, riot: riot, cache: c, logger: logger}
}

// Create mints the tournament upstream, then mirrors it locally. A failure
// between the two steps leaves the upstream tournament without a local
// record; there is no compensating rollback.
func (s *TournamentService) Create(ctx context.Context, providerID, name string) (*domain.Tournament, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if providerID == "" {
		return nil, apperr.New(apperr.Validation, "providerId is required")
	}

	s.logger.Info().Str("provider_id", providerID).Str("name", name).Msg("creating tournament")

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	id, err := s.riot.CreateTournament(apiCtx, providerID, name)
	if err != nil {
		s.logger.Error().Err(err).Str("provider_id", providerID).Msg("failed to create tournament upstream")
		return nil, apperr.Coerce(err, "Failed to create tournament")
	}

	tournament := domain.Tournament{
		ID:         id,
		ProviderID: providerID,
		Name:       name,
		CreatedAt:  time.Now().UTC(),
	}

	created, err := s.tournaments.Create(ctx, id, tournament)
	if err != nil {
		s.logger.Error().Err(err).Str("tournament_id", id).Msg("failed to persist tournament")
		return nil, apperr.Coerce(err, "Failed to create tournament")
	}

	s.cache.InvalidatePrefix(constants.CachePrefixTournaments)

	s.logger.Info().Str("tournament_id", id).Msg("tournament created")
	return created, nil
}

func (s *TournamentService) Get(ctx context.Context, id string) (*domain.Tournament, error) {
	tournament, err := s.tournaments.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to fetch tournament")
	}
	if tournament == nil {
		return nil, apperr.New(apperr.NotFound, "Tournament not found")
	}
	return tournament, nil
}

func (s *TournamentService) List(ctx context.Context) ([]domain.Tournament, error) {
	tournaments, err := s.tournaments.FindMany(ctx, store.Filter{})
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to list tournaments")
	}
	s.logger.Info().Int("count", len(tournaments)).Msg("tournaments listed")
	return tournaments, nil
}

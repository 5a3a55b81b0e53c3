package service

import (
	"context"
	"time"

	"tournament-gateway/internal/apperr"
	"tournament-gateway/internal/cache"
	"tournament-gateway/internal/constants"
	"tournament-gateway/internal/domain"
	"tournament-gateway/internal/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// ResultFetcher retrieves the raw match payload for a finished game.
type ResultFetcher interface {
	FetchMatchResult(ctx context.Context, gameID string) (map[string]any, error)
}

type CallbackService struct {
	callbacks store.Store[domain.GameCallback]
	results   store.Store[domain.GameResult]
	codeSvc   *CodeService
	riot      ResultFetcher
	cache     *cache.Cache
	logger    zerolog.Logger
}

func NewCallbackService(callbacks store.Store[domain.GameCallback], results store.Store[domain.GameResult], codeSvc *CodeService, riot ResultFetcher, c *cache.Cache, logger zerolog.Logger) *CallbackService {
	return &CallbackService{
		callbacks: callbacks,
		results:   results,
		codeSvc:   codeSvc,
		riot:      riot,
		cache:     c,
		logger:    logger,
	}
}

// Process persists the inbound completion callback, fetches and mirrors the
// match result, then marks the callback processed. When the fetch fails the
// callback stays in received and the call fails; there is no requeue.
func (s *CallbackService) Process(ctx context.Context, cb domain.GameCallback) (*domain.GameCallback, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if cb.GameID == "" {
		return nil, apperr.New(apperr.Validation, "gameId is required")
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to process game callback")
	}

	cb.ID = id
	cb.Status = domain.CallbackReceived
	cb.ReceivedAt = time.Now().UTC()
	cb.ProcessedAt = nil

	s.logger.Info().Str("game_id", cb.GameID).Str("callback_id", id).Msg("processing game callback")

	created, err := s.callbacks.Create(ctx, id, cb)
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to process game callback")
	}

	if _, err := s.fetchAndStoreResult(ctx, cb.GameID); err != nil {
		s.logger.Error().Err(err).Str("game_id", cb.GameID).Msg("result fetch failed, callback stays received")
		return nil, apperr.Coerce(err, "Failed to process game callback")
	}

	now := time.Now().UTC()
	created.Status = domain.CallbackProcessed
	created.ProcessedAt = &now

	updated, err := s.callbacks.Update(ctx, id, *created)
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to process game callback")
	}

	if cb.ShortCode != "" {
		if err := s.codeSvc.MarkUsed(ctx, cb.ShortCode); err != nil {
			s.logger.Warn().Err(err).Str("short_code", cb.ShortCode).Msg("failed to mark code used")
		}
	}

	s.cache.InvalidatePrefix(constants.CachePrefixGames(cb.TournamentID))

	s.logger.Info().Str("callback_id", id).Str("game_id", cb.GameID).Msg("game callback processed")
	return updated, nil
}

// fetchAndStoreResult mirrors the upstream match payload. Results are
// immutable: a gameId that was already fetched is served from the mirror.
func (s *CallbackService) fetchAndStoreResult(ctx context.Context, gameID string) (*domain.GameResult, error) {
	existing, err := s.results.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Debug().Str("game_id", gameID).Msg("game result already stored")
		return existing, nil
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	payload, err := s.riot.FetchMatchResult(apiCtx, gameID)
	if err != nil {
		return nil, err
	}

	result := domain.GameResult{
		ID:       gameID,
		Payload:  payload,
		StoredAt: time.Now().UTC(),
	}
	return s.results.Create(ctx, gameID, result)
}

func (s *CallbackService) GetCallbacks(ctx context.Context, tournamentID string) ([]domain.GameCallback, error) {
	callbacks, err := s.callbacks.FindMany(ctx, store.Filter{"tournamentId": tournamentID})
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to fetch game callbacks")
	}
	s.logger.Info().Str("tournament_id", tournamentID).Int("count", len(callbacks)).Msg("game callbacks fetched")
	return callbacks, nil
}

// GetCallback verifies the callback belongs to tournamentID before returning
// it; a mismatch is forbidden.
func (s *CallbackService) GetCallback(ctx context.Context, tournamentID, callbackID string) (*domain.GameCallback, error) {
	callback, err := s.callbacks.FindByID(ctx, callbackID)
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to fetch game callback")
	}
	if callback == nil {
		return nil, apperr.New(apperr.NotFound, "Game callback not found")
	}
	if callback.TournamentID != tournamentID {
		return nil, apperr.New(apperr.Forbidden, "Game callback does not belong to this tournament")
	}
	return callback, nil
}

func (s *CallbackService) GetResult(ctx context.Context, gameID string) (*domain.GameResult, error) {
	result, err := s.results.FindByID(ctx, gameID)
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to retrieve game result")
	}
	if result == nil {
		return nil, apperr.New(apperr.NotFound, "Game result not found")
	}
	return result, nil
}

package service

import (
	"context"
	"time"

	"tournament-gateway/internal/apperr"
	"tournament-gateway/internal/cache"
	"tournament-gateway/internal/config"
	"tournament-gateway/internal/constants"
	"tournament-gateway/internal/domain"
	"tournament-gateway/internal/notify"
	"tournament-gateway/internal/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type pingPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type WebhookService struct {
	webhooks store.Store[domain.TeamWebhook]
	poster   notify.Poster
	cache    *cache.Cache
	validate bool
	logger   zerolog.Logger
}

func NewWebhookService(webhooks store.Store[domain.TeamWebhook], poster notify.Poster, c *cache.Cache, cfg *config.Config, logger zerolog.Logger) *WebhookService {
	return &WebhookService{
		webhooks: webhooks,
		poster:   poster,
		cache:    c,
		validate: cfg.ValidateWebhooks,
		logger:   logger,
	}
}

// Register stores a webhook subscription for one (tournament, team) pair.
// When validation is enabled the target must answer a synchronous ping before
// the record is persisted.
func (s *WebhookService) Register(ctx context.Context, tournamentID, teamID, url string) (*domain.TeamWebhook, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if url == "" {
		return nil, apperr.New(apperr.Validation, "webhookUrl is required")
	}

	s.logger.Info().
		Str("tournament_id", tournamentID).
		Str("team_id", teamID).
		Msg("registering team webhook")

	if s.validate {
		pingCtx, pingCancel := context.WithTimeout(ctx, constants.WebhookTimeout)
		defer pingCancel()

		ping := pingPayload{Type: "ping", Message: "Testing webhook connection"}
		if err := s.poster.PostWebhook(pingCtx, url, ping); err != nil {
			s.logger.Error().Err(err).Str("url", url).Msg("webhook validation failed")
			return nil, apperr.Wrap(err, apperr.Validation, "Failed to validate webhook url")
		}
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to register webhook")
	}

	webhook := domain.TeamWebhook{
		ID:           id,
		TournamentID: tournamentID,
		TeamID:       teamID,
		URL:          url,
		Status:       domain.WebhookActive,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.webhooks.Create(ctx, id, webhook)
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to register webhook")
	}

	s.cache.InvalidatePrefix(constants.CachePrefixWebhooks(tournamentID))

	s.logger.Info().Str("webhook_id", id).Str("team_id", teamID).Msg("webhook registered")
	return created, nil
}

func (s *WebhookService) GetTeamWebhooks(ctx context.Context, tournamentID, teamID string) ([]domain.TeamWebhook, error) {
	webhooks, err := s.webhooks.FindMany(ctx, store.Filter{
		"tournamentId": tournamentID,
		"teamId":       teamID,
	})
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to fetch team webhooks")
	}
	s.logger.Info().
		Str("tournament_id", tournamentID).
		Str("team_id", teamID).
		Int("count", len(webhooks)).
		Msg("team webhooks fetched")
	return webhooks, nil
}

// Delete removes a webhook after verifying it belongs to the given
// (tournament, team) pair. A mismatch is forbidden, not a miss.
func (s *WebhookService) Delete(ctx context.Context, tournamentID, teamID, webhookID string) error {
	webhook, err := s.webhooks.FindByID(ctx, webhookID)
	if err != nil {
		return apperr.Coerce(err, "Failed to delete webhook")
	}
	if webhook == nil {
		return apperr.New(apperr.NotFound, "Webhook not found")
	}
	if webhook.TournamentID != tournamentID || webhook.TeamID != teamID {
		return apperr.New(apperr.Forbidden, "Webhook does not belong to this team/tournament")
	}

	if _, err := s.webhooks.Delete(ctx, webhookID); err != nil {
		return apperr.Coerce(err, "Failed to delete webhook")
	}

	s.cache.InvalidatePrefix(constants.CachePrefixWebhooks(tournamentID))

	s.logger.Info().Str("webhook_id", webhookID).Msg("webhook deleted")
	return nil
}

// WebhooksForTeams resolves the active subscribers of all given teams in one
// combined query, for the code-creation fan-out.
func (s *WebhookService) WebhooksForTeams(ctx context.Context, tournamentID string, teams []string) ([]domain.TeamWebhook, error) {
	webhooks, err := s.webhooks.FindMany(ctx, store.Filter{
		"tournamentId": tournamentID,
		"teamId":       teams,
		"status":       domain.WebhookActive,
	})
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to resolve team webhooks")
	}
	return webhooks, nil
}

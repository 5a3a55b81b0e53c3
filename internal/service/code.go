package service

import (
	"context"
	"time"

	"tournament-gateway/internal/api"
	"tournament-gateway/internal/apperr"
	"tournament-gateway/internal/cache"
	"tournament-gateway/internal/constants"
	"tournament-gateway/internal/domain"
	"tournament-gateway/internal/notify"
	"tournament-gateway/internal/store"

	"github.com/rs/zerolog"
)

// CodeMinter mints a batch of lobby codes in the upstream system.
type CodeMinter interface {
	CreateCodes(ctx context.Context, tournamentID string, params api.CodeParameters, count int) ([]string, error)
}

type CodeService struct {
	codes      store.Store[domain.TournamentCode]
	webhookSvc *WebhookService
	notifier   *notify.Notifier
	riot       CodeMinter
	cache      *cache.Cache
	logger     zerolog.Logger
}

func NewCodeService(codes store.Store[domain.TournamentCode], webhookSvc *WebhookService, notifier *notify.Notifier, riot CodeMinter, c *cache.Cache, logger zerolog.Logger) *CodeService {
	return &CodeService{
		codes:      codes,
		webhookSvc: webhookSvc,
		notifier:   notifier,
		riot:       riot,
		cache:      c,
		logger:     logger,
	}
}

// CreateCodes mints count codes upstream, mirrors each as its own record and,
// when the request names exactly two teams, fans the batch out to the teams'
// webhook subscribers. Delivery failures are logged and never fail the
// creation or roll back stored codes.
func (s *CodeService) CreateCodes(ctx context.Context, tournamentID string, cfg domain.MatchConfig, teams []string, count int) ([]domain.TournamentCode, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if count < 1 || count > constants.MaxCodesPerRequest {
		return nil, apperr.Newf(apperr.Validation, "count must be between 1 and %d", constants.MaxCodesPerRequest)
	}
	if len(teams) != 0 && len(teams) != constants.TeamsPerMatch {
		return nil, apperr.Newf(apperr.Validation, "teams must name exactly %d teams", constants.TeamsPerMatch)
	}

	s.logger.Info().
		Str("tournament_id", tournamentID).
		Int("count", count).
		Strs("teams", teams).
		Msg("creating tournament codes")

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	params := api.CodeParameters{
		TeamSize:      cfg.TeamSize,
		MapType:       cfg.MapType,
		PickType:      cfg.PickType,
		SpectatorType: cfg.SpectatorType,
		Metadata:      cfg.Metadata,
	}

	minted, err := s.riot.CreateCodes(apiCtx, tournamentID, params, count)
	if err != nil {
		s.logger.Error().Err(err).Str("tournament_id", tournamentID).Msg("failed to mint codes upstream")
		return nil, apperr.Coerce(err, "Failed to create tournament codes")
	}

	s.logger.Info().Int("minted", len(minted)).Msg("codes minted upstream")

	now := time.Now().UTC()
	saved := make([]domain.TournamentCode, 0, len(minted))
	codeValues := make([]string, 0, len(minted))
	for _, code := range minted {
		record := domain.TournamentCode{
			Code:         code,
			TournamentID: tournamentID,
			Teams:        teams,
			Config:       cfg,
			Status:       domain.CodeActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		created, err := s.codes.Create(ctx, code, record)
		if err != nil {
			// already-persisted codes stay; the batch is not transactional
			s.logger.Error().Err(err).Str("code", code).Msg("failed to persist code")
			return nil, apperr.Coerce(err, "Failed to create tournament codes")
		}
		saved = append(saved, *created)
		codeValues = append(codeValues, code)
	}

	s.cache.InvalidatePrefix(constants.CachePrefixCodes(tournamentID))

	if len(teams) == constants.TeamsPerMatch {
		webhooks, err := s.webhookSvc.WebhooksForTeams(ctx, tournamentID, teams)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to resolve webhooks, skipping fan-out")
		} else {
			s.notifier.DeliverCodes(ctx, webhooks, teams, codeValues)
		}
	}

	s.logger.Info().Int("saved", len(saved)).Str("tournament_id", tournamentID).Msg("tournament codes created")
	return saved, nil
}

func (s *CodeService) GetCodes(ctx context.Context, tournamentID string, status domain.CodeStatus) ([]domain.TournamentCode, error) {
	filter := store.Filter{"tournamentId": tournamentID}
	if status != "" {
		switch status {
		case domain.CodeActive, domain.CodeUsed, domain.CodeInvalid:
			filter["status"] = string(status)
		default:
			return nil, apperr.Newf(apperr.Validation, "unknown code status: %s", status)
		}
	}

	codes, err := s.codes.FindMany(ctx, filter)
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to fetch tournament codes")
	}
	s.logger.Info().Str("tournament_id", tournamentID).Int("count", len(codes)).Msg("tournament codes fetched")
	return codes, nil
}

// GetCode returns a code after verifying it belongs to tournamentID. A code
// existing under another tournament is forbidden, not a miss.
func (s *CodeService) GetCode(ctx context.Context, tournamentID, code string) (*domain.TournamentCode, error) {
	record, err := s.codes.FindByID(ctx, code)
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to fetch tournament code")
	}
	if record == nil {
		return nil, apperr.New(apperr.NotFound, "Tournament code not found")
	}
	if record.TournamentID != tournamentID {
		return nil, apperr.New(apperr.Forbidden, "Tournament code does not belong to this tournament")
	}
	return record, nil
}

// InvalidateCode performs the one-way active -> invalid transition. Codes
// never leave used or invalid once there.
func (s *CodeService) InvalidateCode(ctx context.Context, tournamentID, code string) (*domain.TournamentCode, error) {
	record, err := s.GetCode(ctx, tournamentID, code)
	if err != nil {
		return nil, err
	}
	if record.Status != domain.CodeActive {
		return nil, apperr.Newf(apperr.Conflict, "Tournament code is %s and cannot be invalidated", record.Status)
	}

	record.Status = domain.CodeInvalid
	record.UpdatedAt = time.Now().UTC()

	updated, err := s.codes.Update(ctx, code, *record)
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to invalidate tournament code")
	}

	s.cache.InvalidatePrefix(constants.CachePrefixCodes(tournamentID))

	s.logger.Info().Str("code", code).Msg("tournament code invalidated")
	return updated, nil
}

// MarkUsed flips an active code to used when its match completes. Codes that
// are missing or already settled are left untouched.
func (s *CodeService) MarkUsed(ctx context.Context, code string) error {
	record, err := s.codes.FindByID(ctx, code)
	if err != nil {
		return apperr.Coerce(err, "Failed to mark code used")
	}
	if record == nil || record.Status != domain.CodeActive {
		return nil
	}

	record.Status = domain.CodeUsed
	record.UpdatedAt = time.Now().UTC()

	if _, err := s.codes.Update(ctx, code, *record); err != nil {
		return apperr.Coerce(err, "Failed to mark code used")
	}

	s.cache.InvalidatePrefix(constants.CachePrefixCodes(record.TournamentID))

	s.logger.Info().Str("code", code).Msg("tournament code marked used")
	return nil
}

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

// ProviderCreator mints a provider id in the upstream system.
type ProviderCreator interface {
	CreateProvider(ctx context.Context, region, url string) (string, error)
}

type ProviderService struct {
	providers store.Store[domain.Provider]
	riot      ProviderCreator
	cache     *cache.Cache
	logger    zerolog.Logger
}

func NewProviderService(providers store.Store[domain.Provider], riot ProviderCreator, c *cache.Cache, logger zerolog.Logger) *ProviderService {
	return &ProviderService{providers: providers, riot: riot, cache: c, logger: logger}
}

// Register creates the provider upstream and mirrors it locally, using the
// upstream-assigned id as the primary key. A provider already registered for
// the same (region, url) pair is a conflict.
func (s *ProviderService) Register(ctx context.Context, region domain.Region, url string) (*domain.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if !region.Valid() {
		return nil, apperr.Newf(apperr.Validation, "unsupported region: %s", region)
	}
	if url == "" {
		return nil, apperr.New(apperr.Validation, "callback url is required")
	}

	s.logger.Info().Str("region", string(region)).Str("url", url).Msg("registering tournament provider")

	existing, err := s.providers.FindOne(ctx, store.Filter{"region": string(region), "url": url})
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to register provider")
	}
	if existing != nil {
		s.logger.Info().Str("provider_id", existing.ID).Msg("provider already registered")
		return nil, apperr.New(apperr.Conflict, "Provider already registered for this region and url")
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	id, err := s.riot.CreateProvider(apiCtx, string(region), url)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create provider upstream")
		return nil, apperr.Coerce(err, "Failed to register provider")
	}

	provider := domain.Provider{
		ID:        id,
		Region:    region,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.providers.Create(ctx, id, provider)
	if err != nil {
		// upstream registration is not rolled back; the orphan is accepted
		s.logger.Error().Err(err).Str("provider_id", id).Msg("failed to persist provider")
		return nil, apperr.Coerce(err, "Failed to register provider")
	}

	s.cache.InvalidatePrefix(constants.CachePrefixProviders)

	s.logger.Info().Str("provider_id", id).Msg("provider registered")
	return created, nil
}

func (s *ProviderService) Get(ctx context.Context, id string) (*domain.Provider, error) {
	provider, err := s.providers.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to fetch provider")
	}
	if provider == nil {
		return nil, apperr.New(apperr.NotFound, "Provider not found")
	}
	return provider, nil
}

func (s *ProviderService) List(ctx context.Context) ([]domain.Provider, error) {
	providers, err := s.providers.FindMany(ctx, store.Filter{})
	if err != nil {
		return nil, apperr.Coerce(err, "Failed to list providers")
	}
	s.logger.Info().Int("count", len(providers)).Msg("providers listed")
	return providers, nil
}

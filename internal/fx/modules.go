package fx

import (
	"database/sql"

	"tournament-gateway/internal/api"
	"tournament-gateway/internal/cache"
	"tournament-gateway/internal/config"
	"tournament-gateway/internal/domain"
	"tournament-gateway/internal/logger"
	"tournament-gateway/internal/middleware"
	"tournament-gateway/internal/notify"
	"tournament-gateway/internal/server"
	"tournament-gateway/internal/service"
	"tournament-gateway/internal/store"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideCache(cfg *config.Config, log zerolog.Logger) *cache.Cache {
	return cache.New(cfg.CacheTTL, log)
}

func ProvideRateLimiter(cfg *config.Config, log zerolog.Logger) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg.RateLimitPerMinute, log)
}

func ProvideNotifier(client *api.RiotClient, log zerolog.Logger) *notify.Notifier {
	return notify.NewNotifier(client, log)
}

func ProvideProviderService(db *sql.DB, client *api.RiotClient, c *cache.Cache, log zerolog.Logger) *service.ProviderService {
	providers := store.NewCollection[domain.Provider](db, store.CollectionProviders, log)
	return service.NewProviderService(providers, client, c, log)
}

func ProvideTournamentService(db *sql.DB, client *api.RiotClient, c *cache.Cache, log zerolog.Logger) *service.TournamentService {
	tournaments := store.NewCollection[domain.Tournament](db, store.CollectionTournaments, log)
	return service.NewTournamentService(tournaments, client, c, log)
}

func ProvideWebhookService(db *sql.DB, client *api.RiotClient, c *cache.Cache, cfg *config.Config, log zerolog.Logger) *service.WebhookService {
	webhooks := store.NewCollection[domain.TeamWebhook](db, store.CollectionWebhooks, log)
	return service.NewWebhookService(webhooks, client, c, cfg, log)
}

func ProvideCodeService(db *sql.DB, webhookSvc *service.WebhookService, notifier *notify.Notifier, client *api.RiotClient, c *cache.Cache, log zerolog.Logger) *service.CodeService {
	codes := store.NewCollection[domain.TournamentCode](db, store.CollectionCodes, log)
	return service.NewCodeService(codes, webhookSvc, notifier, client, c, log)
}

func ProvideCallbackService(db *sql.DB, codeSvc *service.CodeService, client *api.RiotClient, c *cache.Cache, log zerolog.Logger) *service.CallbackService {
	callbacks := store.NewCollection[domain.GameCallback](db, store.CollectionCallbacks, log)
	results := store.NewCollection[domain.GameResult](db, store.CollectionResults, log)
	return service.NewCallbackService(callbacks, results, codeSvc, client, c, log)
}

func ProvideHealthService(db *sql.DB, c *cache.Cache, log zerolog.Logger) *service.HealthService {
	return service.NewHealthService(db, c, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(store.Open),
	fx.Provide(ProvideCache),
	fx.Provide(ProvideRateLimiter),
	// api client
	fx.Provide(api.NewRiotClient),
	fx.Provide(ProvideNotifier),
	// svc
	fx.Provide(ProvideProviderService),
	fx.Provide(ProvideTournamentService),
	fx.Provide(ProvideWebhookService),
	fx.Provide(ProvideCodeService),
	fx.Provide(ProvideCallbackService),
	fx.Provide(ProvideHealthService),
	// server
	fx.Provide(server.NewServer),
)

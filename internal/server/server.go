package server

import (
	"net/http"

	"tournament-gateway/internal/cache"
	"tournament-gateway/internal/constants"
	"tournament-gateway/internal/middleware"
	"tournament-gateway/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Server struct {
	providerSvc   *service.ProviderService
	tournamentSvc *service.TournamentService
	codeSvc       *service.CodeService
	callbackSvc   *service.CallbackService
	webhookSvc    *service.WebhookService
	healthSvc     *service.HealthService
	cache         *cache.Cache
	logger        zerolog.Logger
}

func NewServer(
	providerSvc *service.ProviderService,
	tournamentSvc *service.TournamentService,
	codeSvc *service.CodeService,
	callbackSvc *service.CallbackService,
	webhookSvc *service.WebhookService,
	healthSvc *service.HealthService,
	c *cache.Cache,
	logger zerolog.Logger,
) *Server {
	return &Server{
		providerSvc:   providerSvc,
		tournamentSvc: tournamentSvc,
		codeSvc:       codeSvc,
		callbackSvc:   callbackSvc,
		webhookSvc:    webhookSvc,
		healthSvc:     healthSvc,
		cache:         c,
		logger:        logger,
	}
}

func staticPrefix(prefix string) keyFunc {
	return func(*http.Request) string { return prefix }
}

func codesPrefix(r *http.Request) string {
	return constants.CachePrefixCodes(chi.URLParam(r, "tournamentID"))
}

func webhooksPrefix(r *http.Request) string {
	return constants.CachePrefixWebhooks(chi.URLParam(r, "tournamentID"))
}

func gamesPrefix(r *http.Request) string {
	return constants.CachePrefixGames(chi.URLParam(r, "tournamentID"))
}

// Router assembles the REST surface behind correlation-id tagging and per-IP
// rate limiting.
func (s *Server) Router(limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.CorrelationID(s.logger))
	r.Use(limiter.Handler)

	r.Get("/health", s.handleHealth)
	r.Get("/health/detailed", s.handleHealthDetailed)

	r.Route("/tournament-providers", func(r chi.Router) {
		r.Post("/", s.handleCreateProvider)
		r.Get("/", s.cached(staticPrefix(constants.CachePrefixProviders), s.handleListProviders))
		r.Get("/{providerID}", s.cached(staticPrefix(constants.CachePrefixProviders), s.handleGetProvider))
	})

	r.Route("/tournaments", func(r chi.Router) {
		r.Post("/", s.handleCreateTournament)
		r.Get("/", s.cached(staticPrefix(constants.CachePrefixTournaments), s.handleListTournaments))
		r.Get("/{tournamentID}", s.cached(staticPrefix(constants.CachePrefixTournaments), s.handleGetTournament))

		r.Route("/{tournamentID}/codes", func(r chi.Router) {
			r.Post("/", s.handleCreateCodes)
			r.Get("/", s.cached(codesPrefix, s.handleGetCodes))
			r.Get("/{code}", s.cached(codesPrefix, s.handleGetCode))
			r.Post("/{code}/invalidate", s.handleInvalidateCode)
		})

		r.Route("/{tournamentID}/callbacks", func(r chi.Router) {
			r.Get("/", s.cached(gamesPrefix, s.handleGetCallbacks))
			r.Get("/{callbackID}", s.cached(gamesPrefix, s.handleGetCallback))
		})

		r.Route("/{tournamentID}/teams/{teamID}/webhooks", func(r chi.Router) {
			r.Post("/", s.handleRegisterWebhook)
			r.Get("/", s.cached(webhooksPrefix, s.handleGetTeamWebhooks))
			r.Delete("/{webhookID}", s.handleDeleteWebhook)
		})
	})

	r.Post("/game-callbacks", s.handleGameCallback)
	r.Get("/game-results/{gameID}", s.handleGetGameResult)

	return r
}

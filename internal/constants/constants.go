package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	WebhookTimeout     = 5 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	MaxCodesPerRequest = 1000
	TeamsPerMatch      = 2
)

// Cache key prefixes. Write paths invalidate by prefix.
const (
	CachePrefixProviders   = "providers"
	CachePrefixTournaments = "tournaments"
)

func CachePrefixCodes(tournamentID string) string {
	return "tournament:" + tournamentID + ":codes"
}

func CachePrefixWebhooks(tournamentID string) string {
	return "tournament:" + tournamentID + ":webhooks"
}

func CachePrefixGames(tournamentID string) string {
	return "tournament:" + tournamentID + ":games"
}

package store

// Logical collection names. One collection per entity type.
const (
	CollectionProviders   = "tournamentProviders"
	CollectionTournaments = "tournaments"
	CollectionCodes       = "tournamentCodes"
	CollectionCallbacks   = "gameCallbacks"
	CollectionResults     = "gameResults"
	CollectionWebhooks    = "teamWebhooks"
)

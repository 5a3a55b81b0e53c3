package domain

import (
	"time"
)

// Region values accepted by the upstream tournament API.
type Region string

const (
	RegionBR   Region = "BR"
	RegionEUNE Region = "EUNE"
	RegionEUW  Region = "EUW"
	RegionJP   Region = "JP"
	RegionKR   Region = "KR"
	RegionLAN  Region = "LAN"
	RegionLAS  Region = "LAS"
	RegionNA   Region = "NA"
	RegionOCE  Region = "OCE"
	RegionPBE  Region = "PBE"
	RegionRU   Region = "RU"
	RegionTR   Region = "TR"
)

var validRegions = map[Region]bool{
	RegionBR: true, RegionEUNE: true, RegionEUW: true, RegionJP: true,
	RegionKR: true, RegionLAN: true, RegionLAS: true, RegionNA: true,
	RegionOCE: true, RegionPBE: true, RegionRU: true, RegionTR: true,
}

func (r Region) Valid() bool {
	return validRegions[r]
}

type CodeStatus string

const (
	CodeActive  CodeStatus = "active"
	CodeUsed    CodeStatus = "used"
	CodeInvalid CodeStatus = "invalid"
)

type CallbackStatus string

const (
	CallbackReceived  CallbackStatus = "received"
	CallbackProcessed CallbackStatus = "processed"
)

const WebhookActive = "active"

// Provider is a third party registered with the upstream system. The id is
// assigned upstream and used as the local primary key.
type Provider struct {
	ID        string    `json:"id"`
	Region    Region    `json:"region"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

type Tournament struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"providerId"`
	Name       string    `json:"name,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MatchConfig is the lobby configuration shared by every code minted in one
// batch.
type MatchConfig struct {
	TeamSize      int    `json:"teamSize"`
	MapType       string `json:"mapType"`
	PickType      string `json:"pickType"`
	SpectatorType string `json:"spectatorType"`
	Metadata      string `json:"metadata,omitempty"`
}

// TournamentCode is a single-use lobby token. The code string itself is the
// record id.
type TournamentCode struct {
	Code         string      `json:"code"`
	TournamentID string      `json:"tournamentId"`
	Teams        []string    `json:"teams,omitempty"`
	Config       MatchConfig `json:"config"`
	Status       CodeStatus  `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type GameCallback struct {
	ID           string         `json:"id"`
	GameID       string         `json:"gameId"`
	TournamentID string         `json:"tournamentId"`
	ShortCode    string         `json:"shortCode"`
	StartTime    int64          `json:"startTime,omitempty"`
	GameName     string         `json:"gameName,omitempty"`
	GameType     string         `json:"gameType,omitempty"`
	GameMap      string         `json:"gameMap,omitempty"`
	GameMode     string         `json:"gameMode,omitempty"`
	Region       string         `json:"region,omitempty"`
	MetaData     string         `json:"metaData,omitempty"`
	Status       CallbackStatus `json:"status"`
	ReceivedAt   time.Time      `json:"receivedAt"`
	ProcessedAt  *time.Time     `json:"processedAt,omitempty"`
}

// GameResult mirrors the raw match payload fetched upstream. Immutable once
// stored; id is the gameId.
type GameResult struct {
	ID       string         `json:"id"`
	Payload  map[string]any `json:"payload"`
	StoredAt time.Time      `json:"storedAt"`
}

type TeamWebhook struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournamentId"`
	TeamID       string    `json:"teamId"`
	URL          string    `json:"url"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

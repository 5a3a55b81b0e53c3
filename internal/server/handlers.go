package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tournament-gateway/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

var (
	validMapTypes = map[string]bool{
		"SUMMONERS_RIFT": true, "HOWLING_ABYSS": true,
	}
	validPickTypes = map[string]bool{
		"BLIND_PICK": true, "DRAFT_MODE": true, "ALL_RANDOM": true, "TOURNAMENT_DRAFT": true,
	}
	validSpectatorTypes = map[string]bool{
		"ALL": true, "NONE": true, "LOBBYONLY": true,
	}
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, s.healthSvc.Basic(), "Service is healthy")
}

func (s *Server) handleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	status := s.healthSvc.Detailed(r.Context())
	if s.healthSvc.Degraded(status) {
		writeJSON(w, http.StatusServiceUnavailable, Envelope{
			Success: false,
			Message: "Service partially degraded",
			Errors:  status,
		})
		return
	}
	respondOK(w, status, "All systems operational")
}

type createProviderRequest struct {
	Region string `json:"region"`
	URL    string `json:"url"`
}

func (s *Server) handleCreateProvider(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req createProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, []string{"invalid JSON body"})
		return
	}

	var errs []string
	if req.Region == "" {
		errs = append(errs, "region is required")
	}
	if req.URL == "" {
		errs = append(errs, "url is required")
	}
	if len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	provider, err := s.providerSvc.Register(r.Context(), domain.Region(req.Region), req.URL)
	if err != nil {
		respondError(w, *logger, err)
		return
	}

	respondCreated(w, map[string]any{"provider": provider}, "Provider registered successfully")
}

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	providers, err := s.providerSvc.List(r.Context())
	if err != nil {
		respondError(w, *logger, err)
		return
	}
	respondOK(w, map[string]any{"providers": providers}, "Success")
}

func (s *Server) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	provider, err := s.providerSvc.Get(r.Context(), chi.URLParam(r, "providerID"))
	if err != nil {
		respondError(w, *logger, err)
		return
	}
	respondOK(w, map[string]any{"provider": provider}, "Success")
}

type createTournamentRequest struct {
	ProviderID json.Number `json:"providerId"`
	Name       string      `json:"name"`
}

func (s *Server) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req createTournamentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, []string{"invalid JSON body"})
		return
	}
	if req.ProviderID.String() == "" {
		respondValidation(w, []string{"providerId is required"})
		return
	}

	tournament, err := s.tournamentSvc.Create(r.Context(), req.ProviderID.String(), req.Name)
	if err != nil {
		respondError(w, *logger, err)
		return
	}

	respondCreated(w, map[string]any{"tournament": tournament}, "Tournament created successfully")
}

func (s *Server) handleListTournaments(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	tournaments, err := s.tournamentSvc.List(r.Context())
	if err != nil {
		respondError(w, *logger, err)
		return
	}
	respondOK(w, map[string]any{"tournaments": tournaments}, "Success")
}

func (s *Server) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	tournament, err := s.tournamentSvc.Get(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		respondError(w, *logger, err)
		return
	}
	respondOK(w, map[string]any{"tournament": tournament}, "Success")
}

type createCodesRequest struct {
	TeamSize      int             `json:"teamSize"`
	MapType       string          `json:"mapType"`
	PickType      string          `json:"pickType"`
	SpectatorType string          `json:"spectatorType"`
	Metadata      json.RawMessage `json:"metadata"`
	Teams         []string        `json:"teams"`
}

// metadataString flattens the metadata field: a JSON string is used as-is,
// any other JSON value is kept in its encoded form.
func metadataString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (s *Server) handleCreateCodes(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	tournamentID := chi.URLParam(r, "tournamentID")

	count := 1
	if q := r.URL.Query().Get("count"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			respondValidation(w, []string{"count must be an integer"})
			return
		}
		count = n
	}

	var req createCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, []string{"invalid JSON body"})
		return
	}

	if req.TeamSize == 0 {
		req.TeamSize = 5
	}
	if req.MapType == "" {
		req.MapType = "SUMMONERS_RIFT"
	}
	if req.PickType == "" {
		req.PickType = "TOURNAMENT_DRAFT"
	}
	if req.SpectatorType == "" {
		req.SpectatorType = "ALL"
	}

	var errs []string
	if req.TeamSize < 1 || req.TeamSize > 5 {
		errs = append(errs, "teamSize must be between 1 and 5")
	}
	if !validMapTypes[req.MapType] {
		errs = append(errs, "mapType must be one of SUMMONERS_RIFT, HOWLING_ABYSS")
	}
	if !validPickTypes[req.PickType] {
		errs = append(errs, "pickType must be one of BLIND_PICK, DRAFT_MODE, ALL_RANDOM, TOURNAMENT_DRAFT")
	}
	if !validSpectatorTypes[req.SpectatorType] {
		errs = append(errs, "spectatorType must be one of ALL, NONE, LOBBYONLY")
	}
	if len(req.Teams) != 0 && len(req.Teams) != 2 {
		errs = append(errs, "teams must name exactly 2 teams")
	}
	if len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	cfg := domain.MatchConfig{
		TeamSize:      req.TeamSize,
		MapType:       req.MapType,
		PickType:      req.PickType,
		SpectatorType: req.SpectatorType,
		Metadata:      metadataString(req.Metadata),
	}

	codes, err := s.codeSvc.CreateCodes(r.Context(), tournamentID, cfg, req.Teams, count)
	if err != nil {
		respondError(w, *logger, err)
		return
	}

	respondCreated(w, map[string]any{"codes": codes}, "Tournament codes created successfully")
}

func (s *Server) handleGetCodes(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	tournamentID := chi.URLParam(r, "tournamentID")
	status := domain.CodeStatus(r.URL.Query().Get("status"))

	codes, err := s.codeSvc.GetCodes(r.Context(), tournamentID, status)
	if err != nil {
		respondError(w, *logger, err)
		return
	}
	respondOK(w, map[string]any{"codes": codes}, "Success")
}

func (s *Server) handleGetCode(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	code, err := s.codeSvc.GetCode(r.Context(), chi.URLParam(r, "tournamentID"), chi.URLParam(r, "code"))
	if err != nil {
		respondError(w, *logger, err)
		return
	}
	respondOK(w, map[string]any{"code": code}, "Success")
}

func (s *Server) handleInvalidateCode(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	code, err := s.codeSvc.InvalidateCode(r.Context(), chi.URLParam(r, "tournamentID"), chi.URLParam(r, "code"))
	if err != nil {
		respondError(w, *logger, err)
		return
	}
	respondOK(w, map[string]any{"code": code}, "Tournament code invalidated successfully")
}

type registerWebhookRequest struct {
	WebhookURL string `json:"webhookUrl"`
}

func (s *Server) handleRegisterWebhook(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	tournamentID := chi.URLParam(r, "tournamentID")
	teamID := chi.URLParam(r, "teamID")

	var req registerWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, []string{"invalid JSON body"})
		return
	}
	if req.WebhookURL == "" {
		respondValidation(w, []string{"webhookUrl is required"})
		return
	}

	webhook, err := s.webhookSvc.Register(r.Context(), tournamentID, teamID, req.WebhookURL)
	if err != nil {
		respondError(w, *logger, err)
		return
	}

	respondCreated(w, map[string]any{"webhook": webhook}, "Webhook registered successfully")
}

func (s *Server) handleGetTeamWebhooks(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	webhooks, err := s.webhookSvc.GetTeamWebhooks(r.Context(), chi.URLParam(r, "tournamentID"), chi.URLParam(r, "teamID"))
	if err != nil {
		respondError(w, *logger, err)
		return
	}
	respondOK(w, map[string]any{"webhooks": webhooks}, "Success")
}

func (s *Server) handleDeleteWebhook(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	err := s.webhookSvc.Delete(r.Context(),
		chi.URLParam(r, "tournamentID"),
		chi.URLParam(r, "teamID"),
		chi.URLParam(r, "webhookID"))
	if err != nil {
		respondError(w, *logger, err)
		return
	}
	respondOK(w, nil, "Webhook deleted successfully")
}

type gameCallbackRequest struct {
	StartTime    int64       `json:"startTime"`
	ShortCode    string      `json:"shortCode"`
	MetaData     string      `json:"metaData"`
	GameID       json.Number `json:"gameId"`
	GameName     string      `json:"gameName"`
	GameType     string      `json:"gameType"`
	GameMap      string      `json:"gameMap"`
	GameMode     string      `json:"gameMode"`
	Region       string      `json:"region"`
	TournamentID json.Number `json:"tournamentId"`
}

func (s *Server) handleGameCallback(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req gameCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, []string{"invalid JSON body"})
		return
	}

	var errs []string
	if req.StartTime == 0 {
		errs = append(errs, "startTime is required")
	}
	if req.ShortCode == "" {
		errs = append(errs, "shortCode is required")
	}
	if req.MetaData == "" {
		errs = append(errs, "metaData is required")
	}
	if req.GameID.String() == "" {
		errs = append(errs, "gameId is required")
	}
	if req.GameName == "" {
		errs = append(errs, "gameName is required")
	}
	if req.GameType == "" {
		errs = append(errs, "gameType is required")
	}
	if req.GameMap == "" {
		errs = append(errs, "gameMap is required")
	}
	if req.GameMode == "" {
		errs = append(errs, "gameMode is required")
	}
	if req.Region == "" {
		errs = append(errs, "region is required")
	}
	if len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	callback := domain.GameCallback{
		GameID:       req.GameID.String(),
		TournamentID: req.TournamentID.String(),
		ShortCode:    req.ShortCode,
		StartTime:    req.StartTime,
		GameName:     req.GameName,
		GameType:     req.GameType,
		GameMap:      req.GameMap,
		GameMode:     req.GameMode,
		Region:       req.Region,
		MetaData:     req.MetaData,
	}

	processed, err := s.callbackSvc.Process(r.Context(), callback)
	if err != nil {
		respondError(w, *logger, err)
		return
	}

	respondOK(w, map[string]any{"gameCallback": processed}, "Game callback processed successfully")
}

func (s *Server) handleGetCallbacks(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	callbacks, err := s.callbackSvc.GetCallbacks(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		respondError(w, *logger, err)
		return
	}
	respondOK(w, map[string]any{"gameCallbacks": callbacks}, "Success")
}

func (s *Server) handleGetCallback(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	callback, err := s.callbackSvc.GetCallback(r.Context(), chi.URLParam(r, "tournamentID"), chi.URLParam(r, "callbackID"))
	if err != nil {
		respondError(w, *logger, err)
		return
	}
	respondOK(w, map[string]any{"gameCallback": callback}, "Success")
}

func (s *Server) handleGetGameResult(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	result, err := s.callbackSvc.GetResult(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		respondError(w, *logger, err)
		return
	}
	respondOK(w, map[string]any{"result": result}, "Success")
}

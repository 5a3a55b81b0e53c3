package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tournament-gateway/internal/apperr"
	"tournament-gateway/internal/config"

	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *RiotClient {
	return NewRiotClient(&config.Config{
		RiotAPIKey:     "test-key",
		RiotAPIBaseURL: baseURL,
	})
}

func TestCreateProvider(t *testing.T) {
	var gotPath, gotToken string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Riot-Token")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(`4001`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	id, err := client.CreateProvider(context.Background(), "NA", "https://example.com/cb")
	require.NoError(t, err)
	require.Equal(t, "4001", id)
	require.Equal(t, "/lol/tournament/v5/providers", gotPath)
	require.Equal(t, "test-key", gotToken)
	require.Equal(t, map[string]any{"region": "NA", "url": "https://example.com/cb"}, gotBody)
}

func TestCreateTournamentNonNumericProvider(t *testing.T) {
	client := newTestClient("http://unused.example")

	_, err := client.CreateTournament(context.Background(), "abc", "scrim cup")
	require.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestCreateCodes(t *testing.T) {
	var gotQuery string
	var gotParams CodeParameters

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotParams)
		_, _ = w.Write([]byte(`["NA1-AAA","NA1-BBB"]`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	params := CodeParameters{TeamSize: 5, MapType: "SUMMONERS_RIFT", PickType: "TOURNAMENT_DRAFT", SpectatorType: "ALL"}
	codes, err := client.CreateCodes(context.Background(), "2001", params, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"NA1-AAA", "NA1-BBB"}, codes)
	require.Equal(t, "tournamentId=2001&count=2", gotQuery)
	require.Equal(t, params, gotParams)
}

func TestUpstreamErrorParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"status":{"message":"Forbidden","status_code":403}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.CreateProvider(context.Background(), "NA", "https://example.com/cb")
	require.Error(t, err)
	require.Equal(t, apperr.Upstream, apperr.KindOf(err))
	require.Equal(t, http.StatusForbidden, apperr.HTTPStatus(err))
	require.Equal(t, "Riot API Error: Forbidden", apperr.Message(err))
}

func TestUpstreamErrorUnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.FetchMatchResult(context.Background(), "5201234")
	require.Error(t, err)
	require.Equal(t, apperr.Upstream, apperr.KindOf(err))
	require.Equal(t, "Riot API Error: Unknown error", apperr.Message(err))
}

func TestFetchMatchResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/lol/match/v5/matches/5201234", r.URL.Path)
		_, _ = w.Write([]byte(`{"gameDuration":1800,"winner":"blue"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	payload, err := client.FetchMatchResult(context.Background(), "5201234")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"gameDuration": float64(1800), "winner": "blue"}, payload)
}

func TestRateLimitHeadersTracked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-App-Rate-Limit", "100:120")
		w.Header().Set("X-App-Rate-Limit-Count", "7:120")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.FetchMatchResult(context.Background(), "5201234")
	require.NoError(t, err)

	info := client.GetRateLimitInfo()
	require.Equal(t, "100:120", info.AppLimit)
	require.Equal(t, "7:120", info.AppCount)
	require.False(t, info.UpdatedAt.IsZero())
}

func TestPostWebhook(t *testing.T) {
	var gotContentType string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	err := client.PostWebhook(context.Background(), srv.URL+"/hook", map[string]any{"content": "hello"})
	require.NoError(t, err)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, map[string]any{"content": "hello"}, gotBody)
}

func TestPostWebhookNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	err := client.PostWebhook(context.Background(), srv.URL+"/hook", map[string]any{"content": "hello"})
	require.Error(t, err)
	require.Equal(t, apperr.Upstream, apperr.KindOf(err))
}

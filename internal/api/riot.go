package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"tournament-gateway/internal/apperr"
	"tournament-gateway/internal/config"
	"tournament-gateway/internal/constants"

	"github.com/valyala/fasthttp"
)

// RiotClient issues authenticated calls to the upstream tournament API and
// bare JSON POSTs to subscriber webhook URLs. It performs no retries; retry
// policy, if any, belongs to the caller.
type RiotClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client

	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	AppLimit  string    `json:"app_limit"`
	AppCount  string    `json:"app_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CodeParameters is the lobby configuration sent upstream when minting codes.
type CodeParameters struct {
	TeamSize      int    `json:"teamSize"`
	MapType       string `json:"mapType"`
	PickType      string `json:"pickType"`
	SpectatorType string `json:"spectatorType"`
	Metadata      string `json:"metadata,omitempty"`
}

type upstreamError struct {
	Status struct {
		Message    string `json:"message"`
		StatusCode int    `json:"status_code"`
	} `json:"status"`
}

func NewRiotClient(cfg *config.Config) *RiotClient {
	return &RiotClient{
		apiKey:  cfg.RiotAPIKey,
		baseURL: cfg.RiotAPIBaseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *RiotClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *RiotClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-App-Rate-Limit")); limit != "" {
		c.rateLimit.AppLimit = limit
	}
	if count := string(resp.Header.Peek("X-App-Rate-Limit-Count")); count != "" {
		c.rateLimit.AppCount = count
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// CreateProvider registers a callback provider upstream and returns the id
// the upstream system assigned.
func (c *RiotClient) CreateProvider(ctx context.Context, region, url string) (string, error) {
	reqURL := c.baseURL + "/lol/tournament/v5/providers"
	body := map[string]any{"region": region, "url": url}

	id, err := do[int](ctx, c, fasthttp.MethodPost, reqURL, body)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(id), nil
}

func (c *RiotClient) CreateTournament(ctx context.Context, providerID, name string) (string, error) {
	pid, err := strconv.Atoi(providerID)
	if err != nil {
		return "", apperr.Newf(apperr.Validation, "providerId must be numeric: %s", providerID)
	}

	reqURL := c.baseURL + "/lol/tournament/v5/tournaments"
	body := map[string]any{"providerId": pid, "name": name}

	id, err := do[int](ctx, c, fasthttp.MethodPost, reqURL, body)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(id), nil
}

func (c *RiotClient) CreateCodes(ctx context.Context, tournamentID string, params CodeParameters, count int) ([]string, error) {
	tid, err := strconv.Atoi(tournamentID)
	if err != nil {
		return nil, apperr.Newf(apperr.Validation, "tournamentId must be numeric: %s", tournamentID)
	}

	reqURL := fmt.Sprintf("%s/lol/tournament/v5/codes?tournamentId=%d&count=%d", c.baseURL, tid, count)
	return do[[]string](ctx, c, fasthttp.MethodPost, reqURL, params)
}

func (c *RiotClient) FetchMatchResult(ctx context.Context, gameID string) (map[string]any, error) {
	reqURL := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.baseURL, gameID)
	return do[map[string]any](ctx, c, fasthttp.MethodGet, reqURL, nil)
}

// PostWebhook delivers a JSON payload to an arbitrary webhook URL with a
// fixed 5 second budget and no auth header.
func (c *RiotClient) PostWebhook(ctx context.Context, url string, payload any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline := time.Now().Add(constants.WebhookTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return apperr.FromUpstream(status, fmt.Sprintf("webhook responded with status %d", status))
	}
	return nil
}

func do[T any](ctx context.Context, client *RiotClient, method, url string, body any) (T, error) {
	var zero T

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.Set("X-Riot-Token", client.apiKey)
	if body != nil {
		req.Header.SetContentType("application/json")
		encoded, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.SetBody(encoded)
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return zero, fmt.Errorf("upstream request failed: %w", err)
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return zero, fmt.Errorf("upstream request failed: %w", err)
		}
	}

	client.updateRateLimit(resp)

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		message := "Unknown error"
		var parsed upstreamError
		if err := json.Unmarshal(resp.Body(), &parsed); err == nil && parsed.Status.Message != "" {
			message = parsed.Status.Message
		}
		return zero, apperr.FromUpstream(status, fmt.Sprintf("Riot API Error: %s", message))
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return zero, fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return result, nil
}

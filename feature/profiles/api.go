package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// ErrRateLimited is returned by an API that asks the caller to back off.
var ErrRateLimited = errors.New("profile api rate limited")

// Profile is one user as returned by the profile API.
type Profile struct {
	ID           string `json:"steamid"`
	Name         string `json:"personaname"`
	ProfileURL   string `json:"profileurl"`
	Avatar       string `json:"avatar"`
	AvatarMedium string `json:"avatarmedium"`
	AvatarFull   string `json:"avatarfull"`
}

// API fetches profiles in batches. Ids may be silently missing from the result.
type API interface {
	Summaries(ctx context.Context, ids []string) ([]Profile, error)
}

// HTTPClient calls a player-summaries style endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

// NewHTTPClient creates an API client from cfg.
func NewHTTPClient(cfg Config) *HTTPClient {
	return &HTTPClient{baseURL: cfg.BaseURL, apiKey: cfg.APIKey, timeout: cfg.Timeout}
}

type summariesResponse struct {
	Response struct {
		Players []Profile `json:"players"`
	} `json:"response"`
}

// Summaries implements API.
func (c *HTTPClient) Summaries(ctx context.Context, ids []string) ([]Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("steamids", strings.Join(ids, ","))

	agent := fiber.Get(c.baseURL + "?" + q.Encode())
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}
	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("failed to prepare request: %w", err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		err := errors.Join(errs...)
		// Report the client-side timeout as a deadline so callers retry it like one.
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		return nil, err
	}

	switch {
	case code == fiber.StatusTooManyRequests:
		return nil, ErrRateLimited
	case code != fiber.StatusOK:
		return nil, fmt.Errorf("profile api returned status %d", code)
	}

	var resp summariesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	return resp.Response.Players, nil
}

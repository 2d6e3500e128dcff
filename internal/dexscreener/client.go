// Package dexscreener is a minimal client for the DEX Screener public API.
package dexscreener

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dgnsrekt/chartbot/internal/apperr"
)

const DefaultBaseURL = "https://api.dexscreener.com"

// Client queries token pairs.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// TokenPairs fetches all pairs that trade the given token. A nil response with
// a nil error means the API answered with an empty or null body.
func (c *Client) TokenPairs(ctx context.Context, address string) (*TokensResponse, error) {
	endpoint := c.baseURL + "/latest/dex/tokens/" + url.PathEscape(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.New(apperr.CodeUpstream, "build dexscreener request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.CodeUpstream, "dexscreener request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.New(apperr.CodeUpstream, "read dexscreener response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.New(apperr.CodeUpstream, fmt.Sprintf("dexscreener returned status %d", resp.StatusCode), nil)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		slog.Debug("dexscreener empty body", "address", address)
		return nil, nil
	}

	var out TokensResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, apperr.New(apperr.CodeDecode, "decode dexscreener response", err)
	}
	slog.Debug("dexscreener token pairs", "address", address, "pairs", len(out.Pairs))
	return &out, nil
}

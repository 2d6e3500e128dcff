// Package alchemy wraps the two Alchemy NFT v3 endpoints the bot answers from.
package alchemy

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

const (
	DefaultBaseURL = "https://eth-mainnet.g.alchemy.com"
	DefaultAPIKey  = "docs-demo"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a Client. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if apiKey == "" {
		apiKey = DefaultAPIKey
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: httpClient}
}

// ComputeRarity returns the raw rarity document for one token. An empty or
// null body yields (nil, nil).
func (c *Client) ComputeRarity(ctx context.Context, contract, tokenID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("contractAddress", contract)
	q.Set("tokenId", tokenID)

	body, err := c.get(ctx, "computeRarity", q)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, apperr.New(apperr.CodeDecode, "alchemy computeRarity returned invalid JSON", nil)
	}
	return json.RawMessage(body), nil
}

// GetFloorPrice returns marketplace floor prices for a collection.
func (c *Client) GetFloorPrice(ctx context.Context, contract string) (*FloorPriceResponse, error) {
	q := url.Values{}
	q.Set("contractAddress", contract)

	body, err := c.get(ctx, "getFloorPrice", q)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var out FloorPriceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, apperr.New(apperr.CodeDecode, "decode alchemy getFloorPrice response", err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, method string, q url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/nft/v3/%s/%s?%s", c.baseURL, url.PathEscape(c.apiKey), method, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.New(apperr.CodeUpstream, "build alchemy "+method+" request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.CodeUpstream, "alchemy "+method+" request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.New(apperr.CodeUpstream, "read alchemy "+method+" response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.New(apperr.CodeUpstream, fmt.Sprintf("alchemy %s returned status %d", method, resp.StatusCode), nil)
	}

	body = bytes.TrimSpace(body)
	slog.Debug("alchemy response", "method", method, "bytes", len(body))
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	return body, nil
}

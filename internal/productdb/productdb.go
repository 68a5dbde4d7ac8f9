// Package productdb looks a product up in a secondary product database
// (API Ninjas price search). The data is a pure enrichment input for the
// fusion stage; the snippet is kept schemaless because only the fusion
// model consumes it.
package productdb

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const DefaultBaseURL = "https://api.api-ninjas.com"

// Snippet is the first matching product entry, as returned upstream.
type Snippet map[string]any

type ClientOpts struct {
	BaseURL string
	APIKey  string
}

type Client struct {
	httpClient *resty.Client
	apiKey     string
}

func NewClient(opts ClientOpts) *Client {
	baseURL := DefaultBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	return &Client{
		httpClient: resty.New().SetBaseURL(baseURL),
		apiKey:     opts.APIKey,
	}
}

// Lookup returns the first product entry matching the name, or nil when
// there is no API key, no match, or any upstream failure.
func (c *Client) Lookup(ctx context.Context, productName string) (Snippet, error) {
	if c.apiKey == "" {
		log.Debug().Msg("product database key not configured, skipping enrichment")
		return nil, nil
	}

	var results []Snippet
	res, err := c.httpClient.NewRequest().
		SetContext(ctx).
		SetHeader("X-Api-Key", c.apiKey).
		SetQueryParam("q", productName).
		SetResult(&results).
		Get("/v1/pricesearch")
	if err != nil {
		return nil, fmt.Errorf("product database lookup failed: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("product database lookup failed: status %d", res.StatusCode())
	}

	if len(results) == 0 {
		log.Info().Str("product", productName).Msg("no product database match")
		return nil, nil
	}

	log.Info().Str("product", productName).Msg("product database match found")
	return results[0], nil
}

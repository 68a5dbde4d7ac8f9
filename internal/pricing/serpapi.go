package pricing

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const DefaultBaseURL = "https://serpapi.com"

// Query describes one shopping search. When GeoScoped is false the
// location parameters are omitted entirely (the widened retry).
type Query struct {
	ProductName   string
	CountryCode   string
	LocationToken string
	LocationLabel string
	GeoScoped     bool
}

type ClientOpts struct {
	BaseURL string
	APIKey  string
}

// Client searches Google Shopping through SerpAPI.
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

type shoppingResult struct {
	Title          string  `json:"title"`
	Price          string  `json:"price"`
	ExtractedPrice float64 `json:"extracted_price"`
	Source         string  `json:"source"`
	Link           string  `json:"link"`
	ProductLink    string  `json:"product_link"`
	Rating         float64 `json:"rating"`
	Reviews        int     `json:"reviews"`
}

type searchResponse struct {
	ShoppingResults  []shoppingResult `json:"shopping_results"`
	SearchParameters struct {
		Currency string `json:"currency"`
		Location string `json:"location"`
	} `json:"search_parameters"`
}

// Search runs a price-sorted shopping search and aggregates the results.
// Transport and non-2xx failures return an error; callers apply the
// documented empty-summary fallback.
func (c *Client) Search(ctx context.Context, q Query) (Summary, error) {
	gl := strings.ToLower(q.CountryCode)
	if gl == "" {
		gl = "us"
	}

	params := map[string]string{
		"engine":   "google_shopping",
		"q":        q.ProductName,
		"gl":       gl,
		"sort_by":  "1", // low to high price
		"no_cache": "true",
		"api_key":  c.apiKey,
	}
	if q.GeoScoped {
		// The UULE token gives precise geo-targeting; the readable
		// label is the coarser fallback.
		if q.LocationToken != "" {
			params["uule"] = q.LocationToken
		} else if q.LocationLabel != "" {
			params["location"] = q.LocationLabel
		}
	}

	result := &searchResponse{}
	res, err := c.httpClient.NewRequest().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		Get("/search")
	if err != nil {
		return Unavailable(SearchFailed), fmt.Errorf("shopping search failed: %w", err)
	}
	if res.IsError() {
		return Unavailable(SearchFailed), fmt.Errorf("shopping search failed: status %d", res.StatusCode())
	}

	log.Info().
		Str("product", q.ProductName).
		Str("gl", gl).
		Bool("geoScoped", q.GeoScoped).
		Int("results", len(result.ShoppingResults)).
		Msg("shopping search")

	offers := make([]Offer, 0, len(result.ShoppingResults))
	for _, r := range result.ShoppingResults {
		offers = append(offers, offerFromResult(r, gl))
	}

	summary := Aggregate(offers, result.SearchParameters.Currency, q.CountryCode, DefaultTopN)
	summary.Location = result.SearchParameters.Location
	return summary, nil
}

func offerFromResult(r shoppingResult, gl string) Offer {
	value := r.ExtractedPrice
	if value <= 0 {
		value = ParsePrice(r.Price)
	}
	if value <= 0 {
		value = math.Inf(1)
	}

	link := r.Link
	if link == "" {
		link = r.ProductLink
	}
	if link == "" {
		link = shoppingSearchLink(r.Title, r.Source, gl)
	}

	return Offer{
		Title:      r.Title,
		Source:     r.Source,
		Price:      r.Price,
		PriceValue: value,
		Link:       link,
		Rating:     r.Rating,
		Reviews:    r.Reviews,
	}
}

// shoppingSearchLink builds a Google Shopping search URL for offers the
// API returned without a direct link.
func shoppingSearchLink(title, source, gl string) string {
	query := url.QueryEscape(title + " " + source)
	return fmt.Sprintf("https://www.google.com/search?tbm=shop&q=%s&gl=%s", query, gl)
}

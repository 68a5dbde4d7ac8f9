// Package pipeline orchestrates a product scan: locale resolution,
// vision identification, geo-scoped price aggregation and data fusion,
// assembled into one ProductRecord. Stages are injected as interfaces;
// each stage owns its own failure containment. Identification is the
// only stage without a fallback, because everything downstream keys on
// the product name.
package pipeline

import (
	"context"
	"fmt"

	"github.com/pricehunt/pricehunt/internal/geo"
	"github.com/pricehunt/pricehunt/internal/pricing"
	"github.com/pricehunt/pricehunt/internal/productdb"
	"github.com/pricehunt/pricehunt/internal/vision"
	"github.com/rs/zerolog/log"
)

type state string

const (
	stateLocating    state = "locating_user"
	stateIdentifying state = "identifying_product"
	stateFetching    state = "fetching_prices"
	stateFusing      state = "fusing"
	stateComplete    state = "complete"
	stateFailed      state = "failed"
)

// ScanRequest is one inbound scan: image bytes plus an optional device
// location or place hint.
type ScanRequest struct {
	ImageData    []byte
	MimeType     string
	Coordinates  *geo.Coordinates
	LocationHint *geo.Hint
}

// Store is one purchase option in the final record.
type Store struct {
	Name     string  `json:"name"`
	Price    string  `json:"price"`
	Distance string  `json:"distance"`
	Rating   float64 `json:"rating,omitempty"`
	Link     string  `json:"link,omitempty"`
}

// UserLocation is the resolved locale surfaced to the caller.
type UserLocation struct {
	City     string `json:"city"`
	Country  string `json:"country"`
	Language string `json:"language"`
}

// ProductRecord is the final merged output of a scan. Records are
// immutable after return: re-translation and widened search produce a
// new record rather than mutating an existing one.
type ProductRecord struct {
	vision.Identification

	Currency          string               `json:"currency"`
	PriceRange        string               `json:"priceRange"`
	BestPrice         string               `json:"bestPrice"`
	BestDealer        string               `json:"bestDealer"`
	DealerDistance    string               `json:"dealerDistance,omitempty"`
	DealLink          string               `json:"dealLink,omitempty"`
	AveragePrice      string               `json:"averagePrice,omitempty"`
	PriceAvailability pricing.Availability `json:"priceAvailability"`
	NearbyStores      []Store              `json:"nearbyStores"`
	UserLocation      *UserLocation        `json:"userLocation,omitempty"`
	IsTranslated      bool                 `json:"isTranslated,omitempty"`
}

// Resolver derives the locale context for a scan.
type Resolver interface {
	Resolve(ctx context.Context, coords *geo.Coordinates, hint *geo.Hint) geo.Context
}

// PriceSearcher runs a shopping search and aggregates the offers.
type PriceSearcher interface {
	Search(ctx context.Context, q pricing.Query) (pricing.Summary, error)
}

// ProductLookup queries the secondary product database.
type ProductLookup interface {
	Lookup(ctx context.Context, productName string) (productdb.Snippet, error)
}

// Merger reconciles multi-source data and translates records. Both
// operations may only rewrite narrative text fields.
type Merger interface {
	Enhance(ctx context.Context, rec *ProductRecord, extra productdb.Snippet, loc geo.Context) (*ProductRecord, error)
	TranslateToEnglish(ctx context.Context, rec *ProductRecord) (*ProductRecord, error)
}

// Scanner runs the scan pipeline. Each scan is processed independently
// with no shared state between invocations.
type Scanner struct {
	geo        Resolver
	identifier vision.Identifier
	prices     PriceSearcher
	products   ProductLookup
	merger     Merger
}

// NewScanner assembles a pipeline. products and merger are optional;
// without them the scan skips enrichment and fusion.
func NewScanner(resolver Resolver, identifier vision.Identifier, prices PriceSearcher, products ProductLookup, merger Merger) *Scanner {
	return &Scanner{
		geo:        resolver,
		identifier: identifier,
		prices:     prices,
		products:   products,
		merger:     merger,
	}
}

// Scan runs the full pipeline for one captured image.
func (s *Scanner) Scan(ctx context.Context, req ScanRequest) (*ProductRecord, error) {
	logState(stateLocating)
	loc := s.geo.Resolve(ctx, req.Coordinates, req.LocationHint)

	logState(stateIdentifying)
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	ident, err := s.identifier.Identify(ctx, req.ImageData, mimeType, loc.Language)
	if err != nil {
		logState(stateFailed)
		return nil, fmt.Errorf("product analysis failed: %w", err)
	}

	var extra productdb.Snippet
	if s.products != nil {
		extra, err = s.products.Lookup(ctx, ident.ProductName)
		if err != nil {
			log.Warn().Err(err).Msg("product database enrichment failed, continuing without it")
			extra = nil
		}
	}

	logState(stateFetching)
	summary := pricing.Unavailable(pricing.SearchFailed)
	if s.prices != nil {
		sum, err := s.prices.Search(ctx, pricing.Query{
			ProductName:   ident.ProductName,
			CountryCode:   loc.CountryCode,
			LocationToken: loc.SearchLocationToken,
			LocationLabel: loc.SearchLocationLabel,
			GeoScoped:     true,
		})
		if err != nil {
			log.Warn().Err(err).Msg("price search failed, continuing with empty pricing")
		} else {
			summary = sum
		}
	}

	rec := BuildRecord(*ident, summary, loc)

	// Fusion is a quality enhancement, never a correctness dependency:
	// it runs only when real pricing and secondary data both exist, and
	// any failure keeps the mechanical merge.
	if s.merger != nil && extra != nil && summary.Availability == pricing.Available {
		logState(stateFusing)
		enhanced, err := s.merger.Enhance(ctx, rec, extra, loc)
		if err != nil {
			log.Warn().Err(err).Msg("data fusion failed, keeping mechanical merge")
		} else {
			rec = enhanced
		}
	}

	logState(stateComplete)
	return rec, nil
}

// Translate returns a copy of the record with narrative text in English
// and isTranslated set. Numeric and pricing fields are preserved.
func (s *Scanner) Translate(ctx context.Context, rec *ProductRecord) (*ProductRecord, error) {
	if s.merger == nil {
		return nil, fmt.Errorf("translation is not configured")
	}
	return s.merger.TranslateToEnglish(ctx, rec)
}

// WidenSearch reruns the price search without geo-scoping. It is an
// explicit user-triggered action for when the scoped search found
// nothing, never an automatic retry.
func (s *Scanner) WidenSearch(ctx context.Context, productName, countryCode string) (pricing.Summary, error) {
	return s.prices.Search(ctx, pricing.Query{
		ProductName: productName,
		CountryCode: countryCode,
		GeoScoped:   false,
	})
}

// BuildRecord mechanically merges the three stage outputs into the final
// record.
func BuildRecord(ident vision.Identification, sum pricing.Summary, loc geo.Context) *ProductRecord {
	rec := &ProductRecord{
		Identification:    ident,
		Currency:          sum.Currency,
		PriceRange:        sum.PriceRange,
		BestPrice:         sum.BestPrice,
		BestDealer:        sum.BestDealer,
		DealLink:          sum.DealLink,
		AveragePrice:      sum.FormattedAverage(),
		PriceAvailability: sum.Availability,
		NearbyStores:      make([]Store, 0, len(sum.RankedOffers)),
	}
	if sum.Availability == pricing.Available {
		// Shopping search results carry no physical distance.
		rec.DealerDistance = "Online"
	}
	for _, o := range sum.RankedOffers {
		rec.NearbyStores = append(rec.NearbyStores, Store{
			Name:     o.Source,
			Price:    o.Price,
			Distance: "Online",
			Rating:   o.Rating,
			Link:     o.Link,
		})
	}
	if loc.Coordinates != nil || loc.SearchLocationLabel != "" {
		rec.UserLocation = &UserLocation{
			City:     loc.City,
			Country:  loc.Country,
			Language: loc.Language,
		}
	}
	return rec
}

func logState(st state) {
	log.Debug().Str("state", string(st)).Msg("scan pipeline")
}

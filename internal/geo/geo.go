// Package geo resolves a raw coordinate pair into the locale context the
// rest of the scan pipeline runs under: city, country, language and the
// location hints used to scope the shopping search. Location is an
// enrichment, not a precondition — every failure path yields a usable
// default context instead of an error.
package geo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	userAgent      = "PriceHunt/1.0"
)

// Coordinates is a WGS84 decimal-degree position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Hint is a pre-supplied location, used when the caller knows the place
// but has no coordinates.
type Hint struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Context is the locale bundle derived once per scan.
type Context struct {
	Coordinates *Coordinates
	City        string
	Country     string
	CountryCode string
	Language    string
	// SearchLocationToken is a UULE token derived from the raw
	// coordinates, used for precise geo-targeting of the shopping search.
	SearchLocationToken string
	// SearchLocationLabel is a human-readable "City, Country" fallback.
	SearchLocationLabel string
}

// DefaultContext is the context used when no location can be resolved.
func DefaultContext() Context {
	return Context{
		City:        "Unknown",
		Country:     "Unknown",
		CountryCode: "us",
		Language:    "English",
	}
}

type reverseResponse struct {
	Address address `json:"address"`
}

type address struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Suburb       string `json:"suburb"`
	County       string `json:"county"`
	State        string `json:"state"`
	Municipality string `json:"municipality"`
	Region       string `json:"region"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
}

type ClientOpts struct {
	BaseURL string
}

// Client reverse-geocodes coordinates via a Nominatim-compatible service.
type Client struct {
	httpClient *resty.Client
}

func NewClient(opts ClientOpts) *Client {
	baseURL := DefaultBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("User-Agent", userAgent),
	}
}

// Resolve derives the locale context for a scan. Geocoding errors and
// missing coordinates never propagate; they produce the default context.
func (c *Client) Resolve(ctx context.Context, coords *Coordinates, hint *Hint) Context {
	if coords == nil {
		if hint != nil {
			loc := DefaultContext()
			if hint.City != "" {
				loc.City = hint.City
			}
			if hint.Country != "" {
				loc.Country = hint.Country
			}
			loc.SearchLocationLabel = fmt.Sprintf("%s, %s", loc.City, loc.Country)
			return loc
		}
		return DefaultContext()
	}

	loc := DefaultContext()
	loc.Coordinates = coords
	loc.SearchLocationToken = UULE(coords.Latitude, coords.Longitude)

	result := &reverseResponse{}
	res, err := c.httpClient.NewRequest().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format":         "json",
			"lat":            strconv.FormatFloat(coords.Latitude, 'f', 6, 64),
			"lon":            strconv.FormatFloat(coords.Longitude, 'f', 6, 64),
			"zoom":           "18",
			"addressdetails": "1",
		}).
		SetResult(result).
		Get("/reverse")
	if err != nil {
		log.Warn().Err(err).Msg("reverse geocoding failed, using default context")
		return loc
	}
	if res.IsError() {
		log.Warn().Int("status", res.StatusCode()).Msg("reverse geocoding error, using default context")
		return loc
	}

	addr := result.Address
	loc.City = localityFor(addr)
	if addr.Country != "" {
		loc.Country = addr.Country
	}
	if addr.CountryCode != "" {
		loc.CountryCode = addr.CountryCode
	}
	loc.Language = LanguageForCountry(loc.CountryCode)
	loc.SearchLocationLabel = fmt.Sprintf("%s, %s", loc.City, loc.Country)

	log.Info().
		Str("city", loc.City).
		Str("countryCode", loc.CountryCode).
		Str("language", loc.Language).
		Msg("location resolved")

	return loc
}

// localityFor selects the most search-compatible locality name.
// Overly granular place names (village, suburb) produce empty shopping
// results, so larger administrative divisions are preferred when the
// geocoder returns no city.
func localityFor(addr address) string {
	if addr.City != "" {
		return addr.City
	}
	if addr.Town != "" || addr.Village != "" || addr.Suburb != "" {
		for _, name := range []string{addr.County, addr.State, addr.Town, addr.Village} {
			if name != "" {
				return name
			}
		}
	}
	for _, name := range []string{addr.County, addr.State, addr.Municipality, addr.Region} {
		if name != "" {
			return name
		}
	}
	return "Unknown"
}

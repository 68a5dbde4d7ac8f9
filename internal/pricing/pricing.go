// Package pricing turns a product name and locale context into an
// aggregated price summary: a geo-scoped shopping search followed by a
// pure filter/dedup/rank pass over the returned offers.
package pricing

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// DefaultTopN is how many deduplicated offers the summary carries.
const DefaultTopN = 3

// Availability distinguishes a summary built from real offers from the
// two empty states: a search that genuinely found nothing local, and a
// search that failed in transit. Zero results is a normal outcome and
// lets the caller offer a widened, non-geo-scoped retry.
type Availability string

const (
	Available      Availability = "available"
	NoLocalResults Availability = "no_local_results"
	SearchFailed   Availability = "search_failed"
)

// Offer is a single merchant's price quote.
type Offer struct {
	Title      string  `json:"title"`
	Source     string  `json:"source"`
	Price      string  `json:"price"`
	PriceValue float64 `json:"priceNumber"`
	Link       string  `json:"link,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	Reviews    int     `json:"reviews,omitempty"`
}

// Summary is the aggregated pricing result. It is always well-formed:
// when no offer carries a usable price the summary is the explicit
// unavailable state, never nil.
type Summary struct {
	Availability Availability `json:"availability"`
	Currency     string       `json:"currency"`
	BestPrice    string       `json:"bestPrice"`
	BestDealer   string       `json:"bestDealer"`
	DealLink     string       `json:"dealLink,omitempty"`
	AveragePrice float64      `json:"averagePrice,omitempty"`
	PriceRange   string       `json:"priceRange"`
	RankedOffers []Offer      `json:"offers"`
	Location     string       `json:"location,omitempty"`
}

// Unavailable is the canonical empty summary.
func Unavailable(availability Availability) Summary {
	return Summary{
		Availability: availability,
		Currency:     "USD",
		BestPrice:    "N/A",
		BestDealer:   "Not found",
		PriceRange:   "N/A",
		RankedOffers: []Offer{},
	}
}

// FormattedAverage renders the average price with two decimals, or ""
// when the summary has no offers.
func (s Summary) FormattedAverage() string {
	if len(s.RankedOffers) == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", s.AveragePrice)
}

// Aggregate builds a summary from raw offers:
// offers without a finite positive price are discarded, the rest are
// country-filtered (keep-if-unknown), sorted ascending by price,
// deduplicated by merchant keeping the cheapest occurrence, and capped
// at topN. The average is the exact mean over the kept offers.
func Aggregate(offers []Offer, fallbackCurrency, countryCode string, topN int) Summary {
	usable := lo.Filter(offers, func(o Offer, _ int) bool {
		return !math.IsInf(o.PriceValue, 1) && o.PriceValue > 0
	})
	if len(usable) == 0 {
		return Unavailable(NoLocalResults)
	}

	usable = FilterByCountry(usable, countryCode)
	if len(usable) == 0 {
		return Unavailable(NoLocalResults)
	}

	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].PriceValue < usable[j].PriceValue
	})

	deduped := lo.UniqBy(usable, func(o Offer) string {
		return strings.ToLower(o.Source)
	})
	if topN > 0 && len(deduped) > topN {
		deduped = deduped[:topN]
	}

	sum := lo.SumBy(deduped, func(o Offer) float64 { return o.PriceValue })
	best := deduped[0]

	return Summary{
		Availability: Available,
		Currency:     DetectCurrency(best.Price, fallbackCurrency),
		BestPrice:    best.Price,
		BestDealer:   best.Source,
		DealLink:     best.Link,
		AveragePrice: sum / float64(len(deduped)),
		PriceRange:   priceRange(deduped),
		RankedOffers: deduped,
	}
}

func priceRange(ranked []Offer) string {
	if len(ranked) >= 2 {
		return fmt.Sprintf("%s - %s", ranked[0].Price, ranked[len(ranked)-1].Price)
	}
	return ranked[0].Price
}

// ParsePrice extracts a numeric value from a display price string.
// Unparsable prices return +Inf so they sort last and are excluded from
// ranking.
func ParsePrice(price string) float64 {
	var digits strings.Builder
	for _, r := range price {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if s == "" {
		return math.Inf(1)
	}

	// When both separators appear the rightmost one is the decimal mark;
	// the other is a thousands separator.
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// A lone comma is a decimal mark unless it reads like a
		// thousands group ("1,299").
		if len(s)-lastComma-1 == 3 && lastComma > 0 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}

	var v float64
	if _, err := fmt.Sscanf(s, "%f", &v); err != nil || v <= 0 {
		return math.Inf(1)
	}
	return v
}

var currencySymbols = []string{"€", "$", "£", "¥", "₹"}

var isoCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "RON": true,
	"PLN": true, "BRL": true, "CAD": true, "AUD": true, "INR": true,
	"MXN": true, "ARS": true, "RUB": true, "CNY": true, "KRW": true,
}

// DetectCurrency finds the currency symbol or ISO code in a display
// price, falling back to the search engine's reported currency, then to
// USD.
func DetectCurrency(price, fallback string) string {
	for _, sym := range currencySymbols {
		if strings.Contains(price, sym) {
			return sym
		}
	}
	for _, field := range strings.Fields(price) {
		if isoCurrencies[strings.ToUpper(field)] {
			return strings.ToUpper(field)
		}
	}
	if fallback != "" {
		return fallback
	}
	return "USD"
}

package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offer(source string, value float64, price string) Offer {
	return Offer{Title: source + " offer", Source: source, Price: price, PriceValue: value}
}

func TestAggregateRanksAndDeduplicates(t *testing.T) {
	offers := []Offer{
		offer("Saturn", 12, "12,00 €"),
		offer("MediaMarkt", 10, "10,00 €"),
		offer("Otto", 15, "15,00 €"),
		offer("mediamarkt", 16.5, "16,50 €"), // duplicate merchant, different case
		offer("Conrad", 18, "18,00 €"),       // beyond top-3
	}

	sum := Aggregate(offers, "EUR", "de", DefaultTopN)
	require.Equal(t, Available, sum.Availability)
	require.Len(t, sum.RankedOffers, 3)
	assert.Equal(t, "MediaMarkt", sum.RankedOffers[0].Source)
	assert.Equal(t, "Saturn", sum.RankedOffers[1].Source)
	assert.Equal(t, "Otto", sum.RankedOffers[2].Source)
	assert.Equal(t, "10,00 €", sum.BestPrice)
	assert.Equal(t, "MediaMarkt", sum.BestDealer)
	assert.Equal(t, "10,00 € - 15,00 €", sum.PriceRange)
	assert.Equal(t, "€", sum.Currency)
	assert.InDelta(t, (10.0+12.0+15.0)/3.0, sum.AveragePrice, 1e-12)
	assert.Equal(t, "12.33", sum.FormattedAverage())
}

func TestAggregateIsIdempotent(t *testing.T) {
	offers := []Offer{
		offer("B", 20, "$20"),
		offer("A", 10, "$10"),
		offer("C", 30, "$30"),
	}
	first := Aggregate(offers, "", "us", DefaultTopN)
	second := Aggregate(first.RankedOffers, "", "us", DefaultTopN)
	assert.Equal(t, first.RankedOffers, second.RankedOffers)
	assert.Equal(t, first.AveragePrice, second.AveragePrice)
}

func TestAggregateAveragePriceIsExactMean(t *testing.T) {
	offers := []Offer{
		offer("A", 1.10, "$1.10"),
		offer("B", 2.20, "$2.20"),
	}
	sum := Aggregate(offers, "", "us", DefaultTopN)
	var mean float64
	for _, o := range sum.RankedOffers {
		mean += o.PriceValue
	}
	mean /= float64(len(sum.RankedOffers))
	assert.Equal(t, mean, sum.AveragePrice)
}

func TestAggregateZeroUsableOffersIsCanonicalUnavailable(t *testing.T) {
	offers := []Offer{
		offer("A", math.Inf(1), "call for price"),
		offer("B", math.Inf(1), ""),
	}
	sum := Aggregate(offers, "EUR", "de", DefaultTopN)
	assert.Equal(t, NoLocalResults, sum.Availability)
	assert.Equal(t, "N/A", sum.BestPrice)
	assert.Equal(t, "Not found", sum.BestDealer)
	assert.Empty(t, sum.RankedOffers)
	assert.NotNil(t, sum.RankedOffers)
	// Distinguishable from a transport failure
	assert.NotEqual(t, SearchFailed, sum.Availability)
}

func TestAggregateSingleOfferPriceRange(t *testing.T) {
	sum := Aggregate([]Offer{offer("A", 10, "$10.00")}, "", "us", DefaultTopN)
	assert.Equal(t, "$10.00", sum.PriceRange)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$12.99", 12.99},
		{"12,99 €", 12.99},
		{"1.299,00 €", 1299},
		{"1,299.00", 1299},
		{"1,299", 1299},
		{"¥1500", 1500},
		{"RON 45,50", 45.50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePrice(tt.in), "input %q", tt.in)
	}

	assert.True(t, math.IsInf(ParsePrice(""), 1))
	assert.True(t, math.IsInf(ParsePrice("call for price"), 1))
}

func TestDetectCurrency(t *testing.T) {
	assert.Equal(t, "€", DetectCurrency("12,99 €", "EUR"))
	assert.Equal(t, "$", DetectCurrency("$5", ""))
	assert.Equal(t, "₹", DetectCurrency("₹999", ""))
	assert.Equal(t, "RON", DetectCurrency("RON 45,50", ""))
	// No symbol in the price string: engine metadata wins
	assert.Equal(t, "EUR", DetectCurrency("12.99", "EUR"))
	// Nothing at all: USD
	assert.Equal(t, "USD", DetectCurrency("12.99", ""))
}

func TestSourceCountry(t *testing.T) {
	assert.Equal(t, "de", SourceCountry("amazon.de"))
	assert.Equal(t, "gb", SourceCountry("Amazon.co.uk"))
	assert.Equal(t, "de", SourceCountry("MediaMarkt"))
	assert.Equal(t, "ro", SourceCountry("eMAG"))
	assert.Equal(t, "", SourceCountry("Some Web Shop"))
}

func TestFilterByCountryKeepsUnknown(t *testing.T) {
	offers := []Offer{
		offer("amazon.de", 10, "10 €"),
		offer("amazon.fr", 11, "11 €"),
		offer("Mystery Store", 12, "12 €"),
	}
	filtered := FilterByCountry(offers, "de")
	require.Len(t, filtered, 2)
	assert.Equal(t, "amazon.de", filtered[0].Source)
	// Indeterminate country is kept rather than discarded
	assert.Equal(t, "Mystery Store", filtered[1].Source)
}

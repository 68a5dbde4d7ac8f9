package fusion

import (
	"testing"

	"github.com/pricehunt/pricehunt/internal/geo"
	"github.com/pricehunt/pricehunt/internal/pipeline"
	"github.com/pricehunt/pricehunt/internal/pricing"
	"github.com/pricehunt/pricehunt/internal/vision"
	"github.com/stretchr/testify/assert"
)

func sampleRecord() *pipeline.ProductRecord {
	return pipeline.BuildRecord(
		vision.Identification{
			ProductName:     "Logitech MX Master 3S",
			Category:        "Computermaus",
			Description:     "Kabellose Maus.",
			Rating:          4.6,
			ReviewCount:     2100,
			ReviewBreakdown: vision.ReviewBreakdown{Quality: 90, Value: 75, Durability: 85},
			Pros:            []string{"Präzise"},
			Cons:            []string{"Teuer"},
			UsageTips:       []string{"Per Bluetooth koppeln"},
			Recommendation:  "Sehr empfehlenswert.",
		},
		pricing.Summary{
			Availability: pricing.Available,
			Currency:     "€",
			BestPrice:    "89,99 €",
			BestDealer:   "MediaMarkt",
			AveragePrice: 94.5,
			PriceRange:   "89,99 € - 99,00 €",
			RankedOffers: []pricing.Offer{
				{Title: "MX Master 3S", Source: "MediaMarkt", Price: "89,99 €", PriceValue: 89.99},
				{Title: "MX Master 3S", Source: "Saturn", Price: "99,00 €", PriceValue: 99},
			},
		},
		geo.Context{
			Coordinates: &geo.Coordinates{Latitude: 48.1, Longitude: 11.5},
			City:        "München", Country: "Deutschland", CountryCode: "de", Language: "German",
			SearchLocationLabel: "München, Deutschland",
		},
	)
}

func TestApplyNarrativeRewritesTextOnly(t *testing.T) {
	rec := sampleRecord()
	before := *rec

	applyNarrative(rec, narrative{
		ProductName:    "Logitech MX Master 3S (Graphit)",
		Description:    "Verbesserte Beschreibung.",
		Pros:           []string{"Präzise", "Lokal verfügbar"},
		Recommendation: "Bei MediaMarkt erhältlich.",
	})

	assert.Equal(t, "Logitech MX Master 3S (Graphit)", rec.ProductName)
	assert.Equal(t, "Verbesserte Beschreibung.", rec.Description)
	assert.Len(t, rec.Pros, 2)
	// Empty model fields keep the original text
	assert.Equal(t, "Computermaus", rec.Category)
	assert.Equal(t, []string{"Teuer"}, rec.Cons)

	// Pricing and numeric fields are untouched
	assert.Equal(t, before.Currency, rec.Currency)
	assert.Equal(t, before.BestPrice, rec.BestPrice)
	assert.Equal(t, before.BestDealer, rec.BestDealer)
	assert.Equal(t, before.AveragePrice, rec.AveragePrice)
	assert.Equal(t, before.PriceRange, rec.PriceRange)
	assert.Equal(t, before.NearbyStores, rec.NearbyStores)
	assert.Equal(t, before.Rating, rec.Rating)
	assert.Equal(t, before.ReviewCount, rec.ReviewCount)
	assert.Equal(t, before.ReviewBreakdown, rec.ReviewBreakdown)
}

func TestNarrativeOfRoundTrip(t *testing.T) {
	rec := sampleRecord()
	n := narrativeOf(rec)
	assert.Equal(t, rec.ProductName, n.ProductName)
	assert.Equal(t, rec.Pros, n.Pros)
	assert.Equal(t, rec.Recommendation, n.Recommendation)
}

func TestMergePromptPreservesPricingInstruction(t *testing.T) {
	assert.Contains(t, mergePrompt, "Do NOT change any prices or numeric values")
	assert.Contains(t, translatePrompt, "Do NOT modify: rating, reviewCount, reviewBreakdown")
}

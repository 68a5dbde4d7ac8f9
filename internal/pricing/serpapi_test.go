package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchGeoScoped(t *testing.T) {
	b, err := os.ReadFile("testdata/google_shopping_de.json")
	require.NoError(t, err)

	var req *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req = r
		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL, APIKey: "test-key"})
	sum, err := client.Search(context.Background(), Query{
		ProductName:   "Logitech MX Master 3S",
		CountryCode:   "de",
		LocationToken: "w+CAIQICItoken",
		LocationLabel: "München, Deutschland",
		GeoScoped:     true,
	})
	require.NoError(t, err)

	q := req.URL.Query()
	assert.Equal(t, "/search", req.URL.Path)
	assert.Equal(t, "google_shopping", q.Get("engine"))
	assert.Equal(t, "Logitech MX Master 3S", q.Get("q"))
	assert.Equal(t, "de", q.Get("gl"))
	assert.Equal(t, "1", q.Get("sort_by"))
	assert.Equal(t, "true", q.Get("no_cache"))
	assert.Equal(t, "test-key", q.Get("api_key"))
	// The UULE token takes precedence over the readable label
	assert.Equal(t, "w+CAIQICItoken", q.Get("uule"))
	assert.Empty(t, q.Get("location"))

	assert.Equal(t, Available, sum.Availability)
	require.Len(t, sum.RankedOffers, 3)
	assert.Equal(t, "MediaMarkt", sum.BestDealer)
	assert.Equal(t, "10,00 €", sum.BestPrice)
	assert.Equal(t, "€", sum.Currency)
	assert.Equal(t, "12.33", sum.FormattedAverage())
	assert.Equal(t, "München, Deutschland", sum.Location)
	// Offer without a link gets a shopping search link
	assert.Contains(t, sum.RankedOffers[2].Link, "https://www.google.com/search?tbm=shop")
	assert.Contains(t, sum.RankedOffers[2].Link, "gl=de")
}

func TestSearchFallsBackToLocationLabel(t *testing.T) {
	var req *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"shopping_results": []}`))
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL, APIKey: "k"})
	sum, err := client.Search(context.Background(), Query{
		ProductName:   "thing",
		CountryCode:   "fr",
		LocationLabel: "Lyon, France",
		GeoScoped:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Lyon, France", req.URL.Query().Get("location"))
	assert.Equal(t, NoLocalResults, sum.Availability)
	assert.Equal(t, "N/A", sum.BestPrice)
}

func TestSearchWidenedOmitsLocation(t *testing.T) {
	var req *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"shopping_results": [{"title": "t", "price": "$5.00", "extracted_price": 5, "source": "Shop"}]}`))
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL, APIKey: "k"})
	sum, err := client.Search(context.Background(), Query{
		ProductName:   "thing",
		CountryCode:   "de",
		LocationToken: "w+token",
		LocationLabel: "Berlin, Germany",
		GeoScoped:     false,
	})
	require.NoError(t, err)
	assert.Empty(t, req.URL.Query().Get("uule"))
	assert.Empty(t, req.URL.Query().Get("location"))
	assert.Equal(t, Available, sum.Availability)
}

func TestSearchUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL, APIKey: "k"})
	sum, err := client.Search(context.Background(), Query{ProductName: "thing", GeoScoped: true})
	assert.Error(t, err)
	assert.Equal(t, SearchFailed, sum.Availability)
}

func TestSearchDefaultsCountryToUS(t *testing.T) {
	var req *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"shopping_results": []}`))
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL, APIKey: "k"})
	_, err := client.Search(context.Background(), Query{ProductName: "thing"})
	require.NoError(t, err)
	assert.Equal(t, "us", req.URL.Query().Get("gl"))
}

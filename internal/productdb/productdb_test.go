package productdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	var req *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name": "Logitech MX Master 3S", "min_price": 89.99}, {"name": "other"}]`))
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL, APIKey: "k"})
	snippet, err := client.Lookup(context.Background(), "Logitech MX Master 3S")
	require.NoError(t, err)
	require.NotNil(t, snippet)

	assert.Equal(t, "/v1/pricesearch", req.URL.Path)
	assert.Equal(t, "Logitech MX Master 3S", req.URL.Query().Get("q"))
	assert.Equal(t, "k", req.Header.Get("X-Api-Key"))
	assert.Equal(t, "Logitech MX Master 3S", snippet["name"])
}

func TestLookupNoKeySkips(t *testing.T) {
	client := NewClient(ClientOpts{BaseURL: "http://127.0.0.1:1"})
	snippet, err := client.Lookup(context.Background(), "thing")
	assert.NoError(t, err)
	assert.Nil(t, snippet)
}

func TestLookupNoResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL, APIKey: "k"})
	snippet, err := client.Lookup(context.Background(), "thing")
	assert.NoError(t, err)
	assert.Nil(t, snippet)
}

func TestLookupUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL, APIKey: "k"})
	_, err := client.Lookup(context.Background(), "thing")
	assert.Error(t, err)
}

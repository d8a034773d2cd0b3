package places

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuedesk/backend/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.PlacesConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		RegionCode: "it",
		TimeoutSec: 1,
	})
}

func TestAutocompleteSendsKeyAndRegion(t *testing.T) {
	var gotPath, gotKey, gotMask string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Goog-Api-Key")
		gotMask = r.Header.Get("X-Goog-FieldMask")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"suggestions":[]}`))
	}))
	defer srv.Close()

	data, err := newTestClient(srv.URL).Autocomplete(context.Background(), "piazza", "tok-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"suggestions":[]}`, string(data))

	assert.Equal(t, "/places:autocomplete", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.NotEmpty(t, gotMask)
	assert.Equal(t, "piazza", gotBody["input"])
	assert.Equal(t, "it", gotBody["regionCode"])
	assert.Equal(t, "tok-1", gotBody["sessionToken"])
}

func TestDetailsEscapesPlaceID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"id":"ChIJ123"}`))
	}))
	defer srv.Close()

	data, err := newTestClient(srv.URL).Details(context.Background(), "ChIJ123", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"ChIJ123"}`, string(data))
	assert.Equal(t, "/places/ChIJ123", gotPath)
}

func TestUpstreamErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":"INVALID_ARGUMENT"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Autocomplete(context.Background(), "x", "")
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusBadRequest, ue.StatusCode)
}

func TestUpstreamTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Autocomplete(context.Background(), "slow", "")
	assert.ErrorIs(t, err, ErrUpstreamTimeout)
}

func TestDisabledWithoutKey(t *testing.T) {
	c := NewClient(config.PlacesConfig{TimeoutSec: 1})
	assert.False(t, c.Enabled())
	assert.True(t, newTestClient("http://example.invalid").Enabled())
}

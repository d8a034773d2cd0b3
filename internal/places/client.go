package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/venuedesk/backend/config"
)

// ErrUpstreamTimeout marks a Places call that exceeded the configured
// deadline. Other upstream failures are reported as UpstreamError.
var ErrUpstreamTimeout = errors.New("places upstream timeout")

// UpstreamError carries a non-2xx answer from the Places API.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("places upstream status %d", e.StatusCode)
}

// Client calls the Google Places API (New) v1 endpoints.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	regionCode string
}

// NewClient creates a Places client from configuration.
func NewClient(cfg config.PlacesConfig) *Client {
	return &Client{
		http:       &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		regionCode: cfg.RegionCode,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

const (
	autocompleteFieldMask = "suggestions.placePrediction.placeId,suggestions.placePrediction.text,suggestions.placePrediction.structuredFormat"
	detailsFieldMask      = "id,displayName,formattedAddress,addressComponents,location,types,websiteUri,internationalPhoneNumber"
)

// Autocomplete proxies POST :autocomplete. The response body is returned
// verbatim for the frontend to consume.
func (c *Client) Autocomplete(ctx context.Context, input, sessionToken string) (json.RawMessage, error) {
	payload := map[string]interface{}{
		"input":      input,
		"regionCode": c.regionCode,
	}
	if sessionToken != "" {
		payload["sessionToken"] = sessionToken
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/places:autocomplete", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", autocompleteFieldMask)

	return c.do(req)
}

// Details proxies GET /places/{id}.
func (c *Client) Details(ctx context.Context, placeID, sessionToken string) (json.RawMessage, error) {
	endpoint := c.baseURL + "/places/" + url.PathEscape(placeID)
	if sessionToken != "" {
		endpoint += "?sessionToken=" + url.QueryEscape(sessionToken)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", detailsFieldMask)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, ErrUpstreamTimeout
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrUpstreamTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return json.RawMessage(data), nil
}

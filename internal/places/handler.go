package places

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/venuedesk/backend/pkg/response"
)

// Handler proxies Google Places lookups so the API key never reaches the
// frontend.
type Handler struct {
	client *Client
	cache  *Cache
	logger *zap.Logger
}

// NewHandler creates a places handler. Cache may be nil.
func NewHandler(client *Client, cache *Cache, logger *zap.Logger) *Handler {
	return &Handler{client: client, cache: cache, logger: logger}
}

func (h *Handler) upstreamFailure(c *gin.Context, err error) {
	if errors.Is(err, ErrUpstreamTimeout) {
		response.UpstreamTimeout(c, "places lookup timed out")
		return
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		h.logger.Warn("places upstream error",
			zap.Int("status", ue.StatusCode),
			zap.String("body", ue.Body))
		response.UpstreamError(c, "places lookup failed")
		return
	}
	h.logger.Error("places request failed", zap.Error(err))
	response.UpstreamError(c, "places lookup failed")
}

// AutocompleteBody is the body for POST /places/autocomplete.
type AutocompleteBody struct {
	Input        string `json:"input" binding:"required"`
	SessionToken string `json:"session_token"`
}

// Autocomplete handles POST /places/autocomplete.
func (h *Handler) Autocomplete(c *gin.Context) {
	if !h.client.Enabled() {
		response.UpstreamError(c, "places lookup is not configured")
		return
	}
	var body AutocompleteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	input := strings.TrimSpace(body.Input)
	if input == "" {
		response.ValidationFailed(c, "input is required")
		return
	}

	ctx := c.Request.Context()
	if cached := h.cache.Get(ctx, "autocomplete", input); cached != nil {
		response.OK(c, cached)
		return
	}

	data, err := h.client.Autocomplete(ctx, input, body.SessionToken)
	if err != nil {
		h.upstreamFailure(c, err)
		return
	}
	h.cache.Set(ctx, "autocomplete", input, data)
	response.OK(c, data)
}

// Details handles GET /places/:placeId.
func (h *Handler) Details(c *gin.Context) {
	if !h.client.Enabled() {
		response.UpstreamError(c, "places lookup is not configured")
		return
	}
	placeID := c.Param("placeId")
	if placeID == "" {
		response.BadRequest(c, "invalid place id")
		return
	}

	ctx := c.Request.Context()
	if cached := h.cache.Get(ctx, "details", placeID); cached != nil {
		response.OK(c, cached)
		return
	}

	data, err := h.client.Details(ctx, placeID, c.Query("session_token"))
	if err != nil {
		h.upstreamFailure(c, err)
		return
	}
	h.cache.Set(ctx, "details", placeID, data)
	response.OK(c, data)
}

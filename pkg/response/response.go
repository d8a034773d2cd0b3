package response

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the standard API response envelope.
type Body struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	PageCount *int        `json:"pageCount,omitempty"`
	Error     *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries a stable machine-readable code plus a user-safe message.
// Details and Fields are populated only when they are safe to expose.
type ErrorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError points a validation failure at a specific payload field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Page sends a 200 JSON response with data and a page count derived from
// total rows and page size.
func Page(c *gin.Context, data interface{}, total, perPage int) {
	count := PageCount(total, perPage)
	c.JSON(http.StatusOK, Body{Success: true, Data: data, PageCount: &count})
}

// PageCount returns ceil(total/perPage), never negative.
func PageCount(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(perPage)))
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error envelope with the given HTTP status and code.
func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, Body{Success: false, Error: &ErrorBody{Code: code, Message: message}})
}

// BadRequest sends 400 with VALIDATION_ERROR.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeValidationError, message)
}

// ValidationFailed sends 400 with per-field errors.
func ValidationFailed(c *gin.Context, message string, fields ...FieldError) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: &ErrorBody{
		Code:    CodeValidationError,
		Message: message,
		Fields:  fields,
	}})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, CodeForbidden, message)
}

// NotFound sends 404.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeNotFound, message)
}

// Conflict sends 409.
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, CodeConflict, message)
}

// UpstreamError sends 502 for external API failures.
func UpstreamError(c *gin.Context, message string) {
	Error(c, http.StatusBadGateway, CodeUpstreamError, message)
}

// UpstreamTimeout sends 504 for external API timeouts.
func UpstreamTimeout(c *gin.Context, message string) {
	Error(c, http.StatusGatewayTimeout, CodeTimeout, message)
}

// Internal sends 500.
func Internal(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, CodeInternalError, message)
}

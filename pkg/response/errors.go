package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Stable error codes returned to clients. Frontends switch on these.
const (
	CodeValidationError     = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeUniqueViolation     = "UNIQUE_VIOLATION"
	CodeForeignKeyViolation = "FOREIGN_KEY_VIOLATION"
	CodeNotNullViolation    = "NOT_NULL_VIOLATION"
	CodeCheckViolation      = "CHECK_VIOLATION"
	CodeDatabaseError       = "DATABASE_ERROR"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	CodeTimeout             = "TIMEOUT"
	CodeUpstreamError       = "UPSTREAM_ERROR"
	CodeInternalError       = "INTERNAL_ERROR"
)

var userMessages = map[string]string{
	CodeUniqueViolation:     "This item already exists. Please use different values or update the existing item.",
	CodeForeignKeyViolation: "This operation references data that doesn't exist or cannot be removed because other data depends on it.",
	CodeNotNullViolation:    "A required field is missing. Please fill in all required information.",
	CodeCheckViolation:      "The provided value doesn't meet the required criteria. Please check your input.",
	CodeDatabaseError:       "A database error occurred. Please try again later.",
	CodeServiceUnavailable:  "The service is temporarily unavailable. Please try again in a few minutes.",
	CodeTimeout:             "The request took too long to process. Please try again.",
	CodeInternalError:       "Something went wrong on our end. Please try again later.",
}

// includeDetails controls whether raw database details leak into responses.
// Set once at startup; off in production.
var includeDetails = true

// SetIncludeDetails toggles raw error details in envelopes (development only).
func SetIncludeDetails(v bool) {
	includeDetails = v
}

// classifyStoreError maps a pgconn.PgError code (or any other error) to an
// HTTP status, a stable error code, and an optional detail string.
func classifyStoreError(err error) (status int, code, detail string) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return http.StatusInternalServerError, CodeInternalError, ""
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return http.StatusConflict, CodeUniqueViolation, pgErr.Detail
	case pgerrcode.ForeignKeyViolation:
		return http.StatusBadRequest, CodeForeignKeyViolation, pgErr.Detail
	case pgerrcode.NotNullViolation:
		if pgErr.ColumnName != "" {
			return http.StatusBadRequest, CodeNotNullViolation, "the field \"" + pgErr.ColumnName + "\" is required"
		}
		return http.StatusBadRequest, CodeNotNullViolation, pgErr.Detail
	case pgerrcode.CheckViolation:
		return http.StatusBadRequest, CodeCheckViolation, pgErr.ConstraintName
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return http.StatusServiceUnavailable, CodeDatabaseError, "transaction conflict, retry the request"
	case pgerrcode.QueryCanceled:
		return http.StatusGatewayTimeout, CodeTimeout, ""
	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.SQLClientUnableToEstablishSQLConnection,
		pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown,
		pgerrcode.TooManyConnections,
		pgerrcode.InsufficientResources,
		pgerrcode.DiskFull,
		pgerrcode.OutOfMemory:
		return http.StatusServiceUnavailable, CodeServiceUnavailable, ""
	default:
		return http.StatusInternalServerError, CodeDatabaseError, pgErr.Message
	}
}

// StoreError classifies a store error, logs the original, and sends the
// envelope. Handlers call this for any unexpected repository error.
func StoreError(c *gin.Context, logger *zap.Logger, err error) {
	status, code, detail := classifyStoreError(err)
	if logger != nil {
		logger.Error("store error",
			zap.String("code", code),
			zap.Int("status", status),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	body := &ErrorBody{Code: code, Message: userMessages[code]}
	if includeDetails && detail != "" {
		body.Details = detail
	}
	c.JSON(status, Body{Success: false, Error: body})
}

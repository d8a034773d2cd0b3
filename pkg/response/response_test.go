package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(register func(*gin.Engine)) *httptest.ResponseRecorder {
	router := gin.New()
	register(router)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Body {
	t.Helper()
	var body Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestOKEnvelope(t *testing.T) {
	w := perform(func(r *gin.Engine) {
		r.GET("/", func(c *gin.Context) { OK(c, gin.H{"hello": "world"}) })
	})
	assert.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
	assert.Nil(t, body.PageCount)
}

func TestPageEnvelope(t *testing.T) {
	w := perform(func(r *gin.Engine) {
		r.GET("/", func(c *gin.Context) { Page(c, []string{"a"}, 41, 20) })
	})
	body := decode(t, w)
	assert.True(t, body.Success)
	require.NotNil(t, body.PageCount)
	assert.Equal(t, 3, *body.PageCount)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 20))
	assert.Equal(t, 0, PageCount(-5, 20))
	assert.Equal(t, 0, PageCount(10, 0))
	assert.Equal(t, 1, PageCount(1, 20))
	assert.Equal(t, 1, PageCount(20, 20))
	assert.Equal(t, 2, PageCount(21, 20))
}

func TestErrorEnvelope(t *testing.T) {
	w := perform(func(r *gin.Engine) {
		r.GET("/", func(c *gin.Context) { NotFound(c, "customer not found") })
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	body := decode(t, w)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, CodeNotFound, body.Error.Code)
	assert.Equal(t, "customer not found", body.Error.Message)
}

func TestValidationFailedFields(t *testing.T) {
	w := perform(func(r *gin.Engine) {
		r.GET("/", func(c *gin.Context) {
			ValidationFailed(c, "invalid payload", FieldError{Field: "email", Message: "required"})
		})
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	require.NotNil(t, body.Error)
	assert.Equal(t, CodeValidationError, body.Error.Code)
	require.Len(t, body.Error.Fields, 1)
	assert.Equal(t, "email", body.Error.Fields[0].Field)
}

func TestStoreErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, http.StatusConflict, CodeUniqueViolation},
		{"foreign key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, http.StatusBadRequest, CodeForeignKeyViolation},
		{"not null", &pgconn.PgError{Code: pgerrcode.NotNullViolation}, http.StatusBadRequest, CodeNotNullViolation},
		{"check", &pgconn.PgError{Code: pgerrcode.CheckViolation}, http.StatusBadRequest, CodeCheckViolation},
		{"deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, http.StatusServiceUnavailable, CodeDatabaseError},
		{"too many connections", &pgconn.PgError{Code: pgerrcode.TooManyConnections}, http.StatusServiceUnavailable, CodeServiceUnavailable},
		{"plain", errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}
	logger := zap.NewNop()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(func(r *gin.Engine) {
				r.GET("/", func(c *gin.Context) { StoreError(c, logger, tt.err) })
			})
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestListParams(t *testing.T) {
	router := gin.New()
	var page, perPage int
	var search string
	router.GET("/", func(c *gin.Context) {
		page, perPage, search = ListParams(c)
		c.Status(http.StatusOK)
	})

	get := func(query string) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+query, nil))
	}

	get("")
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, perPage)
	assert.Empty(t, search)

	get("?page=3&perPage=50&search=%20acme%20")
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, perPage)
	assert.Equal(t, "acme", search)

	get("?page=-2&perPage=9000")
	assert.Equal(t, 1, page)
	assert.Equal(t, 100, perPage)
}

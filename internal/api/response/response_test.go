package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/welldanyogia/postoffice/internal/errors"
)

func setupTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func TestOK(t *testing.T) {
	c, rec := setupTestContext()

	require.NoError(t, OK(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestOKWithID(t *testing.T) {
	c, rec := setupTestContext()

	require.NoError(t, OKWithID(c, "0192f8a4"))

	assert.JSONEq(t, `{"status":"ok","id":"0192f8a4"}`, rec.Body.String())
}

func TestOKWithRemoved_IncludesZero(t *testing.T) {
	c, rec := setupTestContext()

	require.NoError(t, OKWithRemoved(c, 0))

	assert.JSONEq(t, `{"status":"ok","removed":0}`, rec.Body.String())
}

func TestData(t *testing.T) {
	c, rec := setupTestContext()

	require.NoError(t, Data(c, map[string]string{"owner": "bob"}))

	assert.JSONEq(t, `{"owner":"bob"}`, rec.Body.String())
}

func TestError_StatusAndBody(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		expected string
	}{
		{
			"invalid input keeps field message",
			apperrors.InvalidInput("count", "must be positive"),
			http.StatusBadRequest,
			`{"status":"err","code":"INVALID_INPUT","error":"count must be positive"}`,
		},
		{
			"store unavailable hides driver text",
			apperrors.Unavailable("read row", errors.New("dial tcp 10.1.1.1:5432")),
			http.StatusServiceUnavailable,
			`{"status":"err","code":"STORE_UNAVAILABLE","error":"store unavailable"}`,
		},
		{
			"partial delivery",
			fmt.Errorf("%w: message m1: %w", apperrors.ErrPartialDelivery, errors.New("timeout")),
			http.StatusInternalServerError,
			`{"status":"err","code":"PARTIAL_DELIVERY","error":"message partially delivered"}`,
		},
		{
			"not found",
			apperrors.ErrNotFound,
			http.StatusNotFound,
			`{"status":"err","code":"NOT_FOUND","error":"not found"}`,
		},
		{
			"unknown error",
			errors.New("something secret"),
			http.StatusInternalServerError,
			`{"status":"err","code":"INTERNAL_ERROR","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := setupTestContext()

			require.NoError(t, Error(c, tt.err))

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.expected, rec.Body.String())
		})
	}
}

func TestBadRequest(t *testing.T) {
	c, rec := setupTestContext()

	require.NoError(t, BadRequest(c, "owner is required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"err","code":"INVALID_INPUT","error":"owner is required"}`, rec.Body.String())
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func corsRequest(mw echo.MiddlewareFunc, method, origin string) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(mw)
	e.GET("/folder", func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	req := httptest.NewRequest(method, "/folder", nil)
	req.Header.Set("Origin", origin)
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSecureCORS_AllowedOrigin(t *testing.T) {
	rec := corsRequest(SecureCORS([]string{"http://localhost:3000", "http://example.com"}, "development"), http.MethodGet, "http://example.com")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecureCORS_DisallowedOrigin(t *testing.T) {
	rec := corsRequest(SecureCORS([]string{"http://localhost:3000"}, "development"), http.MethodGet, "http://malicious.com")

	// Request still succeeds but without CORS headers for disallowed origin
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecureCORS_PreflightOptions(t *testing.T) {
	rec := corsRequest(SecureCORS([]string{"http://localhost:3000"}, "development"), http.MethodOptions, "http://localhost:3000")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestSecureCORS_DefaultOrigin(t *testing.T) {
	rec := corsRequest(SecureCORS(nil, "development"), http.MethodGet, "http://localhost:3000")

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecureCORS_ProductionNoWildcard(t *testing.T) {
	rec := corsRequest(SecureCORS([]string{"*"}, "production"), http.MethodGet, "http://anything.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = corsRequest(SecureCORS([]string{"*"}, "development"), http.MethodGet, "http://anything.com")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

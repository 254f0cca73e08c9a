package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RequestLogger returns a middleware that logs HTTP requests
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let echo write the response so the logged status is final
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			logger.Info("request",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			)

			return nil
		}
	}
}

// Recover returns a middleware that recovers from panics and logs them with
// their stack. The panic becomes a 500 answer.
func Recover(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			if logger != nil {
				logger.Error("panic recovered",
					slog.String("method", c.Request().Method),
					slog.String("path", c.Request().URL.Path),
					slog.Any("error", err),
					slog.String("stack", string(stack)),
				)
			}
			return err
		},
	})
}

// SecureHeaders sets the response headers of a JSON API that also serves a
// static welcome page
func SecureHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "no-referrer")
			if c.Scheme() == "https" {
				h.Set("Strict-Transport-Security", "max-age=31536000")
			}
			return next(c)
		}
	}
}

// StatusBody is the failure body every front end error is rendered as
type StatusBody struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ErrorHandler renders errors that escape handlers, such as unknown routes,
// rate limiting and recovered panics, as {"status":"err"} bodies without
// leaking internal error text
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := StatusBody{Status: "err", Code: "INTERNAL_ERROR", Error: http.StatusText(status)}

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			body.Error = http.StatusText(status)
			body.Code = codeForStatus(status)
			if m, ok := he.Message.(StatusBody); ok {
				body = m
			}
		} else if logger != nil {
			logger.Error("unhandled error",
				slog.String("path", c.Request().URL.Path),
				slog.Any("error", err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil && logger != nil {
			logger.Error("failed to write error response", slog.Any("error", err))
		}
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusBadRequest:
		return "INVALID_INPUT"
	default:
		if status < http.StatusInternalServerError {
			return "REQUEST_ERROR"
		}
		return "INTERNAL_ERROR"
	}
}

package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/welldanyogia/postoffice/internal/errors"
)

// Status values of a StatusResponse
const (
	StatusOK  = "ok"
	StatusErr = "err"
)

// StatusResponse is the body of every command endpoint and of every failure
type StatusResponse struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Removed *int   `json:"removed,omitempty"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK returns {"status":"ok"}
func OK(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: StatusOK})
}

// OKWithID returns {"status":"ok","id":id}
func OKWithID(c echo.Context, id string) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: StatusOK, ID: id})
}

// OKWithRemoved returns {"status":"ok","removed":n}
func OKWithRemoved(c echo.Context, removed int) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: StatusOK, Removed: &removed})
}

// Data returns data itself as the JSON body
func Data(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// Error returns a failure body with the status matching err's code. Only
// input errors carry their message; everything else gets a generic text.
func Error(c echo.Context, err error) error {
	code := apperrors.GetErrorCode(err)
	return c.JSON(getHTTPStatus(code), StatusResponse{
		Status: StatusErr,
		Code:   code,
		Error:  publicMessage(code, err),
	})
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, StatusResponse{
		Status: StatusErr,
		Code:   apperrors.CodeInvalidInput,
		Error:  message,
	})
}

func publicMessage(code string, err error) string {
	switch code {
	case apperrors.CodeInvalidInput:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Message != "" {
			return appErr.Message
		}
		return "invalid input"
	case apperrors.CodeNotFound:
		return "not found"
	case apperrors.CodeStoreUnavailable:
		return "store unavailable"
	case apperrors.CodePartialDelivery:
		return "message partially delivered"
	default:
		return "internal error"
	}
}

// getHTTPStatus maps error codes to HTTP status codes
func getHTTPStatus(code string) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"
	apperrors "github.com/welldanyogia/postoffice/internal/errors"
	"github.com/welldanyogia/postoffice/internal/logger"
	"github.com/welldanyogia/postoffice/internal/validator"
)

// identifier reads a query or form field and validates it. Identifiers that
// carry the row key delimiter or control characters are reported to security.
func identifier(c echo.Context, security *logger.SecurityLogger, field string, validate func(string) error) (string, error) {
	value := c.FormValue(field)
	if err := validate(value); err != nil {
		if security != nil && errors.Is(err, validator.ErrInvalidCharacter) {
			security.InvalidIdentifier(c.RealIP(), c.Request().URL.Path, field, err.Error())
		}
		return "", apperrors.InvalidInput(field, err.Error())
	}
	return value, nil
}

// pageRange reads the start and count fields of a folder page
func pageRange(c echo.Context) (int, int, error) {
	start, err := validator.ParseStart(c.FormValue("start"))
	if err != nil {
		return 0, 0, apperrors.InvalidInput("start", err.Error())
	}
	count, err := validator.ParseCount(c.FormValue("count"))
	if err != nil {
		return 0, 0, apperrors.InvalidInput("count", err.Error())
	}
	return start, count, nil
}

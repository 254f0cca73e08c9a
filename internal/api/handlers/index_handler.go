package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const indexPage = `<html><head><title>Postoffice: Threaded messaging over HTTP</title></head><body>` +
	`<h1>Welcome to Postoffice!</h1>` +
	`</body></html>`

// Index handles GET /
func Index(c echo.Context) error {
	return c.HTML(http.StatusOK, indexPage)
}

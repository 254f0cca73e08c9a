package handlers

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/postoffice/internal/api/response"
	"github.com/welldanyogia/postoffice/internal/logger"
	"github.com/welldanyogia/postoffice/internal/services"
	"github.com/welldanyogia/postoffice/internal/validator"
)

// MessagingHandler starts conversations and posts replies
type MessagingHandler struct {
	messenger services.Messenger
	security  *logger.SecurityLogger
	logger    *slog.Logger
}

// NewMessagingHandler creates a new MessagingHandler
func NewMessagingHandler(messenger services.Messenger, security *logger.SecurityLogger, logger *slog.Logger) *MessagingHandler {
	return &MessagingHandler{messenger: messenger, security: security, logger: logger}
}

func (h *MessagingHandler) parties(c echo.Context) (string, string, error) {
	from, err := identifier(c, h.security, "from", validator.ValidateOwnerID)
	if err != nil {
		return "", "", err
	}
	to, err := identifier(c, h.security, "to", validator.ValidateOwnerID)
	if err != nil {
		return "", "", err
	}
	return from, to, nil
}

// New handles /new?from&to&subject&body and answers with the discriminator
// of the new conversation
func (h *MessagingHandler) New(c echo.Context) error {
	from, to, err := h.parties(c)
	if err != nil {
		return response.Error(c, err)
	}

	discriminator, err := h.messenger.StartConversation(c.Request().Context(), from, to, c.FormValue("subject"), c.FormValue("body"))
	if err != nil {
		h.logFailure(c, err)
		return response.Error(c, err)
	}
	return response.OKWithID(c, discriminator)
}

// Reply handles /reply?from&to&subject&body&id
func (h *MessagingHandler) Reply(c echo.Context) error {
	from, to, err := h.parties(c)
	if err != nil {
		return response.Error(c, err)
	}
	discriminator, err := identifier(c, h.security, "id", validator.ValidateDiscriminator)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.messenger.Reply(c.Request().Context(), from, to, c.FormValue("subject"), c.FormValue("body"), discriminator); err != nil {
		h.logFailure(c, err)
		return response.Error(c, err)
	}
	return response.OK(c)
}

func (h *MessagingHandler) logFailure(c echo.Context, err error) {
	if h.logger != nil {
		h.logger.Error("send failed",
			slog.String("path", c.Request().URL.Path),
			slog.Any("error", err))
	}
}

package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/postoffice/internal/api/response"
	"github.com/welldanyogia/postoffice/internal/logger"
	"github.com/welldanyogia/postoffice/internal/models"
	"github.com/welldanyogia/postoffice/internal/services"
	"github.com/welldanyogia/postoffice/internal/validator"
)

// FolderHandler serves folder pages and conversations
type FolderHandler struct {
	folders  services.FolderService
	security *logger.SecurityLogger
}

// NewFolderHandler creates a new FolderHandler
func NewFolderHandler(folders services.FolderService, security *logger.SecurityLogger) *FolderHandler {
	return &FolderHandler{folders: folders, security: security}
}

func (h *FolderHandler) folderKey(c echo.Context) (models.FolderKey, error) {
	owner, err := identifier(c, h.security, "owner", validator.ValidateOwnerID)
	if err != nil {
		return models.FolderKey{}, err
	}
	folder, err := identifier(c, h.security, "folder", validator.ValidateFolderName)
	if err != nil {
		return models.FolderKey{}, err
	}
	return models.FolderKey{Owner: owner, Name: folder}, nil
}

// Page handles GET /folder?owner&folder&start&count
func (h *FolderHandler) Page(c echo.Context) error {
	key, err := h.folderKey(c)
	if err != nil {
		return response.Error(c, err)
	}
	start, count, err := pageRange(c)
	if err != nil {
		return response.Error(c, err)
	}

	folder, err := h.folders.AssemblePage(c.Request().Context(), key, start, count)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, folder)
}

// Conversation handles GET /conversation?id
func (h *FolderHandler) Conversation(c echo.Context) error {
	id := c.FormValue("id")
	owner, discriminator, ok := models.SplitConversationID(id)
	if !ok || validator.ValidateOwnerID(owner) != nil || validator.ValidateDiscriminator(discriminator) != nil {
		return response.BadRequest(c, "id must be owner:discriminator")
	}

	conversation, err := h.folders.Conversation(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Data(c, conversation)
}

// Compact handles POST /folder/compact?owner&folder
func (h *FolderHandler) Compact(c echo.Context) error {
	key, err := h.folderKey(c)
	if err != nil {
		return response.Error(c, err)
	}

	removed, err := h.folders.Compact(c.Request().Context(), key)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OKWithRemoved(c, removed)
}

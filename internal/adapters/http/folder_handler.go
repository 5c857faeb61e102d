package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// FolderHandler handles folder-related requests
type FolderHandler struct {
	folderService ports.FolderService
	logger        *logger.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService ports.FolderService, logger *logger.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

func (h *FolderHandler) ListFolders(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	folders, err := h.folderService.ListFolders(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, folders)
}

func (h *FolderHandler) GetFolder(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	folderID, err := parseID(c, entities.ErrFolderNotFound)
	if err != nil {
		return httpError(err)
	}

	folder, err := h.folderService.GetFolder(c.Request().Context(), userID, folderID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, folder)
}

func (h *FolderHandler) CreateFolder(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	var req ports.CreateFolderRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, h.logger, err)
	}

	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	folder, err := h.folderService.CreateFolder(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, folder)
}

func (h *FolderHandler) UpdateFolder(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	folderID, err := parseID(c, entities.ErrFolderNotFound)
	if err != nil {
		return httpError(err)
	}

	var req ports.UpdateFolderRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, h.logger, err)
	}

	folder, err := h.folderService.UpdateFolder(c.Request().Context(), userID, folderID, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, folder)
}

func (h *FolderHandler) DeleteFolder(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	folderID, err := parseID(c, entities.ErrFolderNotFound)
	if err != nil {
		return httpError(err)
	}

	if err := h.folderService.DeleteFolder(c.Request().Context(), userID, folderID); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Folder deleted"})
}

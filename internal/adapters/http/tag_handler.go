package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// TagHandler handles tag-related requests
type TagHandler struct {
	tagService ports.TagService
	logger     *logger.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService ports.TagService, logger *logger.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// ListTags godoc
// @Summary List tags
// @Tags tags
// @Produce json
// @Success 200 {array} entities.Tag
// @Security BearerAuth
// @Router /tags [get]
func (h *TagHandler) ListTags(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	tags, err := h.tagService.ListTags(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) GetTag(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	tagID, err := parseID(c, entities.ErrTagNotFound)
	if err != nil {
		return httpError(err)
	}

	tag, err := h.tagService.GetTag(c.Request().Context(), userID, tagID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, tag)
}

// CreateTag godoc
// @Summary Create a tag
// @Tags tags
// @Accept json
// @Produce json
// @Param request body ports.CreateTagRequest true "Tag data"
// @Success 201 {object} entities.Tag
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /tags [post]
func (h *TagHandler) CreateTag(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	var req ports.CreateTagRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, h.logger, err)
	}

	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	tag, err := h.tagService.CreateTag(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) UpdateTag(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	tagID, err := parseID(c, entities.ErrTagNotFound)
	if err != nil {
		return httpError(err)
	}

	var req ports.UpdateTagRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, h.logger, err)
	}

	tag, err := h.tagService.UpdateTag(c.Request().Context(), userID, tagID, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, tag)
}

// DeleteTag removes the tag from every task before deleting it
func (h *TagHandler) DeleteTag(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	tagID, err := parseID(c, entities.ErrTagNotFound)
	if err != nil {
		return httpError(err)
	}

	if err := h.tagService.DeleteTag(c.Request().Context(), userID, tagID); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Tag deleted successfully"})
}

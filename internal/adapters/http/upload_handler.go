package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// UploadHandler handles image upload and retrieval
type UploadHandler struct {
	uploadService ports.UploadService
	logger        *logger.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService ports.UploadService, logger *logger.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		logger:        logger,
	}
}

// Upload godoc
// @Summary Upload a task image
// @Description Stores the image and returns the URL to set as the task's image
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file (jpg, jpeg, png, gif, webp)"
// @Param taskId formData int false "Task the image belongs to"
// @Success 201 {object} ports.UploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /upload [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	req := ports.UploadRequest{UserID: userID}

	if raw := strings.TrimSpace(c.FormValue("taskId")); raw != "" {
		taskID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.logger.Warnw("Upload with malformed task id", "user_id", userID, "task_id", raw)
			return httpError(entities.ErrTaskNotFound)
		}
		req.TaskID = &taskID
	}

	header, err := c.FormFile("image")
	if err != nil {
		h.logger.WithError(err).Warnw("Upload without image field", "user_id", userID)
		return httpError(entities.Validation("No image provided"))
	}

	file, err := header.Open()
	if err != nil {
		h.logger.WithError(err).Errorw("Failed to open uploaded file", "user_id", userID)
		return httpError(err)
	}
	defer file.Close()

	req.Filename = header.Filename
	req.Size = header.Size
	req.Content = file

	response, err := h.uploadService.Upload(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, response)
}

// ServeImage godoc
// @Summary Fetch an uploaded image
// @Description Image tags cannot send headers, so the token may be passed as a query parameter
// @Tags uploads
// @Produce image/png,image/jpeg,image/gif,image/webp
// @Param filename path string true "Stored filename"
// @Param token query string false "Bearer token"
// @Success 200 {file} file
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /uploads/{filename} [get]
func (h *UploadHandler) ServeImage(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		token = BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	}

	path, err := h.uploadService.Resolve(c.Request().Context(), token, c.Param("filename"))
	if err != nil {
		return httpError(err)
	}

	return c.File(path)
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

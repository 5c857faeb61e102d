package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService ports.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register godoc
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.RegisterRequest true "Account details"
// @Success 201 {object} entities.User
// @Failure 400 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, h.logger, err)
	}

	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	user, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Log in
// @Description Exchange email and password for a bearer token valid for one hour
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.LoginRequest true "Credentials"
// @Success 200 {object} ports.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, h.logger, err)
	}

	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// UpdateName godoc
// @Summary Change display name
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.UpdateNameRequest true "New name"
// @Success 200 {object} ports.UpdateNameResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/update-name [put]
func (h *AuthHandler) UpdateName(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	var req ports.UpdateNameRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, h.logger, err)
	}

	name, err := h.authService.UpdateName(c.Request().Context(), userID, req.Name)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.UpdateNameResponse{Message: "Name updated successfully", Name: name})
}

// GetPassword godoc
// @Summary Show the stored cleartext password
// @Description Empty unless the plain password mirror is enabled
// @Tags auth
// @Produce json
// @Success 200 {object} ports.PasswordResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/password [get]
func (h *AuthHandler) GetPassword(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	plain, err := h.authService.GetPassword(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.PasswordResponse{PasswordPlain: plain})
}

// ChangePassword godoc
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} ports.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/change-password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return httpError(err)
	}

	var req ports.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, h.logger, err)
	}

	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	if err := h.authService.ChangePassword(c.Request().Context(), userID, req); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Password changed successfully"})
}

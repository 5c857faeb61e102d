package http

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tasknest/core/internal/domain/entities"
)

// UserContextKey is where the auth gate stores the caller's user id
const UserContextKey = "user"

// SetUserID attaches the authenticated user id to the request
func SetUserID(c echo.Context, userID int64) {
	c.Set(UserContextKey, userID)
}

// getUserIDFromContext returns the authenticated user id, or 0 when none was set
func getUserIDFromContext(c echo.Context) int64 {
	userID, ok := c.Get(UserContextKey).(int64)
	if !ok {
		return 0
	}
	return userID
}

// parseID reads the :id path parameter. A malformed id cannot name a row,
// so it is reported as notFound.
func parseID(c echo.Context, notFound error) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, notFound
	}
	return id, nil
}

// requireUser guards handlers mounted without the auth gate
func requireUser(c echo.Context) (int64, error) {
	userID := getUserIDFromContext(c)
	if userID <= 0 {
		return 0, entities.NewError(entities.ErrUnauthorized, "No token provided")
	}
	return userID, nil
}

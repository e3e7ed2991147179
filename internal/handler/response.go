package handler

import (
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"fleamart/internal/auth"
	apperrors "fleamart/internal/errors"
)

// respondError maps a domain error onto the wire envelope. Unknown errors
// collapse into a generic 500; the caller is expected to have logged them.
func respondError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= 500 {
		c.Logger().Error(err)
	}
	return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// failJSON writes a 4xx envelope with an explicit message.
func failJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, apperrors.ErrorResponse{Status: "fail", Message: message})
}

// authUID extracts the authenticated account uid from the JWT middleware.
func authUID(c echo.Context) (uuid.UUID, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, false
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return uuid.Nil, false
	}
	uid, err := uuid.Parse(claims.UserUID)
	if err != nil {
		return uuid.Nil, false
	}
	return uid, true
}

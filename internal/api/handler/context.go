package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospital-ms/hms-portal/internal/api/middleware"
	"github.com/hospital-ms/hms-portal/internal/core/domain"
)

// ctxUser returns the user the route guard admitted. Its absence means the
// handler was mounted without a guard, which is a wiring bug surfaced as 401.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.UserKey).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session user")
	}
	return user, nil
}

// ctxToken returns the bearer token injected by middleware.BearerToken.
func ctxToken(c echo.Context) (string, error) {
	token, _ := c.Get(middleware.TokenKey).(string)
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}
	return token, nil
}

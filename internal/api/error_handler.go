package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
)

// errorResponse is the {success:false, error} envelope shared by the portal
// and the development backend.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// errorMappings pair a domain error with the status and the public message
// it is rendered as. Order matters: the first match wins.
var errorMappings = []struct {
	targets []error
	status  int
	message string
}{
	{[]error{domain.ErrInvalidCredentials}, http.StatusUnauthorized, "invalid credentials"},
	{[]error{domain.ErrNotAuthenticated, domain.ErrTokenRevoked}, http.StatusUnauthorized, "not authenticated"},
	{[]error{domain.ErrForbidden, domain.ErrUserInactive}, http.StatusForbidden, "access forbidden"},
	{[]error{domain.ErrUserNotFound}, http.StatusNotFound, "user not found"},
	{[]error{domain.ErrUserExists}, http.StatusConflict, "user already exists"},
	{[]error{domain.ErrConnectivity, domain.ErrProtocol}, http.StatusBadGateway, "authentication service unavailable"},
}

// NewHTTPErrorHandler renders every error that escapes a handler as an
// errorResponse. Unknown errors are logged and reported as a bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, m := range errorMappings {
		for _, target := range m.targets {
			if errors.Is(err, target) {
				return m.status, m.message
			}
		}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

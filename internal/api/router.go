package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/hospital-ms/hms-portal/docs"
	"github.com/hospital-ms/hms-portal/internal/api/handler"
	"github.com/hospital-ms/hms-portal/internal/api/middleware"
	"github.com/hospital-ms/hms-portal/internal/core/domain"
	"github.com/hospital-ms/hms-portal/internal/core/ports"
	"github.com/hospital-ms/hms-portal/internal/infrastructure/http/handlers"
)

// PortalDeps carries everything the portal shell serves.
type PortalDeps struct {
	Sessions ports.SessionService
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handlers.Checker
	// Registerer receives the HTTP metrics and, when it is also a Gatherer,
	// backs /metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewPortalRouter builds the portal shell: session endpoints, the login view
// and the role dashboards behind the route guard.
func NewPortalRouter(d PortalDeps) *echo.Echo {
	e := newEcho(d.Log, "portal", d.Registerer)

	// --- Session ---
	sessionHandler := handler.NewSessionHandler(d.Sessions)
	e.GET("/login", sessionHandler.LoginView)
	e.POST("/login", sessionHandler.Login)
	e.POST("/logout", sessionHandler.Logout)
	e.GET("/session", sessionHandler.Session)
	e.POST("/session/refresh", sessionHandler.Refresh)

	// --- Guarded views ---
	viewHandler := handler.NewViewHandler()
	e.GET("/", viewHandler.Home, middleware.RequireSession(d.Sessions))
	for _, role := range domain.Roles() {
		e.GET(domain.LandingPath(role), viewHandler.Dashboard(role), middleware.RequireRole(d.Sessions, role))
	}

	registerHealth(e, "hms-portal", d.Checks)
	return e
}

// DevAPIDeps carries the development backend's dependencies.
type DevAPIDeps struct {
	Auth   ports.AuthService
	Checks map[string]handlers.Checker
	// LoginRate is the sustained login requests per second allowed per client IP.
	LoginRate  float64
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewDevAPIRouter builds the development stand-in for the backend's /auth API.
func NewDevAPIRouter(d DevAPIDeps) *echo.Echo {
	e := newEcho(d.Log, "devapi", d.Registerer)

	authHandler := handler.NewAuthHandler(d.Auth)
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login, loginRateLimiter(d.LoginRate))
	auth.POST("/refresh", authHandler.Refresh, middleware.BearerToken())
	auth.POST("/logout", authHandler.Logout, middleware.BearerToken())

	registerHealth(e, "hms-devapi", d.Checks)
	return e
}

func newEcho(log zerolog.Logger, subsystem string, reg prometheus.Registerer) *echo.Echo {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  subsystem,
		Registerer: reg,
	}))

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	return e
}

func registerHealth(e *echo.Echo, service string, checks map[string]handlers.Checker) {
	healthHandler := handlers.NewHealthHandler(service)
	healthDepsHandler := handlers.NewHealthDependenciesHandler(checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
}

func loginRateLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		perSecond = 5
	}
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStore(rate.Limit(perSecond)),
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "too many login attempts"})
		},
	})
}

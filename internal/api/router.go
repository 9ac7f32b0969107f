package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/zaplanje/price/docs"
	"github.com/zaplanje/price/internal/api/handler"
	"github.com/zaplanje/price/internal/api/middleware"
	"github.com/zaplanje/price/internal/core/ports"
	"github.com/zaplanje/price/internal/core/service"
	"github.com/zaplanje/price/internal/infrastructure/htmlhead"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Sessions middleware.Sessions
	Share    *service.ShareService
	Meta     *service.MetaService
	Shell    *htmlhead.Shell
	// Checks back readiness, keyed by dependency name.
	Checks map[string]handler.Checker
	// AuthRateLimit is the per-IP request rate allowed on /auth routes.
	AuthRateLimit float64
	Log           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("zaplanje"))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Sessions, d.Log)
	shareHandler := handler.NewShareHandler(d.Share, d.Meta, d.Shell)
	clientSession := middleware.ClientSession(d.Sessions)

	// --- Auth routes ---
	auth := e.Group("/auth", clientSession)
	auth.POST("/login", authHandler.Login, authRateLimiter(d.AuthRateLimit))
	auth.POST("/register", authHandler.Register, authRateLimiter(d.AuthRateLimit))
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/state", authHandler.State)

	admin := e.Group("/admin", clientSession, middleware.RequirePermission(ports.SessionManager.CanAdmin))
	admin.GET("/ping", authHandler.AdminPing)

	// --- Share routes ---
	e.POST("/share/:network", shareHandler.Share)
	e.POST("/meta", shareHandler.Meta)

	// --- Health checks (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func authRateLimiter(limit float64) echo.MiddlewareFunc {
	if limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(rate.Limit(limit)))
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

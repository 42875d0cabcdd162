package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/student-registry/registry-api/docs"
	"github.com/student-registry/registry-api/internal/api/handler"
	"github.com/student-registry/registry-api/internal/api/middleware"
	"github.com/student-registry/registry-api/internal/core/ports"
)

// Options carries everything the router needs. Photos and Checks are optional.
type Options struct {
	Logger         zerolog.Logger
	AuthService    ports.AuthService
	StudentService ports.StudentService
	Tokens         ports.TokenVerifier
	Cookies        handler.CookieConfig

	CORSOrigin string
	BodyLimit  string

	// Photos serves locally stored photos under /uploads when set.
	Photos handler.PhotoFiles
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handler.Check
	// Registerer receives the HTTP metrics; defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "registry",
		Registerer: registerer,
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{opts.CORSOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))
	if opts.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(opts.BodyLimit))
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(opts.AuthService, opts.Cookies)
	studentHandler := handler.NewStudentHandler(opts.StudentService)
	requireAuth := middleware.Auth(opts.Tokens)

	// --- Auth routes ---
	e.POST("/api/login", authHandler.Login)
	e.POST("/api/logout", authHandler.Logout)
	e.POST("/api/refresh", authHandler.Refresh)
	e.POST("/api/register-user", authHandler.RegisterUser)
	e.POST("/api/me", authHandler.Me, requireAuth)
	e.GET("/api/protected", authHandler.Protected, requireAuth)

	// --- Student routes ---
	e.POST("/api/register-student", studentHandler.Register)
	e.GET("/api/students", studentHandler.List)

	if opts.Photos != nil {
		e.GET("/uploads/*", handler.NewPhotoHandler(opts.Photos).Serve)
	}

	// --- Operations (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(opts.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

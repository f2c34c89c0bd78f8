package main

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/geriatria/historia-clinica/internal/config"
	"github.com/geriatria/historia-clinica/internal/domain/catalog"
	"github.com/geriatria/historia-clinica/internal/domain/history"
	"github.com/geriatria/historia-clinica/internal/domain/identity"
	"github.com/geriatria/historia-clinica/internal/domain/patient"
	"github.com/geriatria/historia-clinica/internal/platform/auth"
	"github.com/geriatria/historia-clinica/internal/platform/db"
	"github.com/geriatria/historia-clinica/internal/platform/middleware"
	"github.com/geriatria/historia-clinica/pkg/pagination"
)

// newServer wires middleware, domain services and routes. Nothing here
// touches the database until a request does.
func newServer(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	// Global middleware. Logger sits outside Recovery so a panicking
	// request still gets its access line.
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, pagination.TotalCountHeader, pagination.LinkHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(auth.JWTMiddleware(issuer))

	// Health
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.PoolHealthHandler(pool))

	api := e.Group("/api")
	tx := db.NewTransactor(pool)

	// Identity
	identitySvc := identity.NewService(identity.NewUserRepo(pool), issuer)
	identity.NewHandler(identitySvc).RegisterRoutes(api)

	// Catalogs
	resolver := catalog.NewResolver(catalog.NewRepo(pool), cfg.StrictCatalogs(), logger)
	catalog.NewHandler(resolver).RegisterRoutes(api)

	// Patients and histories
	patientSvc := patient.NewService(patient.NewRepo(pool), logger)
	historySvc := history.NewService(
		history.NewRepo(pool),
		tx,
		resolver,
		patientSvc,
		history.Validator{PhoneRegion: cfg.PhoneRegion},
		logger,
	)
	patientSvc.SetHistoryReader(historySvc)

	patient.NewHandler(patientSvc).RegisterRoutes(api)
	history.NewHandler(historySvc).RegisterRoutes(api)

	logger.Info().
		Bool("strict_catalogs", resolver.Strict()).
		Dur("token_ttl", issuer.TTL()).
		Str("body_limit", cfg.BodyLimit).
		Msg("routes registered")

	return e
}

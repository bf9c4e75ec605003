package server

import (
	"time"

	_ "watchlist-backend/docs"
	"watchlist-backend/internal/config"
	"watchlist-backend/internal/database"
	"watchlist-backend/internal/handlers"
	"watchlist-backend/internal/middleware"
	"watchlist-backend/internal/repository"
	"watchlist-backend/internal/routes"
	"watchlist-backend/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	fiberSwagger "github.com/swaggo/fiber-swagger"
)

const (
	serviceName = "watchlist-backend"
	version     = "1.0.0"
)

type Options struct {
	// Posters is nil when poster storage is disabled.
	Posters *services.MinIOService
	// AccessLog toggles the per-request access log line.
	AccessLog bool
}

// New wires repositories, services and handlers onto a fiber app.
func New(cfg *config.Config, db *database.Database, log *logrus.Logger, opts Options) *fiber.App {
	mediaRepo := repository.NewMediaRepository(db)
	userRepo := repository.NewUserRepository(db)

	tokenService := services.NewTokenService(&cfg.Auth)
	userService := services.NewUserService(userRepo, tokenService, log)
	mediaService := services.NewMediaService(mediaRepo, log)

	var uploadHandler *handlers.UploadHandler
	if opts.Posters != nil {
		if ms, ok := mediaService.(interface{ SetPosterStorage(services.PosterStorage) }); ok {
			ms.SetPosterStorage(opts.Posters)
		}
		uploadHandler = handlers.NewUploadHandler(opts.Posters, log)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Watchlist Backend API",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(log),
	})

	setupMiddleware(app, cfg.Server, opts.AccessLog)

	app.Get("/health", healthCheckHandler(db))

	// Swagger documentation
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	routes.Setup(app,
		middleware.RequireAuth(tokenService),
		handlers.NewMediaHandler(mediaService, log),
		handlers.NewAuthHandler(userService, log),
		uploadHandler,
	)

	return app
}

func setupMiddleware(app *fiber.App, cfg config.ServerConfig, accessLog bool) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	if accessLog {
		app.Use(logger.New(logger.Config{
			Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS, PATCH",
		AllowCredentials: false,
		MaxAge:           86400,
	}))
}

func healthCheckHandler(db *database.Database) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbStatus := "healthy"
		if err := db.HealthCheck(); err != nil {
			dbStatus = "unhealthy"
		}

		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   serviceName,
			"version":   version,
			"database":  dbStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

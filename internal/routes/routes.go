package routes

import (
	"watchlist-backend/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

// Setup mounts the v1 API. uploadHandler may be nil when poster storage is
// not configured.
func Setup(app *fiber.App, requireAuth fiber.Handler, mediaHandler *handlers.MediaHandler, authHandler *handlers.AuthHandler, uploadHandler *handlers.UploadHandler) {
	// API versioning
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Auth routes - public except /me
	auth := v1.Group("/auth")
	{
		auth.Post("/register", authHandler.Register)
		auth.Post("/login", authHandler.Login)
		auth.Get("/me", requireAuth, authHandler.Me)
	}

	users := v1.Group("/users", requireAuth)
	{
		users.Get("/:id", authHandler.GetUser)
	}

	// Media routes - every query is scoped to the caller
	media := v1.Group("/media", requireAuth)
	{
		media.Get("/", mediaHandler.ListMedia)
		media.Get("/stats", mediaHandler.GetStats)
		media.Get("/:id", mediaHandler.GetMedia)
		media.Post("/", mediaHandler.CreateMedia)
		media.Put("/:id", mediaHandler.UpdateMedia)
		media.Patch("/:id/status", mediaHandler.ToggleStatus)
		media.Delete("/", mediaHandler.DeleteAllMedia)
		media.Delete("/:id", mediaHandler.DeleteMedia)
	}

	if uploadHandler != nil {
		upload := v1.Group("/upload", requireAuth)
		{
			upload.Get("/presign", uploadHandler.GetPresignedURL)
		}
	}
}

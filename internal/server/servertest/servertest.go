// Package servertest builds a fully wired API over a throwaway database.
package servertest

import (
	"io"
	"testing"
	"time"

	"watchlist-backend/internal/config"
	"watchlist-backend/internal/database/dbtest"
	"watchlist-backend/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const JWTSecret = "servertest-secret-servertest-secret"

func Config() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{AllowOrigins: "*"},
		Auth: config.AuthConfig{
			JWTSecret: JWTSecret,
			TokenTTL:  time.Hour,
			Issuer:    "watchlist-test",
		},
	}
}

// New returns the API backed by an in-memory SQLite database.
func New(t testing.TB) *fiber.App {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	return server.New(Config(), dbtest.New(t), log, server.Options{})
}

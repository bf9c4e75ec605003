package middleware

import (
	"strings"

	"watchlist-backend/internal/apperror"
	"watchlist-backend/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const ownerIDKey = "ownerID"

type TokenValidator interface {
	ValidateToken(token string) (*services.TokenClaims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's id for OwnerID.
func RequireAuth(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return apperror.NewUnauthorized("Authentication required", nil)
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			return apperror.NewUnauthorized("Invalid or expired token", err)
		}

		c.Locals(ownerIDKey, claims.OwnerID)
		return c.Next()
	}
}

// OwnerID returns the authenticated caller. It is uuid.Nil outside RequireAuth.
func OwnerID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(ownerIDKey).(uuid.UUID)
	return id
}

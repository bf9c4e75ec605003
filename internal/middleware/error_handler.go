package middleware

import (
	"errors"

	"watchlist-backend/internal/apperror"
	"watchlist-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders handler errors as response envelopes. Anything that is
// not an application or fiber error becomes a generic 500; the cause is only
// logged.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		fields := logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}

		if appErr, ok := apperror.As(err); ok {
			code := apperror.ToHTTPStatus(err)
			log.WithError(err).WithFields(fields).WithField("status", code).Debug("Request rejected")

			if errors.Is(err, apperror.ErrValidation) {
				return utils.ValidationErrorResponse(c, appErr.Message, appErr.Fields)
			}
			return utils.ErrorResponse(c, code, appErr.Message)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return utils.ErrorResponse(c, fiberErr.Code, fiberErr.Message)
		}

		log.WithError(err).WithFields(fields).Error("Request error")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

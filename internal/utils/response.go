package utils

import (
	"watchlist-backend/internal/apperror"
	"watchlist-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// StandardResponse represents the standard API response format
type StandardResponse struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message,omitempty"`
	Data       interface{}           `json:"data,omitempty"`
	Errors     []apperror.FieldError `json:"errors,omitempty"`
	Pagination *models.Pagination    `json:"pagination,omitempty"`
}

// SuccessResponse sends a success response
func SuccessResponse(c *fiber.Ctx, code int, message string, data interface{}) error {
	return c.Status(code).JSON(StandardResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// PaginatedResponse sends a list response together with its pagination envelope
func PaginatedResponse(c *fiber.Ctx, data interface{}, pagination models.Pagination) error {
	return c.Status(fiber.StatusOK).JSON(StandardResponse{
		Success:    true,
		Data:       data,
		Pagination: &pagination,
	})
}

// ErrorResponse sends an error response
func ErrorResponse(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(StandardResponse{
		Success: false,
		Message: message,
	})
}

// ValidationErrorResponse sends a 400 listing every rejected field
func ValidationErrorResponse(c *fiber.Ctx, message string, fields []apperror.FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(StandardResponse{
		Success: false,
		Message: message,
		Errors:  fields,
	})
}

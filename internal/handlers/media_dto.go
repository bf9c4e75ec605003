package handlers

import (
	"watchlist-backend/internal/apperror"
	"watchlist-backend/internal/models"
	"watchlist-backend/internal/services"
)

// Response shapes below only document the envelope for swagger.

type MediaItemResponse struct {
	Success bool             `json:"success" example:"true"`
	Message string           `json:"message,omitempty"`
	Data    models.MediaItem `json:"data"`
}

type MediaListResponse struct {
	Success    bool               `json:"success" example:"true"`
	Data       []models.MediaItem `json:"data"`
	Pagination models.Pagination  `json:"pagination"`
}

type MediaStatsResponse struct {
	Success bool              `json:"success" example:"true"`
	Data    models.MediaStats `json:"data"`
}

type DeleteAllResult struct {
	DeletedCount int64 `json:"deletedCount" example:"12"`
}

type DeleteAllResponse struct {
	Success bool            `json:"success" example:"true"`
	Message string          `json:"message" example:"12 items deleted"`
	Data    DeleteAllResult `json:"data"`
}

type AuthResponse struct {
	Success bool                `json:"success" example:"true"`
	Message string              `json:"message,omitempty"`
	Data    services.AuthResult `json:"data"`
}

type UserResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    models.User `json:"data"`
}

type PresignResponse struct {
	Success bool                     `json:"success" example:"true"`
	Message string                   `json:"message,omitempty"`
	Data    services.PresignedUpload `json:"data"`
}

type ErrorResponse struct {
	Success bool                  `json:"success" example:"false"`
	Message string                `json:"message" example:"Media item not found"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
}

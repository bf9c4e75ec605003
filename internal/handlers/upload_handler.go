package handlers

import (
	"context"
	"path"
	"strings"

	"watchlist-backend/internal/apperror"
	"watchlist-backend/internal/middleware"
	"watchlist-backend/internal/services"
	"watchlist-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var posterExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

type PosterUploader interface {
	GeneratePresignedURL(ctx context.Context, ownerID uuid.UUID, filename string) (*services.PresignedUpload, error)
}

type UploadHandler struct {
	uploader PosterUploader
	logger   *logrus.Logger
}

func NewUploadHandler(uploader PosterUploader, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		logger:   logger,
	}
}

// GetPresignedURL godoc
// @Summary Get presigned URL for a poster upload
// @Description Generate a presigned PUT URL in the poster bucket plus the public URL to store on the item
// @Tags upload
// @Produce json
// @Security BearerAuth
// @Param filename query string true "Poster filename (jpg, jpeg, png, webp, gif)"
// @Success 200 {object} PresignResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /upload/presign [get]
func (h *UploadHandler) GetPresignedURL(c *fiber.Ctx) error {
	filename := strings.TrimSpace(c.Query("filename"))
	if filename == "" {
		return apperror.NewValidation([]apperror.FieldError{{Field: "filename", Message: "filename is required"}})
	}
	if !posterExtensions[strings.ToLower(path.Ext(filename))] {
		return apperror.NewValidation([]apperror.FieldError{{
			Field:   "filename",
			Message: "Poster must be a jpg, jpeg, png, webp or gif image",
			Value:   filename,
		}})
	}

	upload, err := h.uploader.GeneratePresignedURL(c.UserContext(), middleware.OwnerID(c), filename)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate presigned URL")
		return err
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Presigned URL generated successfully", upload)
}

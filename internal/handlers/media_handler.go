package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"watchlist-backend/internal/apperror"
	"watchlist-backend/internal/middleware"
	"watchlist-backend/internal/services"
	"watchlist-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type MediaHandler struct {
	service services.MediaService
	logger  *logrus.Logger
}

func NewMediaHandler(service services.MediaService, logger *logrus.Logger) *MediaHandler {
	return &MediaHandler{
		service: service,
		logger:  logger,
	}
}

// parseBody decodes the request body. A JSON value of the wrong type is
// reported against its field like any other validation failure.
func parseBody(c *fiber.Ctx, out interface{}) error {
	err := c.BodyParser(out)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperror.NewValidation([]apperror.FieldError{{
			Field:   typeErr.Field,
			Message: services.FieldMessage(typeErr.Field),
		}})
	}
	return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
}

// mediaID parses the :id path parameter. A malformed id is reported the same
// way as a missing item.
func mediaID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.NewNotFound("Media item")
	}
	return id, nil
}

// ListMedia godoc
// @Summary List watchlist items
// @Description List the caller's items with search, filters, sorting and pagination
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive title substring"
// @Param type query string false "movie or show" Enums(movie, show)
// @Param genre query string false "Genre"
// @Param status query string false "Watch status" Enums(watched, unwatched, watching)
// @Param sortBy query string false "Sort field" Enums(title, createdAt, updatedAt, rating, releaseYear) default(createdAt)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (1-100)" default(10)
// @Success 200 {object} MediaListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /media [get]
func (h *MediaHandler) ListMedia(c *fiber.Ctx) error {
	var params services.ListMediaParams
	if err := c.QueryParser(&params); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}

	items, pagination, err := h.service.ListMedia(c.UserContext(), middleware.OwnerID(c), params)
	if err != nil {
		return err
	}

	return utils.PaginatedResponse(c, items, pagination)
}

// GetStats godoc
// @Summary Watchlist statistics
// @Description Aggregate counts and average rating over the caller's items
// @Tags media
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MediaStatsResponse
// @Failure 401 {object} ErrorResponse
// @Router /media/stats [get]
func (h *MediaHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.service.GetStats(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "", stats)
}

// GetMedia godoc
// @Summary Get a watchlist item
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media item ID"
// @Success 200 {object} MediaItemResponse
// @Failure 404 {object} ErrorResponse
// @Router /media/{id} [get]
func (h *MediaHandler) GetMedia(c *fiber.Ctx) error {
	id, err := mediaID(c)
	if err != nil {
		return err
	}

	item, err := h.service.GetMedia(c.UserContext(), middleware.OwnerID(c), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "", item)
}

// CreateMedia godoc
// @Summary Add a watchlist item
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body services.CreateMediaInput true "Item to add"
// @Success 201 {object} MediaItemResponse
// @Failure 400 {object} ErrorResponse
// @Router /media [post]
func (h *MediaHandler) CreateMedia(c *fiber.Ctx) error {
	var input services.CreateMediaInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	item, err := h.service.CreateMedia(c.UserContext(), middleware.OwnerID(c), input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "Item added to watchlist", item)
}

// UpdateMedia godoc
// @Summary Update a watchlist item
// @Description Partial update; omitted fields keep their value
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media item ID"
// @Param item body services.UpdateMediaInput true "Fields to change"
// @Success 200 {object} MediaItemResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /media/{id} [put]
func (h *MediaHandler) UpdateMedia(c *fiber.Ctx) error {
	id, err := mediaID(c)
	if err != nil {
		return err
	}

	var input services.UpdateMediaInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	item, err := h.service.UpdateMedia(c.UserContext(), middleware.OwnerID(c), id, input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Item updated", item)
}

// ToggleStatus godoc
// @Summary Toggle watched status
// @Description watched becomes unwatched; unwatched and watching become watched
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media item ID"
// @Success 200 {object} MediaItemResponse
// @Failure 404 {object} ErrorResponse
// @Router /media/{id}/status [patch]
func (h *MediaHandler) ToggleStatus(c *fiber.Ctx) error {
	id, err := mediaID(c)
	if err != nil {
		return err
	}

	item, err := h.service.ToggleStatus(c.UserContext(), middleware.OwnerID(c), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fmt.Sprintf("Marked as %s", item.Status), item)
}

// DeleteMedia godoc
// @Summary Delete a watchlist item
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media item ID"
// @Success 200 {object} utils.StandardResponse
// @Failure 404 {object} ErrorResponse
// @Router /media/{id} [delete]
func (h *MediaHandler) DeleteMedia(c *fiber.Ctx) error {
	id, err := mediaID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteMedia(c.UserContext(), middleware.OwnerID(c), id); err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Item removed from watchlist", nil)
}

// DeleteAllMedia godoc
// @Summary Clear the watchlist
// @Description Delete every item owned by the caller
// @Tags media
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DeleteAllResponse
// @Router /media [delete]
func (h *MediaHandler) DeleteAllMedia(c *fiber.Ctx) error {
	deleted, err := h.service.DeleteAllMedia(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fmt.Sprintf("%d items deleted", deleted), DeleteAllResult{DeletedCount: deleted})
}

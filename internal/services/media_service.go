package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"watchlist-backend/internal/apperror"
	"watchlist-backend/internal/models"
	"watchlist-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const duplicateMediaMessage = "You already have this item in your watchlist"

type CreateMediaInput struct {
	Title       string             `json:"title" validate:"required,max=200" example:"Dune"`
	Type        models.MediaType   `json:"type" validate:"required,oneof=movie show" example:"movie"`
	Genre       models.Genre       `json:"genre" validate:"required,genre" example:"Sci-Fi"`
	Status      models.WatchStatus `json:"status" validate:"omitempty,oneof=watched unwatched watching" example:"unwatched"`
	Rating      *float64           `json:"rating" validate:"omitnil,min=1,max=10" example:"8"`
	Notes       string             `json:"notes" validate:"max=1000"`
	ReleaseYear *int               `json:"releaseYear" validate:"omitnil,min=1900,releaseyear" example:"2021"`
	Poster      string             `json:"poster" validate:"posterurl"`
	ImdbID      string             `json:"imdbId" example:"tt1160419"`
}

// UpdateMediaInput is a partial patch; nil fields are left untouched.
// Rating and release year sent as JSON null are cleared.
type UpdateMediaInput struct {
	Title       *string             `json:"title" validate:"omitnil,min=1,max=200"`
	Type        *models.MediaType   `json:"type" validate:"omitnil,oneof=movie show"`
	Genre       *models.Genre       `json:"genre" validate:"omitnil,genre"`
	Status      *models.WatchStatus `json:"status" validate:"omitnil,oneof=watched unwatched watching"`
	Rating      *float64            `json:"rating" validate:"omitnil,min=1,max=10"`
	Notes       *string             `json:"notes" validate:"omitnil,max=1000"`
	ReleaseYear *int                `json:"releaseYear" validate:"omitnil,min=1900,releaseyear"`
	Poster      *string             `json:"poster" validate:"omitnil,posterurl"`
	ImdbID      *string             `json:"imdbId"`

	ClearRating      bool `json:"-"`
	ClearReleaseYear bool `json:"-"`
}

func (in *UpdateMediaInput) UnmarshalJSON(data []byte) error {
	type plain UpdateMediaInput
	if err := json.Unmarshal(data, (*plain)(in)); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	in.ClearRating = isJSONNull(raw["rating"])
	in.ClearReleaseYear = isJSONNull(raw["releaseYear"])
	return nil
}

func isJSONNull(v json.RawMessage) bool {
	return v != nil && string(bytes.TrimSpace(v)) == "null"
}

// PosterStorage removes poster objects that this deployment hosts.
type PosterStorage interface {
	OwnsURL(url string) bool
	DeleteFile(ctx context.Context, objectURL string) error
}

type MediaService interface {
	ListMedia(ctx context.Context, ownerID uuid.UUID, params ListMediaParams) ([]models.MediaItem, models.Pagination, error)
	GetStats(ctx context.Context, ownerID uuid.UUID) (*models.MediaStats, error)
	GetMedia(ctx context.Context, ownerID, id uuid.UUID) (*models.MediaItem, error)
	CreateMedia(ctx context.Context, ownerID uuid.UUID, input CreateMediaInput) (*models.MediaItem, error)
	UpdateMedia(ctx context.Context, ownerID, id uuid.UUID, input UpdateMediaInput) (*models.MediaItem, error)
	ToggleStatus(ctx context.Context, ownerID, id uuid.UUID) (*models.MediaItem, error)
	DeleteMedia(ctx context.Context, ownerID, id uuid.UUID) error
	DeleteAllMedia(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

type mediaService struct {
	repo    repository.MediaRepository
	logger  *logrus.Logger
	posters PosterStorage
}

func NewMediaService(repo repository.MediaRepository, logger *logrus.Logger) MediaService {
	return &mediaService{
		repo:   repo,
		logger: logger,
	}
}

func (s *mediaService) SetPosterStorage(posters PosterStorage) {
	s.posters = posters
}

func (s *mediaService) ListMedia(ctx context.Context, ownerID uuid.UUID, params ListMediaParams) ([]models.MediaItem, models.Pagination, error) {
	query, err := BuildMediaQuery(params)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	items, total, err := s.repo.ForOwner(ownerID).FindAll(ctx, query)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to list media items: %w", err)
	}

	return items, models.NewPagination(query.Page, query.Limit, total), nil
}

func (s *mediaService) GetStats(ctx context.Context, ownerID uuid.UUID) (*models.MediaStats, error) {
	stats, err := s.repo.ForOwner(ownerID).Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate media stats: %w", err)
	}
	return stats, nil
}

func (s *mediaService) GetMedia(ctx context.Context, ownerID, id uuid.UUID) (*models.MediaItem, error) {
	item, err := s.repo.ForOwner(ownerID).FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return item, nil
}

func (s *mediaService) CreateMedia(ctx context.Context, ownerID uuid.UUID, input CreateMediaInput) (*models.MediaItem, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.ImdbID = strings.TrimSpace(input.ImdbID)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	repo := s.repo.ForOwner(ownerID)

	exists, err := repo.ExistsByTitleAndType(ctx, input.Title, input.Type, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing media item: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate(duplicateMediaMessage)
	}

	status := input.Status
	if status == "" {
		status = models.StatusUnwatched
	}

	item := &models.MediaItem{
		Title:       input.Title,
		Type:        input.Type,
		Genre:       input.Genre,
		Status:      status,
		Rating:      input.Rating,
		Notes:       input.Notes,
		ReleaseYear: input.ReleaseYear,
		Poster:      input.Poster,
		ImdbID:      input.ImdbID,
	}

	if err := repo.Create(ctx, item); err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"media_id": item.ID,
		"type":     item.Type,
	}).Info("Media item created")

	return item, nil
}

func (s *mediaService) UpdateMedia(ctx context.Context, ownerID, id uuid.UUID, input UpdateMediaInput) (*models.MediaItem, error) {
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		input.Title = &trimmed
	}
	if input.ImdbID != nil {
		trimmed := strings.TrimSpace(*input.ImdbID)
		input.ImdbID = &trimmed
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	repo := s.repo.ForOwner(ownerID)

	item, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if input.Title != nil || input.Type != nil {
		title, mediaType := item.Title, item.Type
		if input.Title != nil {
			title = *input.Title
		}
		if input.Type != nil {
			mediaType = *input.Type
		}

		exists, err := repo.ExistsByTitleAndType(ctx, title, mediaType, item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing media item: %w", err)
		}
		if exists {
			return nil, apperror.NewDuplicate(duplicateMediaMessage)
		}
	}

	oldPoster := item.Poster
	applyUpdate(item, input)

	if err := repo.Update(ctx, item); err != nil {
		return nil, mapRepoError(err)
	}

	if oldPoster != item.Poster {
		s.removePoster(ctx, oldPoster)
	}

	return item, nil
}

func applyUpdate(item *models.MediaItem, input UpdateMediaInput) {
	if input.Title != nil {
		item.Title = *input.Title
	}
	if input.Type != nil {
		item.Type = *input.Type
	}
	if input.Genre != nil {
		item.Genre = *input.Genre
	}
	if input.Status != nil {
		item.Status = *input.Status
	}
	if input.Rating != nil {
		item.Rating = input.Rating
	} else if input.ClearRating {
		item.Rating = nil
	}
	if input.Notes != nil {
		item.Notes = *input.Notes
	}
	if input.ReleaseYear != nil {
		item.ReleaseYear = input.ReleaseYear
	} else if input.ClearReleaseYear {
		item.ReleaseYear = nil
	}
	if input.Poster != nil {
		item.Poster = *input.Poster
	}
	if input.ImdbID != nil {
		item.ImdbID = *input.ImdbID
	}
}

func (s *mediaService) ToggleStatus(ctx context.Context, ownerID, id uuid.UUID) (*models.MediaItem, error) {
	repo := s.repo.ForOwner(ownerID)

	item, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	item.Status = item.Status.Toggled()
	if err := repo.Update(ctx, item); err != nil {
		return nil, mapRepoError(err)
	}

	return item, nil
}

func (s *mediaService) DeleteMedia(ctx context.Context, ownerID, id uuid.UUID) error {
	repo := s.repo.ForOwner(ownerID)

	item, err := repo.FindByID(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}

	s.removePoster(ctx, item.Poster)
	return nil
}

func (s *mediaService) DeleteAllMedia(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	deleted, err := s.repo.ForOwner(ownerID).DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete media items: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"deleted":  deleted,
	}).Info("Media items deleted")

	return deleted, nil
}

// removePoster drops a poster object we host. Failures are logged only; the
// media row is already gone or updated.
func (s *mediaService) removePoster(ctx context.Context, posterURL string) {
	if s.posters == nil || posterURL == "" || !s.posters.OwnsURL(posterURL) {
		return
	}
	if err := s.posters.DeleteFile(ctx, posterURL); err != nil {
		s.logger.WithError(err).WithField("poster", posterURL).Warn("Failed to delete poster from MinIO")
	}
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NewNotFound("Media item")
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.NewDuplicate(duplicateMediaMessage)
	}
	return err
}

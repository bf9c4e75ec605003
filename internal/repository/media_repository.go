package repository

import (
	"context"
	"strings"
	"time"

	"watchlist-backend/internal/database"
	"watchlist-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaRepository hands out owner-scoped views of the media collection.
// There is no unscoped read or write path.
type MediaRepository interface {
	ForOwner(ownerID uuid.UUID) OwnedMediaRepository
}

// OwnedMediaRepository performs every operation under a fixed owner predicate.
type OwnedMediaRepository interface {
	OwnerID() uuid.UUID

	Create(ctx context.Context, item *models.MediaItem) error
	Update(ctx context.Context, item *models.MediaItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MediaItem, error)
	FindAll(ctx context.Context, query models.MediaQuery) ([]models.MediaItem, int64, error)
	ExistsByTitleAndType(ctx context.Context, title string, mediaType models.MediaType, excludeID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)

	Stats(ctx context.Context) (*models.MediaStats, error)
}

type mediaRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewMediaRepository(db *database.Database) MediaRepository {
	return &mediaRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *mediaRepository) ForOwner(ownerID uuid.UUID) OwnedMediaRepository {
	return &ownedMediaRepository{
		db:      r.db,
		timeout: r.timeout,
		ownerID: ownerID,
	}
}

type ownedMediaRepository struct {
	db      *database.Database
	timeout time.Duration
	ownerID uuid.UUID
}

func (r *ownedMediaRepository) OwnerID() uuid.UUID {
	return r.ownerID
}

func (r *ownedMediaRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *ownedMediaRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.MediaItem{}).Where("owner_id = ?", r.ownerID)
}

func (r *ownedMediaRepository) Create(ctx context.Context, item *models.MediaItem) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.OwnerID = r.ownerID

	return translate(r.db.WithContext(ctx).Create(item).Error)
}

// Update writes every mutable column of item. Rows owned by someone else are
// reported as ErrNotFound.
func (r *ownedMediaRepository) Update(ctx context.Context, item *models.MediaItem) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if item.OwnerID != r.ownerID {
		return ErrNotFound
	}
	item.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(item).
		Where("owner_id = ?", r.ownerID).
		Select("*").
		Omit("ID", "OwnerID", "CreatedAt").
		Updates(item)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ownedMediaRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var item models.MediaItem
	if err := r.scoped(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *ownedMediaRepository) FindAll(ctx context.Context, query models.MediaQuery) ([]models.MediaItem, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int64
	if err := r.filtered(ctx, query).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := query.SortBy.Column()
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if query.SortDesc {
		direction = "DESC"
	}

	items := make([]models.MediaItem, 0, query.Limit)
	err := r.filtered(ctx, query).
		Order(column + " " + direction).
		Order("id " + direction).
		Offset(query.Offset()).
		Limit(query.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *ownedMediaRepository) filtered(ctx context.Context, query models.MediaQuery) *gorm.DB {
	tx := r.scoped(ctx)

	if query.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(query.Search)) + "%"
		tx = tx.Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern)
	}
	if query.Type != "" {
		tx = tx.Where("type = ?", query.Type)
	}
	if query.Genre != "" {
		tx = tx.Where("genre = ?", query.Genre)
	}
	if query.Status != "" {
		tx = tx.Where("status = ?", query.Status)
	}
	return tx
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *ownedMediaRepository) ExistsByTitleAndType(ctx context.Context, title string, mediaType models.MediaType, excludeID uuid.UUID) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx := r.scoped(ctx).Where("title = ? AND type = ?", title, mediaType)
	if excludeID != uuid.Nil {
		tx = tx.Where("id <> ?", excludeID)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ownedMediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", r.ownerID, id).
		Delete(&models.MediaItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ownedMediaRepository) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).
		Where("owner_id = ?", r.ownerID).
		Delete(&models.MediaItem{})
	return result.RowsAffected, result.Error
}

// Stats reduces the owner's rows in a single aggregate query. AVG skips
// unrated rows and COALESCE turns an empty set into 0.
func (r *ownedMediaRepository) Stats(ctx context.Context) (*models.MediaStats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var stats models.MediaStats
	err := r.scoped(ctx).
		Select(`COUNT(*) AS total_items,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS watched_items,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS unwatched_items,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS watching_items,
			COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0) AS movies,
			COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0) AS shows,
			COALESCE(AVG(rating), 0) AS average_rating`,
			models.StatusWatched, models.StatusUnwatched, models.StatusWatching,
			models.MediaTypeMovie, models.MediaTypeShow).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

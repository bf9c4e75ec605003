package models

import (
	"time"

	"github.com/google/uuid"
)

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeShow  MediaType = "show"
)

func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeShow
}

type WatchStatus string

const (
	StatusWatched   WatchStatus = "watched"
	StatusUnwatched WatchStatus = "unwatched"
	StatusWatching  WatchStatus = "watching"
)

func (s WatchStatus) Valid() bool {
	return s == StatusWatched || s == StatusUnwatched || s == StatusWatching
}

// Toggled returns the status reached by the watch toggle. Only watched flips
// back to unwatched; unwatched and watching both become watched.
func (s WatchStatus) Toggled() WatchStatus {
	if s == StatusWatched {
		return StatusUnwatched
	}
	return StatusWatched
}

type MediaItem struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id" example:"7b0b7c1e-8f5e-4b57-9a4e-3b9f1f0a2c11"`
	OwnerID     uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_media_owner_title_type,priority:1;index:idx_media_owner_created,priority:1" json:"ownerId"`
	Title       string      `gorm:"size:200;not null;uniqueIndex:idx_media_owner_title_type,priority:2" json:"title" example:"Dune"`
	Type        MediaType   `gorm:"size:10;not null;uniqueIndex:idx_media_owner_title_type,priority:3" json:"type" example:"movie"`
	Genre       Genre       `gorm:"size:20;not null;index" json:"genre" example:"Sci-Fi"`
	Status      WatchStatus `gorm:"size:10;not null;default:unwatched;index" json:"status" example:"unwatched"`
	Rating      *float64    `json:"rating" example:"8.5"`
	Notes       string      `gorm:"size:1000" json:"notes"`
	ReleaseYear *int        `json:"releaseYear,omitempty" example:"2021"`
	Poster      string      `json:"poster"`
	ImdbID      string      `json:"imdbId"`
	CreatedAt   time.Time   `gorm:"index:idx_media_owner_created,priority:2" json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (MediaItem) TableName() string {
	return "media_items"
}

// MediaStats is derived per owner on demand and never stored.
type MediaStats struct {
	TotalItems     int64   `json:"totalItems" example:"5"`
	WatchedItems   int64   `json:"watchedItems" example:"3"`
	UnwatchedItems int64   `json:"unwatchedItems" example:"2"`
	WatchingItems  int64   `json:"watchingItems" example:"0"`
	Movies         int64   `json:"movies" example:"4"`
	Shows          int64   `json:"shows" example:"1"`
	AverageRating  float64 `json:"averageRating" example:"7.67"`
}

type SortField string

const (
	SortByTitle       SortField = "title"
	SortByCreatedAt   SortField = "createdAt"
	SortByUpdatedAt   SortField = "updatedAt"
	SortByRating      SortField = "rating"
	SortByReleaseYear SortField = "releaseYear"
)

// Column returns the storage column backing the sort field.
func (f SortField) Column() (string, bool) {
	switch f {
	case SortByTitle:
		return "title", true
	case SortByCreatedAt:
		return "created_at", true
	case SortByUpdatedAt:
		return "updated_at", true
	case SortByRating:
		return "rating", true
	case SortByReleaseYear:
		return "release_year", true
	}
	return "", false
}

// MediaQuery is a validated list request. Owner scoping is applied by the
// repository, never carried here.
type MediaQuery struct {
	Search   string
	Type     MediaType
	Genre    Genre
	Status   WatchStatus
	SortBy   SortField
	SortDesc bool
	Page     int
	Limit    int
}

func (q MediaQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Pagination is the envelope returned alongside a page of items.
type Pagination struct {
	CurrentPage  int   `json:"currentPage" example:"3"`
	TotalPages   int   `json:"totalPages" example:"3"`
	TotalItems   int64 `json:"totalItems" example:"25"`
	ItemsPerPage int   `json:"itemsPerPage" example:"10"`
	HasNextPage  bool  `json:"hasNextPage" example:"false"`
	HasPrevPage  bool  `json:"hasPrevPage" example:"true"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

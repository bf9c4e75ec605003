package services

import (
	"math"
	"strconv"
	"strings"

	"watchlist-backend/internal/apperror"
	"watchlist-backend/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListMediaParams carries the raw list parameters as received on the query
// string. Empty strings mean "not supplied".
type ListMediaParams struct {
	Search    string `query:"search" json:"search"`
	Type      string `query:"type" json:"type" validate:"omitempty,oneof=movie show"`
	Genre     string `query:"genre" json:"genre" validate:"omitempty,genre"`
	Status    string `query:"status" json:"status" validate:"omitempty,oneof=watched unwatched watching"`
	SortBy    string `query:"sortBy" json:"sortBy" validate:"omitempty,sortfield"`
	SortOrder string `query:"sortOrder" json:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page      string `query:"page" json:"page" validate:"omitempty,intrange=1"`
	Limit     string `query:"limit" json:"limit" validate:"omitempty,intrange=1 100"`
}

// BuildMediaQuery validates params and applies defaults. Every malformed value
// is reported; nothing partial is returned.
func BuildMediaQuery(params ListMediaParams) (models.MediaQuery, error) {
	if err := validateStruct(params); err != nil {
		return models.MediaQuery{}, err
	}

	query := models.MediaQuery{
		Search:   strings.TrimSpace(params.Search),
		Type:     models.MediaType(params.Type),
		Genre:    models.Genre(params.Genre),
		Status:   models.WatchStatus(params.Status),
		SortBy:   models.SortByCreatedAt,
		SortDesc: params.SortOrder != "asc",
		Page:     DefaultPage,
		Limit:    DefaultLimit,
	}
	if params.SortBy != "" {
		query.SortBy = models.SortField(params.SortBy)
	}
	if params.Limit != "" {
		query.Limit, _ = strconv.Atoi(params.Limit)
	}
	if params.Page != "" {
		query.Page, _ = strconv.Atoi(params.Page)
	}

	// The row offset has to fit in an int.
	if query.Page-1 > math.MaxInt/query.Limit {
		return models.MediaQuery{}, apperror.NewValidation([]apperror.FieldError{{
			Field:   "page",
			Message: "Page is out of range",
			Value:   params.Page,
		}})
	}

	return query, nil
}

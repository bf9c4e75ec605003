package client

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"watchlist-backend/internal/models"
)

// Filters are the list parameters. Zero values are left to server defaults.
type Filters struct {
	Search    string
	Type      models.MediaType
	Genre     models.Genre
	Status    models.WatchStatus
	SortBy    models.SortField
	SortOrder string
	Page      int
	Limit     int
}

func (f Filters) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("search", f.Search)
	set("type", string(f.Type))
	set("genre", string(f.Genre))
	set("status", string(f.Status))
	set("sortBy", string(f.SortBy))
	set("sortOrder", f.SortOrder)
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

type CreateInput struct {
	Title       string             `json:"title"`
	Type        models.MediaType   `json:"type"`
	Genre       models.Genre       `json:"genre"`
	Status      models.WatchStatus `json:"status,omitempty"`
	Rating      *float64           `json:"rating,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	ReleaseYear *int               `json:"releaseYear,omitempty"`
	Poster      string             `json:"poster,omitempty"`
	ImdbID      string             `json:"imdbId,omitempty"`
}

// UpdateInput only sends the fields that are set. ClearRating and
// ClearReleaseYear send an explicit null, which unsets the stored value.
type UpdateInput struct {
	Title       *string             `json:"title,omitempty"`
	Type        *models.MediaType   `json:"type,omitempty"`
	Genre       *models.Genre       `json:"genre,omitempty"`
	Status      *models.WatchStatus `json:"status,omitempty"`
	Rating      *float64            `json:"rating,omitempty"`
	Notes       *string             `json:"notes,omitempty"`
	ReleaseYear *int                `json:"releaseYear,omitempty"`
	Poster      *string             `json:"poster,omitempty"`
	ImdbID      *string             `json:"imdbId,omitempty"`

	ClearRating      bool `json:"-"`
	ClearReleaseYear bool `json:"-"`
}

func (in UpdateInput) MarshalJSON() ([]byte, error) {
	type plain UpdateInput
	body, err := json.Marshal(plain(in))
	if err != nil || (!in.ClearRating && !in.ClearReleaseYear) {
		return body, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if in.ClearRating && in.Rating == nil {
		fields["rating"] = json.RawMessage("null")
	}
	if in.ClearReleaseYear && in.ReleaseYear == nil {
		fields["releaseYear"] = json.RawMessage("null")
	}
	return json.Marshal(fields)
}

type Session struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type PresignedUpload struct {
	PresignedURL string    `json:"presigned_url"`
	PublicURL    string    `json:"public_url"`
	ObjectKey    string    `json:"object_key"`
	ExpiresAt    time.Time `json:"expires_at"`
}

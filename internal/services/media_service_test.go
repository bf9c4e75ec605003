package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"watchlist-backend/internal/apperror"
	"watchlist-backend/internal/database/dbtest"
	"watchlist-backend/internal/models"
	"watchlist-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakePosters struct {
	prefix  string
	deleted []string
	err     error
}

func (f *fakePosters) OwnsURL(url string) bool { return strings.HasPrefix(url, f.prefix) }

func (f *fakePosters) DeleteFile(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return f.err
}

func newMediaService(t *testing.T) (*mediaService, *fakePosters) {
	t.Helper()
	svc := NewMediaService(repository.NewMediaRepository(dbtest.New(t)), quietLogger()).(*mediaService)
	posters := &fakePosters{prefix: "http://cdn.local/posters/"}
	svc.SetPosterStorage(posters)
	return svc, posters
}

func validCreate(title string) CreateMediaInput {
	return CreateMediaInput{Title: title, Type: models.MediaTypeMovie, Genre: models.GenreSciFi}
}

func TestCreateMediaDefaultsAndTrims(t *testing.T) {
	svc, _ := newMediaService(t)
	owner := uuid.New()

	item, err := svc.CreateMedia(context.Background(), owner, CreateMediaInput{
		Title:  "  Dune  ",
		Type:   models.MediaTypeMovie,
		Genre:  models.GenreSciFi,
		ImdbID: " tt1160419 ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Dune", item.Title)
	assert.Equal(t, "tt1160419", item.ImdbID)
	assert.Equal(t, models.StatusUnwatched, item.Status)
	assert.Equal(t, owner, item.OwnerID)
	assert.Nil(t, item.Rating)
	assert.NotEqual(t, uuid.Nil, item.ID)
}

func TestCreateMediaValidation(t *testing.T) {
	svc, _ := newMediaService(t)

	_, err := svc.CreateMedia(context.Background(), uuid.New(), CreateMediaInput{
		Title:       "",
		Type:        "podcast",
		Genre:       "Polka",
		Status:      "paused",
		Rating:      ptr(11.0),
		Notes:       strings.Repeat("x", 1001),
		ReleaseYear: ptr(1899),
		Poster:      "not a url",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	appErr, ok := apperror.As(err)
	require.True(t, ok)

	fields := map[string]string{}
	for _, f := range appErr.Fields {
		fields[f.Field] = f.Message
	}
	for _, name := range []string{"title", "type", "genre", "status", "rating", "notes", "releaseYear", "poster"} {
		assert.Contains(t, fields, name)
	}
	assert.Equal(t, "Rating must be between 1 and 10", fields["rating"])
}

func TestCreateMediaReleaseYearUpperBound(t *testing.T) {
	svc, _ := newMediaService(t)

	input := validCreate("Far Future")
	input.ReleaseYear = ptr(3000)
	_, err := svc.CreateMedia(context.Background(), uuid.New(), input)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreateMediaDuplicate(t *testing.T) {
	svc, _ := newMediaService(t)
	ctx := context.Background()
	owner := uuid.New()

	_, err := svc.CreateMedia(ctx, owner, validCreate("Dune"))
	require.NoError(t, err)

	_, err = svc.CreateMedia(ctx, owner, validCreate("Dune"))
	require.ErrorIs(t, err, apperror.ErrDuplicate)
	assert.Equal(t, "You already have this item in your watchlist", appErrMessage(err))

	// Other owners and other types are unaffected.
	_, err = svc.CreateMedia(ctx, uuid.New(), validCreate("Dune"))
	assert.NoError(t, err)

	show := validCreate("Dune")
	show.Type = models.MediaTypeShow
	_, err = svc.CreateMedia(ctx, owner, show)
	assert.NoError(t, err)
}

func appErrMessage(err error) string {
	appErr, ok := apperror.As(err)
	if !ok {
		return ""
	}
	return appErr.Message
}

func TestGetMediaNotFoundForForeignOwner(t *testing.T) {
	svc, _ := newMediaService(t)
	ctx := context.Background()

	item, err := svc.CreateMedia(ctx, uuid.New(), validCreate("Dune"))
	require.NoError(t, err)

	_, err = svc.GetMedia(ctx, uuid.New(), item.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.GetMedia(ctx, item.OwnerID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateMediaPartialPatch(t *testing.T) {
	svc, _ := newMediaService(t)
	ctx := context.Background()
	owner := uuid.New()

	input := validCreate("Dune")
	input.Notes = "book first"
	input.Rating = ptr(7.0)
	item, err := svc.CreateMedia(ctx, owner, input)
	require.NoError(t, err)

	updated, err := svc.UpdateMedia(ctx, owner, item.ID, UpdateMediaInput{
		Status: ptr(models.StatusWatched),
		Rating: ptr(9.0),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusWatched, updated.Status)
	assert.Equal(t, 9.0, *updated.Rating)
	assert.Equal(t, "book first", updated.Notes)
	assert.Equal(t, "Dune", updated.Title)
	assert.False(t, updated.UpdatedAt.Before(item.UpdatedAt))

	stored, err := svc.GetMedia(ctx, owner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWatched, stored.Status)
}

func TestUpdateMediaClearsNullFields(t *testing.T) {
	svc, _ := newMediaService(t)
	ctx := context.Background()
	owner := uuid.New()

	input := validCreate("Dune")
	input.Rating = ptr(7.0)
	input.ReleaseYear = ptr(2021)
	item, err := svc.CreateMedia(ctx, owner, input)
	require.NoError(t, err)

	var patch UpdateMediaInput
	require.NoError(t, json.Unmarshal([]byte(`{"notes":"rewatch"}`), &patch))
	updated, err := svc.UpdateMedia(ctx, owner, item.ID, patch)
	require.NoError(t, err)
	require.NotNil(t, updated.Rating)
	require.NotNil(t, updated.ReleaseYear)

	patch = UpdateMediaInput{}
	require.NoError(t, json.Unmarshal([]byte(`{"rating":null,"releaseYear":null}`), &patch))
	assert.True(t, patch.ClearRating)
	assert.True(t, patch.ClearReleaseYear)

	_, err = svc.UpdateMedia(ctx, owner, item.ID, patch)
	require.NoError(t, err)

	stored, err := svc.GetMedia(ctx, owner, item.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Rating)
	assert.Nil(t, stored.ReleaseYear)
	assert.Equal(t, "rewatch", stored.Notes)
}

func TestUpdateMediaRevalidatesSuppliedFields(t *testing.T) {
	svc, _ := newMediaService(t)
	ctx := context.Background()
	owner := uuid.New()

	item, err := svc.CreateMedia(ctx, owner, validCreate("Dune"))
	require.NoError(t, err)

	_, err = svc.UpdateMedia(ctx, owner, item.ID, UpdateMediaInput{Title: ptr("   ")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.UpdateMedia(ctx, owner, item.ID, UpdateMediaInput{Rating: ptr(0.5)})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdateMediaDuplicateExcludesSelf(t *testing.T) {
	svc, _ := newMediaService(t)
	ctx := context.Background()
	owner := uuid.New()

	dune, err := svc.CreateMedia(ctx, owner, validCreate("Dune"))
	require.NoError(t, err)
	arrival, err := svc.CreateMedia(ctx, owner, validCreate("Arrival"))
	require.NoError(t, err)

	_, err = svc.UpdateMedia(ctx, owner, dune.ID, UpdateMediaInput{Title: ptr("Dune")})
	assert.NoError(t, err)

	_, err = svc.UpdateMedia(ctx, owner, arrival.ID, UpdateMediaInput{Title: ptr("Dune")})
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	_, err = svc.UpdateMedia(ctx, owner, arrival.ID, UpdateMediaInput{Type: ptr(models.MediaTypeShow), Title: ptr("Dune")})
	assert.NoError(t, err)
}

func TestUpdateMediaReplacesHostedPoster(t *testing.T) {
	svc, posters := newMediaService(t)
	ctx := context.Background()
	owner := uuid.New()

	input := validCreate("Dune")
	input.Poster = "http://cdn.local/posters/old.jpg"
	item, err := svc.CreateMedia(ctx, owner, input)
	require.NoError(t, err)

	_, err = svc.UpdateMedia(ctx, owner, item.ID, UpdateMediaInput{Poster: ptr("https://images.example.com/new.jpg")})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://cdn.local/posters/old.jpg"}, posters.deleted)

	// External posters are never touched.
	_, err = svc.UpdateMedia(ctx, owner, item.ID, UpdateMediaInput{Poster: ptr("")})
	require.NoError(t, err)
	assert.Len(t, posters.deleted, 1)
}

func TestToggleStatus(t *testing.T) {
	svc, _ := newMediaService(t)
	ctx := context.Background()
	owner := uuid.New()

	item, err := svc.CreateMedia(ctx, owner, validCreate("Dune"))
	require.NoError(t, err)

	toggled, err := svc.ToggleStatus(ctx, owner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWatched, toggled.Status)

	toggled, err = svc.ToggleStatus(ctx, owner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnwatched, toggled.Status)

	_, err = svc.UpdateMedia(ctx, owner, item.ID, UpdateMediaInput{Status: ptr(models.StatusWatching)})
	require.NoError(t, err)
	toggled, err = svc.ToggleStatus(ctx, owner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWatched, toggled.Status)

	_, err = svc.ToggleStatus(ctx, uuid.New(), item.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteMedia(t *testing.T) {
	svc, posters := newMediaService(t)
	ctx := context.Background()
	owner := uuid.New()
	posters.err = errors.New("bucket offline")

	input := validCreate("Dune")
	input.Poster = "http://cdn.local/posters/dune.jpg"
	item, err := svc.CreateMedia(ctx, owner, input)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteMedia(ctx, uuid.New(), item.ID), apperror.ErrNotFound)

	// Poster cleanup failure does not fail the delete.
	require.NoError(t, svc.DeleteMedia(ctx, owner, item.ID))
	assert.Equal(t, []string{input.Poster}, posters.deleted)

	assert.ErrorIs(t, svc.DeleteMedia(ctx, owner, item.ID), apperror.ErrNotFound)
}

func TestDeleteAllMedia(t *testing.T) {
	svc, _ := newMediaService(t)
	ctx := context.Background()
	owner := uuid.New()

	for _, title := range []string{"A", "B", "C"} {
		_, err := svc.CreateMedia(ctx, owner, validCreate(title))
		require.NoError(t, err)
	}

	n, err := svc.DeleteAllMedia(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = svc.DeleteAllMedia(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	stats, err := svc.GetStats(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalItems)
}

func TestListMedia(t *testing.T) {
	svc, _ := newMediaService(t)
	ctx := context.Background()
	owner := uuid.New()

	for _, title := range []string{"Alien", "Aliens", "Blade Runner"} {
		_, err := svc.CreateMedia(ctx, owner, validCreate(title))
		require.NoError(t, err)
	}

	items, page, err := svc.ListMedia(ctx, owner, ListMediaParams{Search: " alien ", SortBy: "title", SortOrder: "asc", Limit: "1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Alien", items[0].Title)
	assert.Equal(t, models.Pagination{
		CurrentPage:  1,
		TotalPages:   2,
		TotalItems:   2,
		ItemsPerPage: 1,
		HasNextPage:  true,
		HasPrevPage:  false,
	}, page)

	_, _, err = svc.ListMedia(ctx, owner, ListMediaParams{Limit: "500"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestListMediaPagesPastTheEnd(t *testing.T) {
	svc, _ := newMediaService(t)
	ctx := context.Background()
	owner := uuid.New()

	for _, title := range []string{"Alien", "Aliens", "Blade Runner"} {
		_, err := svc.CreateMedia(ctx, owner, validCreate(title))
		require.NoError(t, err)
	}

	items, page, err := svc.ListMedia(ctx, owner, ListMediaParams{Page: "1000000", Limit: "8"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1000000, page.CurrentPage)
	assert.EqualValues(t, 3, page.TotalItems)

	_, _, err = svc.ListMedia(ctx, owner, ListMediaParams{Page: "2305843009213693953", Limit: "8"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestStatsScenario(t *testing.T) {
	svc, _ := newMediaService(t)
	ctx := context.Background()
	owner := uuid.New()

	create := func(title string, mediaType models.MediaType, status models.WatchStatus, rating *float64) {
		_, err := svc.CreateMedia(ctx, owner, CreateMediaInput{
			Title: title, Type: mediaType, Genre: models.GenreDrama, Status: status, Rating: rating,
		})
		require.NoError(t, err)
	}
	create("A", models.MediaTypeMovie, models.StatusWatched, ptr(8.0))
	create("B", models.MediaTypeMovie, models.StatusWatched, ptr(6.0))
	create("C", models.MediaTypeMovie, models.StatusUnwatched, nil)
	create("D", models.MediaTypeShow, models.StatusUnwatched, nil)
	create("E", models.MediaTypeMovie, models.StatusWatched, ptr(9.0))

	stats, err := svc.GetStats(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 5, stats.TotalItems)
	assert.EqualValues(t, 3, stats.WatchedItems)
	assert.EqualValues(t, 2, stats.UnwatchedItems)
	assert.EqualValues(t, 4, stats.Movies)
	assert.EqualValues(t, 1, stats.Shows)
	assert.InDelta(t, 7.6667, stats.AverageRating, 1e-3)

	other, err := svc.GetStats(ctx, uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 0, other.TotalItems)
}

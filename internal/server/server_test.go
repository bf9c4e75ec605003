package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"watchlist-backend/internal/apperror"
	"watchlist-backend/internal/models"
	"watchlist-backend/internal/server/servertest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message"`
	Data       json.RawMessage       `json:"data"`
	Errors     []apperror.FieldError `json:"errors"`
	Pagination *models.Pagination    `json:"pagination"`
}

type api struct {
	t   *testing.T
	app *fiber.App
}

func (a api) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (a api) register(email string) string {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Tester", "email": email, "password": "secret123",
	})
	require.Equal(a.t, http.StatusCreated, status, env.Message)

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &result))
	return result.Token
}

func (a api) create(token string, body map[string]interface{}) models.MediaItem {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/media", token, body)
	require.Equal(a.t, http.StatusCreated, status, env.Message)

	var item models.MediaItem
	require.NoError(a.t, json.Unmarshal(env.Data, &item))
	return item
}

func newAPI(t *testing.T) api {
	return api{t: t, app: servertest.New(t)}
}

func TestMediaRequiresAuth(t *testing.T) {
	a := newAPI(t)

	status, env := a.do(http.MethodGet, "/api/v1/media", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = a.do(http.MethodGet, "/api/v1/media/stats", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCreateAndFetchMedia(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")

	item := a.create(token, map[string]interface{}{
		"title": "Dune", "type": "movie", "genre": "Sci-Fi", "rating": 8,
	})
	assert.Equal(t, models.StatusUnwatched, item.Status)

	status, env := a.do(http.MethodGet, "/api/v1/media/"+item.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, env = a.do(http.MethodPost, "/api/v1/media", token, map[string]interface{}{
		"title": "Dune", "type": "movie", "genre": "Sci-Fi",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You already have this item in your watchlist", env.Message)
	assert.Empty(t, env.Errors)
}

func TestValidationErrorsEnvelope(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")

	status, env := a.do(http.MethodPost, "/api/v1/media", token, map[string]interface{}{
		"title": "", "type": "podcast", "genre": "Sci-Fi", "rating": 11,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)

	var fields []string
	for _, f := range env.Errors {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"title", "type", "rating"}, fields)

	status, env = a.do(http.MethodGet, "/api/v1/media?limit=0&page=x", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, env.Errors, 2)
}

func TestInvalidBody(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMistypedBodyFieldsAreReported(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")

	status, env := a.do(http.MethodPost, "/api/v1/media", token, map[string]interface{}{
		"title": "Dune", "type": "movie", "genre": "Sci-Fi", "rating": "abc",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "rating", env.Errors[0].Field)
	assert.Equal(t, "Rating must be between 1 and 10", env.Errors[0].Message)

	item := a.create(token, map[string]interface{}{"title": "Dune", "type": "movie", "genre": "Sci-Fi"})
	status, env = a.do(http.MethodPut, "/api/v1/media/"+item.ID.String(), token, map[string]interface{}{
		"releaseYear": 2021.5,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "releaseYear", env.Errors[0].Field)
}

func TestOwnershipIsIndistinguishableFromAbsence(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice@example.com")
	bob := a.register("bob@example.com")

	item := a.create(alice, map[string]interface{}{"title": "Dune", "type": "movie", "genre": "Sci-Fi"})
	path := "/api/v1/media/" + item.ID.String()

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		status, env := a.do(method, path, bob, nil)
		assert.Equal(t, http.StatusNotFound, status, method)
		assert.Equal(t, "Media item not found", env.Message)
	}

	status, _ := a.do(http.MethodPut, path, bob, map[string]interface{}{"title": "Mine now"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.do(http.MethodPatch, path+"/status", bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.do(http.MethodGet, "/api/v1/media/not-a-uuid", alice, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.do(http.MethodGet, path, alice, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestListPaginationScenario(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")

	for i := 1; i <= 25; i++ {
		a.create(token, map[string]interface{}{"title": fmt.Sprintf("Item %02d", i), "type": "movie", "genre": "Drama"})
	}

	status, env := a.do(http.MethodGet, "/api/v1/media?page=3&limit=10&sortBy=title&sortOrder=asc", token, nil)
	require.Equal(t, http.StatusOK, status)

	var items []models.MediaItem
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 5)
	assert.Equal(t, "Item 21", items[0].Title)

	require.NotNil(t, env.Pagination)
	assert.Equal(t, models.Pagination{
		CurrentPage:  3,
		TotalPages:   3,
		TotalItems:   25,
		ItemsPerPage: 10,
		HasNextPage:  false,
		HasPrevPage:  true,
	}, *env.Pagination)

	status, env = a.do(http.MethodGet, "/api/v1/media?page=9", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(env.Data))
	assert.Equal(t, 3, env.Pagination.TotalPages)

	status, env = a.do(http.MethodGet, "/api/v1/media?page=2305843009213693953&limit=8", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "page", env.Errors[0].Field)
}

func TestStatsAndDeleteAll(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")

	a.create(token, map[string]interface{}{"title": "A", "type": "movie", "genre": "Drama", "status": "watched", "rating": 8})
	a.create(token, map[string]interface{}{"title": "B", "type": "movie", "genre": "Drama", "status": "watched", "rating": 6})
	a.create(token, map[string]interface{}{"title": "C", "type": "movie", "genre": "Drama"})
	a.create(token, map[string]interface{}{"title": "D", "type": "show", "genre": "Drama"})
	a.create(token, map[string]interface{}{"title": "E", "type": "movie", "genre": "Drama", "status": "watched", "rating": 9})

	status, env := a.do(http.MethodGet, "/api/v1/media/stats", token, nil)
	require.Equal(t, http.StatusOK, status)

	var stats models.MediaStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.EqualValues(t, 5, stats.TotalItems)
	assert.EqualValues(t, 3, stats.WatchedItems)
	assert.EqualValues(t, 4, stats.Movies)
	assert.InDelta(t, 7.667, stats.AverageRating, 1e-3)

	status, env = a.do(http.MethodDelete, "/api/v1/media", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"deletedCount":5}`, string(env.Data))

	status, env = a.do(http.MethodDelete, "/api/v1/media", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"deletedCount":0}`, string(env.Data))
}

func TestToggleAndUpdate(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")

	item := a.create(token, map[string]interface{}{"title": "Dark", "type": "show", "genre": "Sci-Fi", "notes": "German"})
	path := "/api/v1/media/" + item.ID.String()

	status, env := a.do(http.MethodPatch, path+"/status", token, nil)
	require.Equal(t, http.StatusOK, status)
	var toggled models.MediaItem
	require.NoError(t, json.Unmarshal(env.Data, &toggled))
	assert.Equal(t, models.StatusWatched, toggled.Status)

	status, env = a.do(http.MethodPut, path, token, map[string]interface{}{"rating": 10})
	require.Equal(t, http.StatusOK, status)
	var updated models.MediaItem
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 10.0, *updated.Rating)
	assert.Equal(t, "German", updated.Notes)
	assert.Equal(t, models.StatusWatched, updated.Status)

	status, env = a.do(http.MethodPut, path, token, map[string]interface{}{"rating": nil})
	require.Equal(t, http.StatusOK, status)
	updated = models.MediaItem{}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Nil(t, updated.Rating)
	assert.Equal(t, "German", updated.Notes)
}

func TestAuthEndpoints(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")

	status, env := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Again", "email": "ADA@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, env.Message)

	status, _ = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(env.Data), "password")

	status, env = a.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "ada@example.com", me.Email)

	status, _ = a.do(http.MethodGet, "/api/v1/users/"+me.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(http.MethodGet, "/api/v1/users/nope", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUploadRouteNotMountedWithoutStorage(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")

	status, _ := a.do(http.MethodGet, "/api/v1/upload/presign?filename=a.jpg", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)

	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "healthy", body["database"])
}

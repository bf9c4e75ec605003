// Package client talks to the watchlist API and keeps a local cache of the
// caller's items and statistics.
//
// All methods are safe for concurrent calling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"watchlist-backend/internal/apperror"
	"watchlist-backend/internal/models"

	"github.com/google/uuid"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []apperror.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

// Is lets callers match API failures against the apperror sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case apperror.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case apperror.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case apperror.ErrValidation:
		return e.StatusCode == http.StatusBadRequest && len(e.Fields) > 0
	}
	return false
}

type envelope struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message"`
	Data       json.RawMessage       `json:"data"`
	Errors     []apperror.FieldError `json:"errors"`
	Pagination *models.Pagination    `json:"pagination"`
}

// Client contains the info to sustain the API
type Client struct {
	mu      sync.RWMutex
	c       *http.Client
	rootURL string
	token   string
}

// NewClient returns a client for the API rooted at rootURL, e.g.
// "http://localhost:5000/api/v1". A nil httpClient uses http.DefaultClient.
func NewClient(rootURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		c:       httpClient,
		rootURL: strings.TrimRight(rootURL, "/"),
	}
}

// SetToken sets the bearer token sent with every request. An empty token
// logs the client out.
func (api *Client) SetToken(token string) *Client {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.token = token
	return api
}

func (api *Client) Token() string {
	api.mu.RLock()
	defer api.mu.RUnlock()
	return api.token
}

// call performs one request and decodes the envelope. result receives the
// data payload when non-nil.
func (api *Client) call(ctx context.Context, method, path string, params url.Values, request, result interface{}) (*envelope, error) {
	api.mu.RLock()
	target := api.rootURL + path
	token := api.token
	api.mu.RUnlock()

	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var body io.Reader
	if request != nil {
		raw, err := json.Marshal(request)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if request != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := api.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: env.Message, Fields: env.Errors}
		if decodeErr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return &env, nil
}

// MediaPage is one page of list results.
type MediaPage struct {
	Items      []models.MediaItem
	Pagination models.Pagination
}

func (api *Client) ListMedia(ctx context.Context, filters Filters) (*MediaPage, error) {
	page := &MediaPage{Items: []models.MediaItem{}}
	env, err := api.call(ctx, http.MethodGet, "/media", filters.Values(), nil, &page.Items)
	if err != nil {
		return nil, err
	}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	}
	return page, nil
}

func (api *Client) GetStats(ctx context.Context) (*models.MediaStats, error) {
	var stats models.MediaStats
	if _, err := api.call(ctx, http.MethodGet, "/media/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (api *Client) GetMedia(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	var item models.MediaItem
	if _, err := api.call(ctx, http.MethodGet, "/media/"+id.String(), nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (api *Client) CreateMedia(ctx context.Context, input CreateInput) (*models.MediaItem, error) {
	var item models.MediaItem
	if _, err := api.call(ctx, http.MethodPost, "/media", nil, input, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (api *Client) UpdateMedia(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.MediaItem, error) {
	var item models.MediaItem
	if _, err := api.call(ctx, http.MethodPut, "/media/"+id.String(), nil, input, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (api *Client) ToggleStatus(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	var item models.MediaItem
	if _, err := api.call(ctx, http.MethodPatch, "/media/"+id.String()+"/status", nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (api *Client) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	_, err := api.call(ctx, http.MethodDelete, "/media/"+id.String(), nil, nil, nil)
	return err
}

func (api *Client) DeleteAllMedia(ctx context.Context) (int64, error) {
	var result struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	if _, err := api.call(ctx, http.MethodDelete, "/media", nil, nil, &result); err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// PresignPoster asks for an upload URL for a poster image.
func (api *Client) PresignPoster(ctx context.Context, filename string) (*PresignedUpload, error) {
	var upload PresignedUpload
	params := url.Values{"filename": {filename}}
	if _, err := api.call(ctx, http.MethodGet, "/upload/presign", params, nil, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

// Register creates an account and keeps the returned token.
func (api *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	return api.authenticate(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// Login keeps the returned token for subsequent calls.
func (api *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return api.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (api *Client) authenticate(ctx context.Context, path string, request interface{}) (*Session, error) {
	var session Session
	if _, err := api.call(ctx, http.MethodPost, path, nil, request, &session); err != nil {
		return nil, err
	}
	if session.Token == "" {
		return nil, errors.New("server returned no token")
	}
	api.SetToken(session.Token)
	return &session, nil
}

func (api *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if _, err := api.call(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

package client

import (
	"context"
	"fmt"
	"sync"

	"watchlist-backend/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// NotifyFunc is told about every failed store operation.
type NotifyFunc func(op string, err error)

// State is a point-in-time copy of the store for rendering.
type State struct {
	Items      []models.MediaItem
	Pagination models.Pagination
	Stats      models.MediaStats
	Filters    Filters
	Loading    bool
	Err        error
}

// Store caches the caller's items and stats. Local state only changes after
// the server confirms a mutation.
//
// Every write to items or stats takes a ticket from a per-kind counter. A
// read result is dropped if a newer ticket has already been applied, so a
// slow response never overwrites a fresher one. Reads only share a round trip
// within one generation; confirmed mutations and Reset start a new one, so a
// later read never joins a request sent before them.
type Store struct {
	api    *Client
	notify NotifyFunc
	flight singleflight.Group

	mu           sync.RWMutex
	items        []models.MediaItem
	pagination   models.Pagination
	stats        models.MediaStats
	filters      Filters
	loading      int
	err          error
	itemsTicket  uint64
	itemsApplied uint64
	statsTicket  uint64
	statsApplied uint64
	itemsGen     uint64
	statsGen     uint64
}

func NewStore(api *Client, notify NotifyFunc) *Store {
	if notify == nil {
		notify = func(string, error) {}
	}
	return &Store{api: api, notify: notify}
}

func (s *Store) Client() *Client {
	return s.api
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.MediaItem, len(s.items))
	copy(items, s.items)

	return State{
		Items:      items,
		Pagination: s.pagination,
		Stats:      s.stats,
		Filters:    s.filters,
		Loading:    s.loading > 0,
		Err:        s.err,
	}
}

// Load fetches items for the current filters and stats concurrently.
func (s *Store) Load(ctx context.Context) error {
	s.mu.RLock()
	filters := s.filters
	s.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.FetchItems(gctx, filters) })
	g.Go(func() error { return s.FetchStats(gctx) })
	return g.Wait()
}

// FetchItems loads one page of items and remembers filters for later Loads.
// Identical concurrent requests share one round trip.
func (s *Store) FetchItems(ctx context.Context, filters Filters) error {
	s.mu.Lock()
	s.filters = filters
	s.itemsTicket++
	ticket := s.itemsTicket
	key := fmt.Sprintf("items#%d?%s", s.itemsGen, filters.Values().Encode())
	s.loading++
	s.mu.Unlock()
	defer s.doneLoading()

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		return s.api.ListMedia(ctx, filters)
	})
	if err != nil {
		return s.fail("load items", err)
	}
	page := v.(*MediaPage)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket > s.itemsApplied {
		s.items = append([]models.MediaItem(nil), page.Items...)
		s.pagination = page.Pagination
		s.itemsApplied = ticket
		s.err = nil
	}
	return nil
}

func (s *Store) FetchStats(ctx context.Context) error {
	s.mu.Lock()
	s.statsTicket++
	ticket := s.statsTicket
	key := fmt.Sprintf("stats#%d", s.statsGen)
	s.loading++
	s.mu.Unlock()
	defer s.doneLoading()

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		return s.api.GetStats(ctx)
	})
	if err != nil {
		return s.fail("load stats", err)
	}
	stats := v.(*models.MediaStats)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket > s.statsApplied {
		s.stats = *stats
		s.statsApplied = ticket
	}
	return nil
}

// Create adds an item on the server, then puts it at the head of the list.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.MediaItem, error) {
	item, err := s.api.CreateMedia(ctx, input)
	if err != nil {
		return nil, s.fail("create", err)
	}

	s.applyItems(func(items []models.MediaItem) []models.MediaItem {
		return append([]models.MediaItem{*item}, items...)
	})
	s.refreshStats(ctx)
	return item, nil
}

func (s *Store) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.MediaItem, error) {
	item, err := s.api.UpdateMedia(ctx, id, input)
	if err != nil {
		return nil, s.fail("update", err)
	}

	s.applyItems(replaceItem(*item))
	s.refreshStats(ctx)
	return item, nil
}

func (s *Store) Toggle(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	item, err := s.api.ToggleStatus(ctx, id)
	if err != nil {
		return nil, s.fail("toggle", err)
	}

	s.applyItems(replaceItem(*item))
	s.refreshStats(ctx)
	return item, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.api.DeleteMedia(ctx, id); err != nil {
		return s.fail("delete", err)
	}

	s.applyItems(func(items []models.MediaItem) []models.MediaItem {
		kept := make([]models.MediaItem, 0, len(items))
		for _, it := range items {
			if it.ID != id {
				kept = append(kept, it)
			}
		}
		return kept
	})
	s.refreshStats(ctx)
	return nil
}

func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := s.api.DeleteAllMedia(ctx)
	if err != nil {
		return 0, s.fail("delete all", err)
	}

	s.applyItems(func([]models.MediaItem) []models.MediaItem { return []models.MediaItem{} })
	s.refreshStats(ctx)
	return deleted, nil
}

// Reset drops all cached state, e.g. on logout. Reads still in flight are
// discarded when they land.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.pagination = models.Pagination{}
	s.stats = models.MediaStats{}
	s.filters = Filters{}
	s.err = nil
	s.itemsApplied = s.itemsTicket + 1
	s.itemsTicket = s.itemsApplied
	s.statsApplied = s.statsTicket + 1
	s.statsTicket = s.statsApplied
	s.itemsGen++
	s.statsGen++
}

// Logout forgets the token and the cached state.
func (s *Store) Logout() {
	s.api.SetToken("")
	s.Reset()
}

func (s *Store) applyItems(fn func([]models.MediaItem) []models.MediaItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.itemsTicket++
	s.itemsApplied = s.itemsTicket
	s.items = fn(s.items)
	s.err = nil
	s.itemsGen++
	s.statsGen++
}

// refreshStats follows a confirmed mutation, which has already moved stats
// to a new generation. A failure is reported through the notifier but does
// not fail the mutation.
func (s *Store) refreshStats(ctx context.Context) {
	_ = s.FetchStats(ctx)
}

func (s *Store) fail(op string, err error) error {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	s.notify(op, err)
	return err
}

func (s *Store) doneLoading() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}

func replaceItem(item models.MediaItem) func([]models.MediaItem) []models.MediaItem {
	return func(items []models.MediaItem) []models.MediaItem {
		out := make([]models.MediaItem, len(items))
		copy(out, items)
		for i := range out {
			if out[i].ID == item.ID {
				out[i] = item
			}
		}
		return out
	}
}

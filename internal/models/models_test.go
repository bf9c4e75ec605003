package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int64
		expected Pagination
	}{
		{"last partial page", 3, 10, 25, Pagination{CurrentPage: 3, TotalPages: 3, TotalItems: 25, ItemsPerPage: 10, HasNextPage: false, HasPrevPage: true}},
		{"first page", 1, 10, 25, Pagination{CurrentPage: 1, TotalPages: 3, TotalItems: 25, ItemsPerPage: 10, HasNextPage: true, HasPrevPage: false}},
		{"exact multiple", 2, 5, 10, Pagination{CurrentPage: 2, TotalPages: 2, TotalItems: 10, ItemsPerPage: 5, HasNextPage: false, HasPrevPage: true}},
		{"empty collection", 1, 10, 0, Pagination{CurrentPage: 1, TotalPages: 0, TotalItems: 0, ItemsPerPage: 10, HasNextPage: false, HasPrevPage: false}},
		{"beyond last page", 7, 10, 25, Pagination{CurrentPage: 7, TotalPages: 3, TotalItems: 25, ItemsPerPage: 10, HasNextPage: false, HasPrevPage: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewPagination(tt.page, tt.limit, tt.total))
		})
	}
}

func TestPaginationInvariants(t *testing.T) {
	for limit := 1; limit <= 100; limit += 7 {
		for total := int64(0); total <= 250; total += 13 {
			for page := 1; page <= 6; page++ {
				p := NewPagination(page, limit, total)
				wantPages := int(total / int64(limit))
				if total%int64(limit) != 0 {
					wantPages++
				}
				assert.Equal(t, wantPages, p.TotalPages)
				assert.Equal(t, page < p.TotalPages, p.HasNextPage)
				assert.Equal(t, page > 1, p.HasPrevPage)
			}
		}
	}
}

func TestWatchStatusToggled(t *testing.T) {
	assert.Equal(t, StatusUnwatched, StatusWatched.Toggled())
	assert.Equal(t, StatusWatched, StatusUnwatched.Toggled())
	assert.Equal(t, StatusWatched, StatusWatching.Toggled())

	for _, s := range []WatchStatus{StatusWatched, StatusUnwatched} {
		assert.Equal(t, s, s.Toggled().Toggled())
	}
}

func TestEnumValidity(t *testing.T) {
	assert.Len(t, Genres, 17)
	assert.True(t, GenreSciFi.Valid())
	assert.True(t, GenreOther.Valid())
	assert.False(t, Genre("sci-fi").Valid())
	assert.False(t, Genre("").Valid())

	assert.True(t, MediaTypeShow.Valid())
	assert.False(t, MediaType("series").Valid())

	assert.True(t, StatusWatching.Valid())
	assert.False(t, WatchStatus("dropped").Valid())
}

func TestSortFieldColumn(t *testing.T) {
	col, ok := SortByReleaseYear.Column()
	assert.True(t, ok)
	assert.Equal(t, "release_year", col)

	_, ok = SortField("password").Column()
	assert.False(t, ok)
}

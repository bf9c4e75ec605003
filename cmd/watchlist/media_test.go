package main

import (
	"bytes"
	"testing"

	"watchlist-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id := uuid.New()

	parsed, err := parseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = parseID("42")
	assert.EqualError(t, err, `invalid item id "42"`)
}

func TestPrintItems(t *testing.T) {
	rating, year := 8.5, 2021
	items := []models.MediaItem{
		{ID: uuid.New(), Title: "Dune", Type: models.MediaTypeMovie, Genre: models.GenreSciFi, Status: models.StatusWatched, Rating: &rating, ReleaseYear: &year},
		{ID: uuid.New(), Title: "Dark", Type: models.MediaTypeShow, Genre: models.GenreSciFi, Status: models.StatusUnwatched},
	}

	var out bytes.Buffer
	printItems(&out, items)

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[1]), "8.5")
	assert.Contains(t, string(lines[1]), "2021")
	assert.Contains(t, string(lines[2]), "unwatched")
	assert.Regexp(t, `-\s+-$`, string(lines[2]))
}

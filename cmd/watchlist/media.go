package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"watchlist-backend/internal/client"
	"watchlist-backend/internal/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	listFilters client.Filters
	descending  bool

	mediaFields struct {
		title, mediaType, genre, status, notes, poster, imdbID string
		rating                                                 float64
		year                                                   int
		clearRating, clearYear                                 bool
	}

	confirmClear bool
)

func init() {
	flags := listCmd.Flags()
	flags.StringVarP(&listFilters.Search, "search", "s", "", "Title contains")
	flags.StringVar((*string)(&listFilters.Type), "type", "", "movie or show")
	flags.StringVar((*string)(&listFilters.Genre), "genre", "", "Genre")
	flags.StringVar((*string)(&listFilters.Status), "status", "", "watched, unwatched or watching")
	flags.StringVar((*string)(&listFilters.SortBy), "sort", "", "title, createdAt, updatedAt, rating or releaseYear")
	flags.BoolVar(&descending, "desc", false, "Sort descending")
	flags.IntVar(&listFilters.Page, "page", 0, "Page number")
	flags.IntVar(&listFilters.Limit, "limit", 0, "Items per page")

	for _, cmd := range []*cobra.Command{addCmd, updateCmd} {
		flags := cmd.Flags()
		flags.StringVar(&mediaFields.mediaType, "type", "movie", "movie or show")
		flags.StringVar(&mediaFields.genre, "genre", "", "Genre")
		flags.StringVar(&mediaFields.status, "status", "", "watched, unwatched or watching")
		flags.Float64Var(&mediaFields.rating, "rating", 0, "Rating 1-10")
		flags.StringVar(&mediaFields.notes, "notes", "", "Notes")
		flags.IntVar(&mediaFields.year, "year", 0, "Release year")
		flags.StringVar(&mediaFields.poster, "poster", "", "Poster URL")
		flags.StringVar(&mediaFields.imdbID, "imdb", "", "IMDb id")
	}
	updateCmd.Flags().StringVar(&mediaFields.title, "title", "", "New title")
	updateCmd.Flags().BoolVar(&mediaFields.clearRating, "clear-rating", false, "Remove the rating")
	updateCmd.Flags().BoolVar(&mediaFields.clearYear, "clear-year", false, "Remove the release year")

	clearCmd.Flags().BoolVar(&confirmClear, "yes", false, "Confirm deleting every item")

	rootCmd.AddCommand(listCmd, statsCmd, addCmd, updateCmd, toggleCmd, removeCmd, clearCmd, posterCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List watchlist items",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		filters := listFilters
		if cmd.Flags().Changed("desc") || filters.SortBy != "" {
			filters.SortOrder = "asc"
			if descending {
				filters.SortOrder = "desc"
			}
		}
		if err := store.FetchItems(ctx, filters); err != nil {
			return err
		}

		state := store.Snapshot()
		printItems(cmd.OutOrStdout(), state.Items)
		p := state.Pagination
		fmt.Fprintf(cmd.OutOrStdout(), "\npage %d of %d, %d items\n", p.CurrentPage, p.TotalPages, p.TotalItems)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show watchlist statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := store.FetchStats(ctx); err != nil {
			return err
		}
		s := store.Snapshot().Stats

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Total\t%d\n", s.TotalItems)
		fmt.Fprintf(w, "Watched\t%d\n", s.WatchedItems)
		fmt.Fprintf(w, "Watching\t%d\n", s.WatchingItems)
		fmt.Fprintf(w, "Unwatched\t%d\n", s.UnwatchedItems)
		fmt.Fprintf(w, "Movies\t%d\n", s.Movies)
		fmt.Fprintf(w, "Shows\t%d\n", s.Shows)
		fmt.Fprintf(w, "Average rating\t%.1f\n", s.AverageRating)
		return w.Flush()
	},
}

var addCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Add an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		input := client.CreateInput{
			Title:  args[0],
			Type:   models.MediaType(mediaFields.mediaType),
			Genre:  models.Genre(mediaFields.genre),
			Status: models.WatchStatus(mediaFields.status),
			Notes:  mediaFields.notes,
			Poster: mediaFields.poster,
			ImdbID: mediaFields.imdbID,
		}
		if cmd.Flags().Changed("rating") {
			input.Rating = &mediaFields.rating
		}
		if cmd.Flags().Changed("year") {
			input.ReleaseYear = &mediaFields.year
		}

		item, err := store.Create(ctx, input)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", item.Title, item.ID)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change fields of an item; only the flags given are sent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		changed := cmd.Flags().Changed
		var input client.UpdateInput
		if changed("title") {
			input.Title = &mediaFields.title
		}
		if changed("type") {
			t := models.MediaType(mediaFields.mediaType)
			input.Type = &t
		}
		if changed("genre") {
			g := models.Genre(mediaFields.genre)
			input.Genre = &g
		}
		if changed("status") {
			s := models.WatchStatus(mediaFields.status)
			input.Status = &s
		}
		if changed("rating") {
			input.Rating = &mediaFields.rating
		}
		if changed("notes") {
			input.Notes = &mediaFields.notes
		}
		if changed("year") {
			input.ReleaseYear = &mediaFields.year
		}
		if changed("poster") {
			input.Poster = &mediaFields.poster
		}
		if changed("imdb") {
			input.ImdbID = &mediaFields.imdbID
		}
		input.ClearRating = mediaFields.clearRating
		input.ClearReleaseYear = mediaFields.clearYear

		item, err := store.Update(ctx, id, input)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", item.Title)
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle ID",
	Short: "Flip an item between watched and unwatched",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		item, err := store.Toggle(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", item.Title, item.Status)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete an item",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := store.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every item in your watchlist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmClear {
			return errors.New("refusing to delete everything without --yes")
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		deleted, err := store.DeleteAll(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d items\n", deleted)
		return nil
	},
}

var posterCmd = &cobra.Command{
	Use:   "poster FILENAME",
	Short: "Get an upload URL for a poster image",
	Long: `Prints a presigned PUT URL for the poster bucket and the public URL to
pass to "watchlist update ID --poster".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		upload, err := store.Client().PresignPoster(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "upload: %s\npublic: %s\nexpires: %s\n", upload.PresignedURL, upload.PublicURL, upload.ExpiresAt.Format("15:04:05"))
		return nil
	},
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid item id %q", raw)
	}
	return id, nil
}

func printItems(out io.Writer, items []models.MediaItem) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTYPE\tGENRE\tSTATUS\tRATING\tYEAR")
	for _, it := range items {
		rating, year := "-", "-"
		if it.Rating != nil {
			rating = strconv.FormatFloat(*it.Rating, 'f', -1, 64)
		}
		if it.ReleaseYear != nil {
			year = strconv.Itoa(*it.ReleaseYear)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Title, it.Type, it.Genre, it.Status, rating, year)
	}
	_ = w.Flush()
}

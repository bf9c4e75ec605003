// Command watchlist is a terminal client for the watchlist API.
package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"watchlist-backend/internal/client"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	apiURL  string
	token   string
	timeout time.Duration
	verbose bool

	log   = logrus.New()
	store *client.Store
)

var rootCmd = &cobra.Command{
	Use:           "watchlist",
	Short:         "Manage your movie and TV show watchlist",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
		if token == "" {
			token = os.Getenv("WATCHLIST_TOKEN")
		}
		if token == "" {
			token = readSavedToken()
		}

		api := client.NewClient(apiURL, nil).SetToken(token)
		store = client.NewStore(api, func(op string, err error) {
			log.WithError(err).WithField("op", op).Debug("Request failed")
		})
		return nil
	},
}

func init() {
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetOutput(os.Stderr)

	defaultURL := os.Getenv("WATCHLIST_API")
	if defaultURL == "" {
		defaultURL = "http://localhost:5000/api/v1"
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&apiURL, "api", defaultURL, "API base URL (env WATCHLIST_API)")
	flags.StringVar(&token, "token", "", "Bearer token (env WATCHLIST_TOKEN, defaults to the saved login)")
	flags.DurationVar(&timeout, "timeout", 15*time.Second, "Per-command timeout")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log failed requests")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func tokenFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watchlist", "token"), nil
}

func readSavedToken() string {
	path, err := tokenFile()
	if err != nil {
		return ""
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func saveToken(value string) error {
	path, err := tokenFile()
	if err != nil {
		return err
	}
	if value == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(value+"\n"), 0o600)
}

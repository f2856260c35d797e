package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"exgate/api"
	blobfs "exgate/blob/fs"
	"exgate/config"
	"exgate/exchange"
	bboltstorage "exgate/storage/bbolt"
)

var configFile string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the exchange gateway server",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		if err := os.MkdirAll(settings.DataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		repo, err := bboltstorage.NewRepositoryFromFile(filepath.Join(settings.DataDir, "sessions.db"), nil)
		if err != nil {
			return fmt.Errorf("failed to open session storage: %w", err)
		}
		defer repo.Close()

		blobs, err := blobfs.NewStore(filepath.Join(settings.DataDir, "files"))
		if err != nil {
			return fmt.Errorf("failed to open file storage: %w", err)
		}

		sessions := exchange.NewSessionStore(repo)
		defer sessions.Close()

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
		dispatcher := exchange.NewDispatcher(settings, sessions, blobs,
			exchange.WithLogger(logger))

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/", api.New(settings, dispatcher).Router())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", settings.ListenPort),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		fmt.Printf("Starting exchange server on port %d (data: %s)...\n", settings.ListenPort, settings.DataDir)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")
}

// Command blogvault runs the blog content store behind a REST API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blogvault/blogvault"
	"github.com/blogvault/blogvault/bboltstore"
	"github.com/blogvault/blogvault/httpapi"
	"github.com/blogvault/blogvault/sqlitestore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "blogvault:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := blogvault.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	repo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close repository", "error", err.Error())
		}
	}()

	opts := blogvault.Options{Logger: logger}

	images, err := blogvault.NewImageStore(repo, opts)
	if err != nil {
		return err
	}

	posts, err := blogvault.NewPostStore(repo, images, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SeedDir != "" && len(posts.List()) == 0 {
		count, err := blogvault.SeedFromDir(ctx, posts, cfg.SeedDir)
		if err != nil {
			return fmt.Errorf("failed to seed posts: %w", err)
		}
		logger.Info("seeded posts", slog.Int("count", count), slog.String("dir", cfg.SeedDir))
	}

	api := httpapi.NewServer(posts, images, httpapi.Options{
		Logger:          logger,
		AdminPassword:   cfg.AdminPassword,
		CORSOrigins:     cfg.CORSOrigins,
		CoverMaxAgeDays: cfg.CoverMaxAgeDays,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.Addr), slog.String("backend", cfg.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	// Let pending cover image encodes settle before the repository closes.
	posts.Wait()

	return nil
}

func openRepository(cfg blogvault.Config) (blogvault.Repository, error) {
	switch cfg.Backend {
	case blogvault.BackendSQLite:
		return sqlitestore.Open(cfg.DataDir)
	default:
		return bboltstore.Open(cfg.DataDir)
	}
}

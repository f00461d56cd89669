package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feedstash/feedstash/app/api"
	"github.com/feedstash/feedstash/app/cfg"
	"github.com/feedstash/feedstash/app/config"
	"github.com/feedstash/feedstash/app/database"
	"github.com/feedstash/feedstash/app/export"
	"github.com/feedstash/feedstash/app/feed"
	"github.com/feedstash/feedstash/app/poller"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting feedstash", "version", appCfg.Version)

	sources, err := loadSources(appCfg)
	if err != nil {
		slog.Error("Failed to load feed sources", "error", err)
		os.Exit(1)
	}
	if sources.Count() == 0 {
		slog.Error("No feed sources configured (use --url or --feeds-file)")
		os.Exit(1)
	}
	slog.Info("Feed sources loaded", "count", sources.Count())

	// Store-initialization failures are the only fatal errors
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	feedRepo := database.NewFeedRepository(db)
	itemRepo := database.NewItemRepository(db)

	for _, source := range sources.GetAll() {
		if err := feedRepo.UpsertFeed(source.Name, source.URL); err != nil {
			slog.Error("Failed to register feed", "feed", source.Name, "error", err)
			os.Exit(1)
		}
		slog.Debug("Registered feed", "feed", source.Name, "url", source.URL)
	}

	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.HTTPTimeout) * time.Second,
	}

	p := poller.NewPoller(httpClient, feed.NewParser(), feed.NewResolver(),
		feedRepo, itemRepo, appCfg.UserAgent,
		time.Duration(appCfg.HTTPTimeout)*time.Second,
		time.Duration(appCfg.PollInterval)*time.Second)

	exporter := export.NewExporter(itemRepo, appCfg.SnapshotPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if appCfg.Once {
		runOnce(ctx, p, exporter, sources)
		return
	}

	scheduler := poller.NewScheduler(p, feedRepo, sources, exporter,
		time.Duration(appCfg.PollInterval)*time.Second, appCfg.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	serverErrChan := make(chan error, 1)
	var httpServer *http.Server
	if appCfg.Port != "" {
		handler := api.NewHandler(feedRepo, itemRepo, exporter, sources, appCfg.Version)
		httpServer = &http.Server{
			Addr:         ":" + appCfg.Port,
			Handler:      api.NewServer(handler, appCfg.APIAccessKey),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		go func() {
			slog.Info("HTTP server listening", "port", appCfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				serverErrChan <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown error", "error", err)
		}
	}

	// Scheduler stops via defer: in-flight cycles finish their store writes
	slog.Info("Shutting down")
}

func runOnce(ctx context.Context, p *poller.Poller, exporter *export.Exporter, sources *config.Store) {
	total := p.RunAll(ctx, sources.GetEnabled())
	slog.Info("Single-shot run complete",
		"fetched", total.Fetched,
		"inserted", total.Inserted,
		"skipped", total.Skipped,
		"failed", total.Failed)

	if total.Inserted > 0 {
		if written, err := exporter.WriteSnapshot(); err != nil {
			slog.Warn("Failed to write snapshot", "error", err)
		} else if written > 0 {
			slog.Info("Snapshot written", "rows", written)
		}
	}
}

func loadSources(appCfg *cfg.Cfg) (*config.Store, error) {
	store := config.NewStore()

	if appCfg.FeedsFile != "" {
		fromFile, err := config.LoadFile(appCfg.FeedsFile)
		if err != nil {
			return nil, err
		}
		if err := store.Add(fromFile...); err != nil {
			return nil, err
		}
	}

	if len(appCfg.FeedURLs) > 0 {
		fromFlags, err := config.FromURLs(appCfg.FeedURLs)
		if err != nil {
			return nil, err
		}
		if err := store.Add(fromFlags...); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the vidshelf server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidshelf/internal/cache"
	"vidshelf/internal/catalog"
	"vidshelf/internal/config"
	"vidshelf/internal/database"
	"vidshelf/internal/handlers"
	"vidshelf/internal/imaging"
	"vidshelf/internal/metrics"
	"vidshelf/internal/middleware"
	"vidshelf/internal/render"
	"vidshelf/internal/router"
	"vidshelf/internal/storage"
	"vidshelf/internal/store"
	"vidshelf/internal/tasks"
	"vidshelf/internal/thumbnail"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file; environment variables override it")
	flag.Parse()

	// Load configuration from the environment, .env and the optional file.
	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON otherwise.
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"thumbnail_mode", cfg.ThumbnailMode,
	)

	m := metrics.New()

	// Connect to the catalog database (SQLite file or PostgreSQL URL).
	db, dialect, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	m.RegisterDB(db, string(dialect))

	// Run pending migrations.
	if err := database.Migrate(db, dialect); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	disk, err := storage.NewDisk(cfg.UploadDir, cfg.ThumbnailDir)
	if err != nil {
		slog.Error("failed to prepare storage directories", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey for the page cache (optional; pages render without it).
	var pageCache *cache.PageCache
	if cfg.CacheEnabled() {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		pageCache = cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
	} else {
		slog.Warn("valkey not configured, page cache disabled")
	}

	// Thumbnail acquisition through yt-dlp and ffmpeg.
	img := imaging.Options{MaxWidth: cfg.ThumbnailMaxWidth, Quality: cfg.ThumbnailQuality}
	remote := &thumbnail.Remote{
		Extractor: thumbnail.YtDlp{Path: cfg.YtDlpPath},
		Client:    &http.Client{Timeout: cfg.FetchTimeout},
		Writer:    disk,
		Image:     img,
	}
	local := &thumbnail.Local{
		Frames: thumbnail.FFmpeg{FFmpegPath: cfg.FFmpegPath, FFprobePath: cfg.FFprobePath},
		Writer: disk,
		Image:  img,
	}

	svc := catalog.New(catalog.Deps{
		Categories:     store.NewCategoryStore(db),
		Videos:         store.NewVideoStore(db),
		Disk:           disk,
		Remote:         remote,
		Local:          local,
		AcquireTimeout: cfg.FetchTimeout,
		Pages:          pageCache,
		Metrics:        m,
	})

	// Background runner for async thumbnail mode.
	var runner *tasks.Runner
	if cfg.Async() {
		runner = tasks.NewRunner(tasks.Options{Workers: cfg.ThumbnailWorkers, Metrics: m})
		slog.Info("background thumbnail workers started", "workers", cfg.ThumbnailWorkers)
	}

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer rateLimiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		Views:          handlers.NewViews(svc, renderer, pageCache, m),
		Catalog:        handlers.NewCatalog(svc, runner),
		API:            handlers.NewAPI(svc, disk, runner),
		Metrics:        m,
		RateLimiter:    rateLimiter,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	// Uploads of hundreds of megabytes and sync thumbnail extraction need
	// generous read and write timeouts. Without a fetch limit a sync
	// request may take arbitrarily long, so the write timeout is lifted too.
	writeTimeout := cfg.FetchTimeout + 10*time.Minute
	if cfg.FetchTimeout == 0 {
		writeTimeout = 0
	}
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Minute,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests and queued thumbnails up to 30 seconds each.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	if runner != nil {
		tctx, tcancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer tcancel()
		if err := runner.Shutdown(tctx); err != nil {
			slog.Error("background tasks cancelled", "error", err)
		}
	}

	slog.Info("server stopped gracefully")
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the MochiReviews server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mochireviews/internal/config"
	"mochireviews/internal/database"
	"mochireviews/internal/handlers"
	"mochireviews/internal/logging"
	"mochireviews/internal/render"
	"mochireviews/internal/router"
	"mochireviews/internal/session"
	"mochireviews/internal/storage"
	"mochireviews/internal/store"
	"mochireviews/internal/upload"
	"mochireviews/internal/valkey"
)

func main() {
	// Load configuration from an optional YAML file and the environment.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.IsDev())
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"db_driver", cfg.DBDriver,
	)

	dialect, err := database.ParseDialect(cfg.DBDriver)
	if err != nil {
		slog.Error("invalid database driver", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(dialect, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db, dialect); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the sample review (no-op if it already exists).
	if cfg.IsDev() {
		if err := database.Seed(context.Background(), db, dialect); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Valkey is optional; without it logout only clears the cookie.
	var revoker session.Revoker
	if cfg.ValkeyEnabled() {
		valkeyClient, err := valkey.Connect(context.Background(), cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		revoker = session.NewValkeyRevoker(valkeyClient)
		slog.Info("valkey connected, session revocation enabled", "host", cfg.ValkeyHost)
	} else {
		slog.Warn("valkey not configured, sessions cannot be revoked before expiry")
	}

	passwordHash := []byte(cfg.AdminPasswordHash)
	if len(passwordHash) == 0 {
		passwordHash, err = session.HashPassword(cfg.AdminPassword)
		if err != nil {
			slog.Error("failed to hash admin password", "error", err)
			os.Exit(1)
		}
	}

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore, err := session.NewStore(session.Options{
		PasswordHash: passwordHash,
		Secret:       []byte(cfg.SessionSecret),
		Secure:       secureCookies,
		Revoker:      revoker,
	})
	if err != nil {
		slog.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}

	// Uploads go to S3-compatible storage when configured, to disk otherwise.
	var backend upload.Backend
	uploadDir := ""
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		backend = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	} else {
		disk, err := upload.NewDisk(cfg.UploadDir)
		if err != nil {
			slog.Error("failed to prepare upload directory", "error", err)
			os.Exit(1)
		}
		backend = disk
		uploadDir = disk.Dir()
		slog.Info("storing uploads on disk", "dir", uploadDir)
	}

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	postStore := store.NewPostStore(db, dialect)

	// Create handler groups with their dependencies.
	adminHandlers := handlers.NewAdmin(renderer, postStore, upload.New(backend))
	authHandlers := handlers.NewAuth(renderer, sessionStore)
	publicHandlers := handlers.NewPublic(renderer, postStore)

	r := router.New(router.Options{
		Logger:        logger,
		Sessions:      sessionStore,
		SecureCookies: secureCookies,
		UploadDir:     uploadDir,
	}, adminHandlers, authHandlers, publicHandlers)

	// ReadTimeout leaves room for 8 MB uploads on slow links.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
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

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	wodcoach "github.com/claude/wodcoach"
	"github.com/claude/wodcoach/internal/coach"
	"github.com/claude/wodcoach/internal/config"
	"github.com/claude/wodcoach/internal/models"
	"github.com/claude/wodcoach/internal/server"
	"github.com/claude/wodcoach/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	seed := flag.Bool("seed", false, "import the built-in seed data on startup")
	seedFile := flag.String("seed-file", "", "import seed data from this YAML file instead of the built-in one")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	log.Info("WODCoach starting", "version", Version)

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn, cfg.Database.MaxConns)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	if *seed || *seedFile != "" {
		s, err := loadSeed(*seedFile)
		if err != nil {
			log.Error("failed to load seed", "error", err)
			os.Exit(1)
		}
		source := "builtin"
		if *seedFile != "" {
			source = *seedFile
		}
		if err := db.ImportSeed(ctx, s, source, log); err != nil {
			log.Error("seed import failed", "error", err)
			os.Exit(1)
		}
	}

	if logs, err := db.QueryImportLogs(ctx, 1); err != nil {
		log.Warn("failed to read seed imports", "error", err)
	} else if len(logs) == 0 {
		log.Warn("no seed imported yet; run with -seed to load the movement catalog")
	} else {
		log.Info("last seed import", "source", logs[0].Source, "status", logs[0].Status, "at", logs[0].CreatedAt)
	}

	svc := coach.New(db, log,
		coach.WithParseTimeout(cfg.Parser.TimeoutDuration()),
		coach.WithMaxErrors(cfg.Parser.MaxErrors),
	)
	if err := svc.Reload(ctx); err != nil {
		log.Error("failed to load movement catalog", "error", err)
		os.Exit(1)
	}

	// Create server
	srv := server.New(svc, db, cfg.Auth.APIKey, log)
	srv.SetCORSOrigins(cfg.Server.CORSOrigins)

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

func loadSeed(path string) (*models.Seed, error) {
	if path == "" {
		return models.ParseSeed(wodcoach.DefaultSeed)
	}
	return models.LoadSeed(path)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	wodcoach "github.com/claude/wodcoach"
	"github.com/claude/wodcoach/internal/coach"
	"github.com/claude/wodcoach/internal/localstore"
	wodmcp "github.com/claude/wodcoach/internal/mcp"
	"github.com/claude/wodcoach/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	remote := flag.String("remote", "", "WODCoach server URL; when set, tools call the REST API instead of a local database")
	apiKey := flag.String("api-key", os.Getenv("WODCOACH_API_KEY"), "API key for -remote")
	dbPath := flag.String("db", defaultDBPath(), "path to the local SQLite database")
	seedFile := flag.String("seed", "", "seed YAML to import into the local database (default: built-in seed)")
	athlete := flag.String("athlete", os.Getenv("WODCOACH_ATHLETE_ID"), "default athlete UUID for workout_strategy")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("wodcoach-mcp", Version)
		return
	}

	// Stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var athleteID uuid.UUID
	if *athlete != "" {
		id, err := uuid.Parse(*athlete)
		if err != nil {
			log.Error("invalid athlete id", "athlete", *athlete, "error", err)
			os.Exit(1)
		}
		athleteID = id
	}

	var backend wodmcp.Backend
	if *remote != "" {
		backend = wodmcp.NewHTTPClient(*remote, *apiKey)
		log.Info("remote mode", "server", *remote)
	} else {
		ctx := context.Background()
		store, err := localstore.Open(*dbPath)
		if err != nil {
			log.Error("failed to open store", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer store.Close()

		seed, err := loadSeed(*seedFile)
		if err != nil {
			log.Error("failed to load seed", "error", err)
			os.Exit(1)
		}
		if err := store.ImportSeed(ctx, seed); err != nil {
			log.Error("seed import failed", "error", err)
			os.Exit(1)
		}
		backend = coach.New(store, log)
		log.Info("local mode", "db", *dbPath)
	}

	s := wodmcp.New(backend, Version, log)
	err := server.ServeStdio(s, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return wodmcp.WithAthleteID(ctx, athleteID)
	}))
	if err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ":memory:"
	}
	return filepath.Join(home, ".wodcoach", "wodcoach.db")
}

func loadSeed(path string) (*models.Seed, error) {
	if path == "" {
		return models.ParseSeed(wodcoach.DefaultSeed)
	}
	return models.LoadSeed(path)
}

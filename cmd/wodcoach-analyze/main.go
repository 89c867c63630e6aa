package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	wodcoach "github.com/claude/wodcoach"
	"github.com/claude/wodcoach/internal/coach"
	"github.com/claude/wodcoach/internal/localstore"
	"github.com/claude/wodcoach/internal/models"
	"github.com/claude/wodcoach/internal/strategy"
	"github.com/google/uuid"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	dbPath := flag.String("db", defaultDBPath(), "path to the local SQLite database (\":memory:\" for none)")
	seedFile := flag.String("seed", "", "seed YAML to import (default: built-in seed)")
	athlete := flag.String("athlete", "", "athlete UUID; when set, a full strategy is built instead of a parse")
	file := flag.String("file", "-", "workout text file, or - for stdin")
	benchmark := flag.String("benchmark", "", "rank -value on this benchmark instead of analyzing a workout")
	value := flag.Float64("value", 0, "benchmark result for -benchmark")
	gender := flag.String("gender", "", "gender for -benchmark")
	experience := flag.String("experience", "", "experience level for -benchmark")
	verbose := flag.Bool("v", false, "debug logging")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("wodcoach-analyze", Version)
		return
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx := context.Background()
	store, err := openStore(ctx, *dbPath, *seedFile)
	if err != nil {
		log.Error("failed to open store", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	svc := coach.New(store, log)

	if *benchmark != "" {
		res, err := svc.Percentile(ctx, *benchmark, *value, *gender, *experience)
		if err != nil {
			log.Error("percentile failed", "benchmark", *benchmark, "error", err)
			os.Exit(1)
		}
		printJSON(res)
		return
	}

	text, err := readInput(*file)
	if err != nil {
		log.Error("failed to read workout", "file", *file, "error", err)
		os.Exit(1)
	}

	if *athlete == "" {
		res, err := svc.Parse(ctx, text)
		if err != nil {
			log.Error("parse failed", "error", err)
			os.Exit(1)
		}
		printJSON(res)
		if !res.IsValid() {
			os.Exit(2)
		}
		return
	}

	id, err := uuid.Parse(*athlete)
	if err != nil {
		log.Error("invalid athlete id", "athlete", *athlete, "error", err)
		os.Exit(1)
	}
	rep, err := svc.Strategy(ctx, id, text)
	switch {
	case errors.Is(err, strategy.ErrInvalidWorkout):
		printJSON(rep)
		os.Exit(2)
	case err != nil:
		log.Error("strategy failed", "athlete", id, "error", err)
		os.Exit(1)
	}
	printJSON(rep)
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ":memory:"
	}
	return filepath.Join(home, ".wodcoach", "wodcoach.db")
}

// openStore opens the database and imports the seed into it.
func openStore(ctx context.Context, path, seedFile string) (*localstore.Store, error) {
	store, err := localstore.Open(path)
	if err != nil {
		return nil, err
	}
	var seed *models.Seed
	if seedFile == "" {
		seed, err = models.ParseSeed(wodcoach.DefaultSeed)
	} else {
		seed, err = models.LoadSeed(seedFile)
	}
	if err == nil {
		err = store.ImportSeed(ctx, seed)
	}
	if err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

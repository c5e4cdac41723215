package main

import (
	"cmp"
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hymnal/internal/auth"
	"github.com/desertthunder/hymnal/internal/catalog"
	"github.com/desertthunder/hymnal/internal/likes"
	"github.com/desertthunder/hymnal/internal/repositories"
	"github.com/desertthunder/hymnal/internal/services"
	"github.com/desertthunder/hymnal/internal/shared"
)

// kvStore is what sessions and liked sets are persisted in.
type kvStore interface {
	auth.Store
	likes.Store
}

func main() {
	logger := shared.NewLogger(nil)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to load .env", "error", err)
	}

	configPath := cmp.Or(os.Getenv("HYMNAL_CONFIG"), "config.toml")
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}

	ctx := context.Background()
	opts, closeDB := wire(ctx, config, configPath, logger)

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "hymnal",
		Usage:    "Browse, translate and write hymns",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	err := app.Run(ctx, os.Args)
	closeDB()
	if err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// wire builds the runner's collaborators from config.
//
// When the database cannot be opened the seeded in-memory catalog and an in-memory store are used,
// so browsing still works but sessions and favorites last only for the process.
func wire(ctx context.Context, config *shared.Config, configPath string, logger *log.Logger) (RunnerOpts, func()) {
	httpClient := &http.Client{}
	closeDB := func() {}

	var store catalog.Store
	var kv kvStore

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		logger.Warn("database unavailable, using in-memory storage", "path", config.Database.Path, "error", err)
		memory, seedErr := catalog.NewSeededStore()
		if seedErr != nil {
			logger.Error("failed to load seed catalog", "error", seedErr)
		} else {
			store = memory
		}
		kv = repositories.NewMemoryKV()
	} else {
		closeDB = func() { db.Close() }

		hymns := repositories.NewHymnRepository(db)
		if seed, err := catalog.Seed(); err != nil {
			logger.Error("failed to load seed catalog", "error", err)
		} else if added, err := hymns.Seed(ctx, seed); err != nil {
			logger.Warn("failed to seed catalog", "error", err)
		} else if added > 0 {
			logger.Debug("seeded catalog", "added", added)
		}
		store = hymns
		kv = repositories.NewKVRepository(db)
	}

	generator := services.NewAIClient(services.AIClientOptions{
		GatewayURL:  config.AI.GatewayURL,
		HTTPClient:  httpClient,
		Timeout:     config.AI.Timeout(),
		MaxFailures: config.AI.Breaker.MaxFailures,
		Cooldown:    time.Duration(config.AI.Breaker.CooldownSeconds) * time.Second,
		Logger:      shared.WithLogger(logger, "component", "ai"),
	})

	identity := auth.NewOAuthProvider(auth.Options{
		Identity:   config.Identity,
		Server:     config.Server,
		Store:      kv,
		HTTPClient: httpClient,
		Logger:     shared.WithLogger(logger, "component", "auth"),
	})
	if err := identity.Restore(ctx); err != nil {
		logger.Warn("failed to restore session", "error", err)
	}

	return RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Generator:  generator,
		Catalog:    store,
		Likes:      likes.New(kv, identity, shared.WithLogger(logger, "component", "likes")),
		Auth:       identity,
		HTTPClient: httpClient,
		Logger:     logger,
	}, closeDB
}

package main

import (
	"fmt"
	"os"
	"time"

	"nightbid/internal/config"
	"nightbid/internal/engine"
	"nightbid/internal/repository"
	"nightbid/internal/server"
	"nightbid/internal/ws"
	"nightbid/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // optional .env, real env wins

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	utils.ConfigureLogger(cfg.Logging.Level, "logs")

	store, err := openStore(cfg)
	if err != nil {
		utils.Fatal("Failed to open session store", map[string]any{"error": err.Error()})
	}

	hub := ws.NewHub()

	eng := engine.NewEngine(store, hub)
	defer eng.Close()

	if err := eng.LoadActiveSessions(); err != nil {
		utils.Fatal("Failed to restore active sessions", map[string]any{"error": err.Error()})
	}

	defaultDuration := time.Duration(cfg.Auction.SessionDurationMin) * time.Minute
	router := server.SetupRouter(eng, hub, defaultDuration)

	addr := ":" + cfg.Server.Port
	utils.Info("Starting auction server", map[string]any{
		"addr":    addr,
		"storage": cfg.Storage.Driver,
	})
	if err := router.Run(addr); err != nil {
		utils.Fatal("Failed to start server", map[string]any{"error": err.Error()})
	}
}

// openStore builds the session store selected by configuration.
func openStore(cfg *config.Config) (repository.SessionStore, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return repository.NewSQLiteStore(cfg.Storage.Path)
	default:
		return repository.NewMemoryStore(), nil
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tokkalabs/pokecatalog/internal/engine"
	"github.com/tokkalabs/pokecatalog/internal/pokeapi"
	"github.com/tokkalabs/pokecatalog/internal/services/location"
	"github.com/tokkalabs/pokecatalog/internal/services/nature"
	"github.com/tokkalabs/pokecatalog/internal/services/pokemon"
	"github.com/tokkalabs/pokecatalog/pkg/config"
	"github.com/tokkalabs/pokecatalog/pkg/database"
	"github.com/tokkalabs/pokecatalog/pkg/logger"
)

var (
	port           = flag.Int("port", 0, "The server port (overrides SERVER_PORT)")
	serviceVersion = "1.0.0"
)

func main() {
	flag.Parse()

	log := logger.New("pokecatalog", serviceVersion)

	cfg := config.FromEnv()
	if *port != 0 {
		cfg.Update(map[string]string{"server.port": fmt.Sprintf("%d", *port)})
	}

	// Create context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to storage, waiting for it to come up, and ensure the schema.
	// An unreachable backend is fatal: the service must not serve traffic
	// against half-initialized storage.
	db, err := pokemon.Initialize(ctx, database.FromGlobalConfig(cfg), log)
	if err != nil {
		stop()
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer db.Close()

	client := pokeapi.NewClient(
		cfg.Get("pokeapi.base_url"),
		cfg.GetDuration("pokeapi.timeout", 10*time.Second),
		log,
	)

	pokemonSvc := pokemon.NewService(db, client, log)
	locationSvc := location.NewService(db, client, log)
	natureSvc := nature.NewService(db, client, log)

	e := engine.NewEngine(cfg, log, db, pokemonSvc, locationSvc, natureSvc, locationSvc)

	if err := e.Run(ctx); err != nil {
		stop()
		log.Fatalf("Failed to run service: %v", err)
	}

	log.Info("Service stopped")
}

package pokemon

import (
	"context"
	"fmt"
	"time"

	"github.com/tokkalabs/pokecatalog/pkg/database"
	"github.com/tokkalabs/pokecatalog/pkg/logger"
	"github.com/tokkalabs/pokecatalog/pkg/retry"
)

// Startup backoff schedule against a storage backend that is still coming up
const (
	connectAttempts  = 10
	connectBaseDelay = 2 * time.Second
	connectMaxDelay  = 30 * time.Second
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS pokemon (
		pokemon_id               INTEGER PRIMARY KEY,
		name                     TEXT NOT NULL,
		base_experience          INTEGER,
		height                   INTEGER,
		"order"                  INTEGER,
		weight                   INTEGER,
		location_area_encounters TEXT,
		location_name            TEXT,
		nature                   TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS pokemon_types (
		pokemon_id INTEGER NOT NULL REFERENCES pokemon(pokemon_id) ON DELETE CASCADE,
		type_name  TEXT NOT NULL,
		type_url   TEXT NOT NULL,
		PRIMARY KEY (pokemon_id, type_name)
	)`,
}

// Initialize connects to Postgres, retrying with exponential backoff while
// the backend is still starting up, then ensures the pokemon tables exist.
// Exhausting the attempt ceiling is fatal for the caller: the returned error
// means the process must not start serving.
func Initialize(ctx context.Context, cfg database.PostgreSQLConfig, log *logger.Logger) (*database.PostgreSQL, error) {
	retrier := retry.New(retry.Config{
		MaxAttempts: connectAttempts,
		BaseDelay:   connectBaseDelay,
		Multiplier:  2,
		MaxDelay:    connectMaxDelay,
	})

	var db *database.PostgreSQL
	err := retrier.Do(ctx, func(ctx context.Context) error {
		var connErr error
		db, connErr = database.New(ctx, cfg)
		if connErr != nil {
			log.Warnf("Storage not ready (attempt %d/%d): %v", retrier.Attempt(), connectAttempts, connErr)
		}
		return connErr
	})
	if err != nil {
		return nil, fmt.Errorf("storage unreachable: %w", err)
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Infof("Storage ready after %d attempt(s)", retrier.Attempt())
	return db, nil
}

// EnsureSchema creates the pokemon tables if they do not exist. Every
// statement is safe to re-run.
func EnsureSchema(ctx context.Context, db *database.PostgreSQL) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Pool().Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

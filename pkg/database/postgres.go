package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tokkalabs/pokecatalog/pkg/config"
)

// PostgreSQL represents a PostgreSQL database connection
type PostgreSQL struct {
	pool *pgxpool.Pool
}

type PostgreSQLConfig struct {
	URL               string
	User              string
	Password          string
	Host              string
	Port              int
	Database          string
	SSLMode           string
	MaxConnections    int32
	ConnectionTimeout time.Duration
}

// New creates a new PostgreSQL instance
func New(ctx context.Context, cfg PostgreSQLConfig) (*PostgreSQL, error) {
	// A full DSN takes precedence over the individual fields
	if cfg.URL == "" {
		// Validate required configuration
		if cfg.Database == "" {
			return nil, fmt.Errorf("database name is required")
		}
		if cfg.Host == "" {
			return nil, fmt.Errorf("database host is required")
		}
		if cfg.User == "" {
			return nil, fmt.Errorf("database user is required")
		}
	}

	// Use pgxpool.ParseConfig to handle special characters in passwords
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection config: %w", err)
	}

	if cfg.URL == "" {
		// Set connection parameters individually to avoid URL parsing issues
		poolConfig.ConnConfig.Host = cfg.Host
		poolConfig.ConnConfig.Port = uint16(cfg.Port)
		poolConfig.ConnConfig.Database = cfg.Database
		poolConfig.ConnConfig.User = cfg.User
		poolConfig.ConnConfig.Password = cfg.Password
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectionTimeout

		// Set SSL mode through TLS config
		switch cfg.SSLMode {
		case "disable":
			poolConfig.ConnConfig.TLSConfig = nil
		case "require", "prefer":
			// Use default TLS config for these modes
			// pgx will handle the TLS negotiation automatically
		default:
			// For other SSL modes, use default behavior
		}
	}

	// Set pool configuration
	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = cfg.MaxConnections
	}
	if cfg.ConnectionTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.ConnectionTimeout
	}

	// Create the connection pool
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgreSQL{pool: pool}, nil
}

// FromGlobalConfig creates a PostgreSQL config from the global configuration
func FromGlobalConfig(cfg *config.Config) PostgreSQLConfig {
	return PostgreSQLConfig{
		URL:               cfg.Get("database.url"),
		User:              cfg.Get("database.user"),
		Password:          cfg.Get("database.password"),
		Host:              cfg.Get("database.host"),
		Port:              cfg.GetInt("database.port", 5432),
		Database:          cfg.Get("database.name"),
		SSLMode:           cfg.Get("database.sslmode"),
		MaxConnections:    int32(cfg.GetInt("database.max_connections", 10)),
		ConnectionTimeout: 5 * time.Second,
	}
}

// Pool returns the underlying connection pool
func (db *PostgreSQL) Pool() *pgxpool.Pool {
	return db.pool
}

// Ping verifies that the database still accepts connections
func (db *PostgreSQL) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close closes the database connection
func (db *PostgreSQL) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

package db

import (
	"context"
	"fmt"
	"log"

	"lead-backend/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens the pgx pool and verifies the database is reachable.
// Startup without a database is useless, so failures are fatal.
func Connect(cfg *config.Config) *pgxpool.Pool {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
	)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("[DB] Failed to create pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("[DB] Failed to reach %s:%d/%s: %v", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, err)
	}

	log.Printf("[DB] Connected to %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	return pool
}

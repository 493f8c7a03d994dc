package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/partsflow/procurement-api/internal/platform/migrations"
	platformpostgres "github.com/partsflow/procurement-api/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot migrate")
	}

	if err := migrations.Run(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Printf("migrations completed")
}

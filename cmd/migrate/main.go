// Package main applies the embedded PostgreSQL and ClickHouse migrations.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"bridge-port/internal/storage/migrations"
	"bridge-port/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	timeout := flag.Duration("timeout", 2*time.Minute, "Migration timeout")

	flag.Parse()

	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags)

	if *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("at least one of --postgres-dsn or --clickhouse-dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *postgresDSN != "" {
		pool, err := postgres.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Failed to connect to postgres: %v", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			logger.Fatalf("Postgres migrations failed: %v", err)
		}
		pool.Close()
		logger.Println("Postgres migrations applied")
	}

	if *clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("ClickHouse migrations failed: %v", err)
		}
		conn.Close()
		logger.Println("ClickHouse migrations applied")
	}
}

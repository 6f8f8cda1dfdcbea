package main

import (
	"context"
	"log/slog"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookstore/internal/config"
	"bookstore/internal/logger"
	"bookstore/internal/storage/books"
)

func main() {
	_, thisFile, _, _ := runtime.Caller(0)

	cfg, err := config.Load()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	err = logger.SetupSLog(cfg.SlogLevel(), cfg.LogFormat, path.Dir(path.Dir(path.Dir(thisFile))), nil)
	if err != nil {
		slog.Error("Failed to set up logging: " + err.Error())
		os.Exit(1)
	}

	pgCfg, err := pgxpool.ParseConfig(cfg.DatabaseUrl)
	if err != nil {
		slog.Error("Failed to parse DATABASE_URL: " + err.Error())
		os.Exit(1)
	}

	pgCfg.ConnConfig.Tracer = logger.NewPGXTracer(slog.Default())

	pg, err := pgxpool.NewWithConfig(context.Background(), pgCfg)
	if err != nil {
		slog.Error("failed to create postgres pool: " + err.Error())
		os.Exit(1)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := books.Migrate(ctx, pg); err != nil {
		slog.Error("Migration failed: " + err.Error())
		pg.Close()
		os.Exit(1)
	}

	slog.Info("Books schema is up to date")
}

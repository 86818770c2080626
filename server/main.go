package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/wbs"
	"github.com/meikuraledutech/wbs/api"
	"github.com/meikuraledutech/wbs/config"
	"github.com/meikuraledutech/wbs/logging"
	"github.com/meikuraledutech/wbs/mcp"
	"github.com/meikuraledutech/wbs/postgres"
	"github.com/meikuraledutech/wbs/schedule"
	"github.com/meikuraledutech/wbs/sqlite"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.Fatalf("Event ID: CONFIG_ERROR, Description: %v", err)
	}

	log, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, System: "wbs"})
	if err != nil {
		logrus.Fatalf("Event ID: LOGGER_INIT_FAILED, Description: %v", err)
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: %v", err)
	}
	defer closeStore()

	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("Event ID: SCHEMA_FAILED, Description: %v", err)
	}
	log.WithField("driver", cfg.Driver).Info("Event ID: DB_CONNECTED")

	calc := schedule.NewCalculator(store, log)

	if cfg.Transport == config.TransportMCP {
		log.Info("Event ID: SERVICE_START, Description: serving MCP on stdio")
		if err := mcp.Serve(mcp.NewServer(store, calc)); err != nil {
			log.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: %v", err)
		}
		return
	}

	app := api.New(store, calc, log)
	log.Infof("Event ID: SERVICE_START, Description: listening on %s", cfg.Listen)
	if err := app.Listen(cfg.Listen); err != nil {
		log.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (wbs.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		return postgres.New(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}

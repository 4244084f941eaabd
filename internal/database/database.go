// Package database connects the service to its document datastore.
//
// The driver is chosen from the configured URI scheme:
//   - mongodb://, mongodb+srv:// : MongoDB (the default)
//   - postgres://, postgresql:// : PostgreSQL, documents kept in a JSONB table
//
// Both drivers are exposed through the Datastore interface so the rest of
// the application only ever needs to ping and close the connection.
package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/dca-api/internal/config"
	loggerConfig "github.com/deppfellow/dca-api/internal/logger"
)

// Driver names the backend behind a Datastore.
type Driver string

const (
	DriverMongo    Driver = "mongodb"
	DriverPostgres Driver = "postgres"
)

// Datastore is the connection handle the server holds on to.
type Datastore interface {
	// Ping checks the datastore is reachable within ctx.
	Ping(ctx context.Context) error
	// Close releases every connection.
	Close(ctx context.Context) error
	Driver() Driver
}

// DriverFor picks the driver matching the scheme of uri.
func DriverFor(uri string) (Driver, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid database uri: %w", err)
	}

	switch parsed.Scheme {
	case "mongodb", "mongodb+srv":
		return DriverMongo, nil
	case "postgres", "postgresql":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database uri scheme %q", parsed.Scheme)
	}
}

// New connects to the configured datastore and pings it so startup fails
// fast when it is unreachable.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (Datastore, error) {
	driver, err := DriverFor(cfg.Database.URI)
	if err != nil {
		return nil, err
	}

	var store Datastore
	switch driver {
	case DriverPostgres:
		store, err = NewPostgresStore(ctx, cfg, logger, loggerService)
	default:
		store, err = NewMongoStore(cfg, logger)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.PingTimeout)*time.Second)
	defer cancel()

	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("driver", string(driver)).Msg("connected to the database")

	return store, nil
}

package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/deppfellow/dca-api/internal/config"
)

// MongoStore is the MongoDB backed Datastore.
type MongoStore struct {
	Client *mongo.Client
	name   string
	log    *zerolog.Logger
}

// NewMongoStore creates the client. The driver connects lazily, so
// reachability is only known after Ping.
func NewMongoStore(cfg *config.Config, logger *zerolog.Logger) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetAppName(cfg.Observability.ServiceName)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	return &MongoStore{
		Client: client,
		name:   cfg.Database.Name,
		log:    logger,
	}, nil
}

// Database returns the handle of the configured database.
func (s *MongoStore) Database() *mongo.Database {
	return s.Client.Database(s.name)
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (s *MongoStore) Close(ctx context.Context) error {
	s.log.Info().Msg("closing mongo client")
	return s.Client.Disconnect(ctx)
}

func (s *MongoStore) Driver() Driver {
	return DriverMongo
}

package store

import (
	"context"
	"fmt"

	"github.com/fabfab/study-agent/config"
	"github.com/fabfab/study-agent/database"
	"github.com/fabfab/study-agent/logger"
)

// Open connects the driver selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config, log *logger.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		return NewMemory(), nil
	case config.StoreDriverPostgres, "":
		pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		s, err := NewPostgres(ctx, pool, log)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil
	case config.StoreDriverMongo:
		client, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		s, err := NewMongo(ctx, client, cfg.MongoDatabase)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

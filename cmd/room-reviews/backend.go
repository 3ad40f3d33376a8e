package main

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/joestump/room-reviews/internal/config"
	"github.com/joestump/room-reviews/internal/db"
	"github.com/joestump/room-reviews/internal/docstore"
	"github.com/joestump/room-reviews/internal/log"
	"github.com/joestump/room-reviews/internal/store"
)

// backend is the set of stores selected by db.driver.
type backend struct {
	rooms   store.RoomStore
	reviews store.ReviewStore
	users   store.UserStore
	// mongo is set only for db.driver=mongo; gridfs uploads reuse it.
	mongoDB *mongo.Database
	close   func() error
}

// openBackend connects to the configured database and, for SQL drivers,
// runs pending migrations. For mongo it ensures indexes.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.DB.Driver == "mongo" {
		client, err := docstore.Connect(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, err
		}
		database := client.Database(cfg.DB.Name)
		if err := docstore.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info(ctx, "connected to mongo", log.String("database", cfg.DB.Name))
		return &backend{
			rooms:   docstore.NewRoomStore(database),
			reviews: docstore.NewReviewStore(database),
			users:   docstore.NewUserStore(database),
			mongoDB: database,
			close:   func() error { return client.Disconnect(context.Background()) },
		}, nil
	}

	if !db.IsSQL(cfg.DB.Driver) {
		return nil, fmt.Errorf("unsupported db driver: %q", cfg.DB.Driver)
	}
	database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database, cfg.DB.Driver); err != nil {
		_ = database.Close()
		return nil, err
	}
	log.Info(ctx, "connected to database", log.String("driver", cfg.DB.Driver))
	return &backend{
		rooms:   store.NewSQLRoomStore(database),
		reviews: store.NewSQLReviewStore(database),
		users:   store.NewSQLUserStore(database),
		close:   database.Close,
	}, nil
}

// setupLogger installs the process-wide logger from cfg.
func setupLogger(cfg *config.Config) (func(), error) {
	logger, err := log.New(log.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return nil, err
	}
	log.SetGlobal(logger)
	return func() { _ = logger.Sync() }, nil
}

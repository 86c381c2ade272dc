package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	moviesCollection    = "movies"
	bookmarksCollection = "bookmarks"
	configCollection    = "app_config"
)

type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func New(ctx context.Context, uri string, db string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Mongo{client, client.Database(db)}, nil
}

// Init creates the collections and the indexes the upserts rely on.
func (m *Mongo) Init(ctx context.Context) error {
	collections := []string{moviesCollection, bookmarksCollection, configCollection}
	for _, col := range collections {
		err := m.Database.CreateCollection(ctx, col)
		if err != nil && !errors.As(err, &mongo.CommandError{}) {
			return err
		}
	}

	indexes := map[string]mongo.IndexModel{
		moviesCollection: {
			Keys:    bson.D{{Key: "movie_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		bookmarksCollection: {
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "movie_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		configCollection: {
			Keys: bson.D{{Key: "updated_at", Value: -1}},
		},
	}

	for col, index := range indexes {
		if _, err := m.Database.Collection(col).Indexes().CreateOne(ctx, index); err != nil {
			return fmt.Errorf("failed to create %v index: %w", col, err)
		}
	}

	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

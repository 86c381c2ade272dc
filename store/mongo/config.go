package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/movienight/movienight/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type configStore struct {
	col *mongo.Collection
}

func ConfigStore(db *mongo.Database) store.ConfigStore {
	return &configStore{col: db.Collection(configCollection)}
}

// LatestConfig returns the most recently updated app_config document.
func (c *configStore) LatestConfig(ctx context.Context) (*store.AppConfig, error) {
	res := c.col.FindOne(
		ctx,
		bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: store.Descending}}),
	)

	var cfg store.AppConfig
	err := res.Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrConfigNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode app config: %w", err)
	}

	return &cfg, nil
}

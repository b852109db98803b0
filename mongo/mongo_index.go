package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go.uber.org/zap"
)

// CreateIndexes sets up the evaluation collection indexes at startup. The
// unique compound index on (session_id, anonymous_id) is what makes the
// recorder's upsert key authoritative at the store level.
func CreateIndexes(db Database, collection string, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	coll := db.Collection(collection)
	createIndex(ctx, coll, bson.D{
		{Key: "session_id", Value: 1},
		{Key: "anonymous_id", Value: 1},
	}, "session_item_unique", true, logger)
	createIndex(ctx, coll, bson.D{{Key: "timestamp", Value: -1}}, "timestamp", false, logger)
	createIndex(ctx, coll, bson.D{{Key: "category", Value: 1}}, "category", false, logger)
	createIndex(ctx, coll, bson.D{{Key: "score", Value: -1}}, "score", false, logger)
}

func createIndex(ctx context.Context, coll Collection, keys bson.D, name string, unique bool, logger *zap.Logger) {
	opts := options.Index().SetName(name)
	if unique {
		opts.SetUnique(true)
	}
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts}); err != nil {
		logger.Warn("index creation failed", zap.String("index", name), zap.Error(err))
	}
}

package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamaepingo/voice-eval/domain"
	"github.com/mamaepingo/voice-eval/mongo"
)

func NewMongoClient(env *Env, logger *zap.Logger) (mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.NewClient(env.MongoURI)
	if err != nil {
		return nil, &domain.ConfigError{Op: "document store client", Err: err}
	}
	if err := client.Connect(ctx); err != nil {
		return nil, &domain.ConfigError{Op: "document store connect", Err: err}
	}
	if err := client.Ping(ctx); err != nil {
		return nil, &domain.ConfigError{Op: "document store ping", Err: err}
	}

	logger.Info("connected to document store", zap.String("database", env.MongoDatabase))
	return client, nil
}

func CloseMongoClient(client mongo.Client, logger *zap.Logger) {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Warn("document store disconnect failed", zap.Error(err))
		return
	}
	logger.Info("document store connection closed")
}

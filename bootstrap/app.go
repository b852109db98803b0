package bootstrap

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/mamaepingo/voice-eval/mongo"
)

type Application struct {
	Env       *Env
	Logger    *zap.Logger
	Mongo     mongo.Client
	S3        *s3.Client
	S3Presign *s3.PresignClient
}

func App() (*Application, error) {
	env, err := NewEnv()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(env.AppEnv)

	client, err := NewMongoClient(env, logger)
	if err != nil {
		return nil, err
	}

	s3Client, presign, err := NewS3Clients(context.Background(), env)
	if err != nil {
		CloseMongoClient(client, logger)
		return nil, err
	}

	mongo.CreateIndexes(client.Database(env.MongoDatabase), env.EvaluationCollection, logger)

	return &Application{
		Env:       env,
		Logger:    logger,
		Mongo:     client,
		S3:        s3Client,
		S3Presign: presign,
	}, nil
}

func (app *Application) Close() {
	CloseMongoClient(app.Mongo, app.Logger)
	_ = app.Logger.Sync()
}

package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamaepingo/voice-eval/domain"
	"github.com/mamaepingo/voice-eval/mongo"
)

type evaluationRepository struct {
	db         mongo.Database
	collection string
}

func NewEvaluationRepository(db mongo.Database, collection string) domain.EvaluationRepository {
	return &evaluationRepository{
		db:         db,
		collection: collection,
	}
}

func (r *evaluationRepository) Upsert(ctx context.Context, rec *domain.EvaluationRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	coll := r.db.Collection(r.collection)

	filter := bson.D{{Key: "_id", Value: rec.DocumentID()}}
	update := bson.D{{Key: "$set", Value: rec}}
	opts := options.Update().SetUpsert(true)

	_, err := coll.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *evaluationRepository) FetchAll(ctx context.Context) ([]domain.EvaluationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	coll := r.db.Collection(r.collection)

	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	records := make([]domain.EvaluationRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *evaluationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return r.db.Collection(r.collection).CountDocuments(ctx, bson.D{})
}

package domain

import (
	"context"
	"time"
)

// EvaluationRecord is one persisted rating. The document key is
// session_id + anonymous_id, so re-rating the same clip in the same session
// overwrites in place instead of appending history.
type EvaluationRecord struct {
	AnonymousID      string         `bson:"anonymous_id" json:"anonymous_id" validate:"required"`
	OriginalFilename string         `bson:"original_filename" json:"original_filename" validate:"required"`
	Score            int            `bson:"score" json:"score" validate:"min=1,max=5"`
	Category         string         `bson:"category" json:"category"`
	Duration         DurationBucket `bson:"duration" json:"duration"`
	SessionID        string         `bson:"session_id" json:"session_id" validate:"required"`
	Timestamp        time.Time      `bson:"timestamp" json:"timestamp"`
	UserAgent        string         `bson:"user_agent" json:"user_agent"`
}

// DocumentID is the composite upsert key.
func (r *EvaluationRecord) DocumentID() string {
	return r.SessionID + "_" + r.AnonymousID
}

type EvaluationRepository interface {
	// Upsert writes the record at its composite key, inserting or
	// overwriting the prior document for that key.
	Upsert(ctx context.Context, rec *EvaluationRecord) error

	// FetchAll streams every document in the evaluation collection.
	FetchAll(ctx context.Context) ([]EvaluationRecord, error)

	Count(ctx context.Context) (int64, error)
}

// EvaluationUsecase validates and records a single rating event.
type EvaluationUsecase interface {
	Record(ctx context.Context, rec *EvaluationRecord) error
}

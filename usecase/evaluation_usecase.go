package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mamaepingo/voice-eval/domain"
)

type evaluationUsecase struct {
	repo     domain.EvaluationRepository
	validate *validator.Validate
	timeout  time.Duration
}

func NewEvaluationUsecase(repo domain.EvaluationRepository, timeout time.Duration) domain.EvaluationUsecase {
	return &evaluationUsecase{
		repo:     repo,
		validate: validator.New(),
		timeout:  timeout,
	}
}

// Record validates the rating and upserts it at the session+item key.
// Rejected input is never written; the timestamp is server-assigned here so
// a re-rating overwrites the prior one.
func (uc *evaluationUsecase) Record(ctx context.Context, rec *domain.EvaluationRecord) error {
	if err := uc.validate.Struct(rec); err != nil {
		return fmt.Errorf("%w: score=%d: %v", domain.ErrInvalidInput, rec.Score, err)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	rec.Timestamp = time.Now().UTC()
	if err := uc.repo.Upsert(ctx, rec); err != nil {
		return &domain.TransientError{Op: "persist evaluation", Err: err}
	}
	return nil
}

package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamaepingo/voice-eval/domain"
)

type sessionUsecase struct {
	sessions domain.SessionRepository
	catalog  domain.CatalogUsecase
	recorder domain.EvaluationUsecase
	timeout  time.Duration
	logger   *zap.Logger
}

func NewSessionUsecase(
	sessions domain.SessionRepository,
	catalog domain.CatalogUsecase,
	recorder domain.EvaluationUsecase,
	timeout time.Duration,
	logger *zap.Logger,
) domain.SessionUsecase {
	return &sessionUsecase{
		sessions: sessions,
		catalog:  catalog,
		recorder: recorder,
		timeout:  timeout,
		logger:   logger,
	}
}

func (uc *sessionUsecase) Start(ctx context.Context) (*domain.SessionState, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	items, err := uc.catalog.Build(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	state := &domain.SessionState{
		ID:          uuid.NewString(),
		Catalog:     items,
		Evaluations: make(map[string]int),
		CreatedAt:   now,
		LastSeen:    now,
	}
	if err := uc.sessions.Put(ctx, state); err != nil {
		return nil, err
	}

	uc.logger.Info("session started",
		zap.String("session_id", state.ID),
		zap.Int("catalog_size", len(items)))
	return state, nil
}

func (uc *sessionUsecase) Get(ctx context.Context, id string) (*domain.SessionState, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.sessions.Get(ctx, id)
}

// Submit records the score for the current item, then advances. The write
// happens before the cursor moves: a failed write surfaces as an error and
// the session stays on the same item so the rating is not silently lost.
// The whole transition runs inside the store's Update, so a double-clicked
// submit rates two consecutive items instead of racing on one.
func (uc *sessionUsecase) Submit(ctx context.Context, id string, score int, userAgent string) (*domain.SessionState, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	return uc.sessions.Update(ctx, id, func(state *domain.SessionState) error {
		item, ok := state.Current()
		if !ok {
			return domain.ErrNoCurrentItem
		}

		rec := &domain.EvaluationRecord{
			AnonymousID:      item.AnonymousID,
			OriginalFilename: item.OriginalName,
			Score:            score,
			Category:         item.Category,
			Duration:         item.Duration,
			SessionID:        state.ID,
			UserAgent:        userAgent,
		}
		if err := uc.recorder.Record(ctx, rec); err != nil {
			return err
		}

		state.Evaluations[item.AnonymousID] = score
		state.CurrentIndex++
		return nil
	})
}

func (uc *sessionUsecase) Skip(ctx context.Context, id string) (*domain.SessionState, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	return uc.sessions.Update(ctx, id, func(state *domain.SessionState) error {
		if state.Complete() {
			return domain.ErrNoCurrentItem
		}
		state.CurrentIndex++
		return nil
	})
}

func (uc *sessionUsecase) Previous(ctx context.Context, id string) (*domain.SessionState, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	return uc.sessions.Update(ctx, id, func(state *domain.SessionState) error {
		if state.CurrentIndex == 0 {
			return domain.ErrNoPreviousItem
		}
		state.CurrentIndex--
		return nil
	})
}

// Next is only enabled once the current item carries a recorded score; an
// unrated item must be rated or skipped, never walked past.
func (uc *sessionUsecase) Next(ctx context.Context, id string) (*domain.SessionState, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	return uc.sessions.Update(ctx, id, func(state *domain.SessionState) error {
		item, ok := state.Current()
		if !ok {
			return domain.ErrNoCurrentItem
		}
		if _, rated := state.Evaluations[item.AnonymousID]; !rated {
			return domain.ErrNotRated
		}
		state.CurrentIndex++
		return nil
	})
}

func (uc *sessionUsecase) Reset(ctx context.Context, id string) (*domain.SessionState, error) {
	if id != "" {
		deleteCtx, cancel := context.WithTimeout(ctx, uc.timeout)
		_ = uc.sessions.Delete(deleteCtx, id)
		cancel()
	}
	return uc.Start(ctx)
}

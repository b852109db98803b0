package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/mamaepingo/voice-eval/domain"
)

// fakeObjectStorage serves a canned listing and scripted signed URLs.
type fakeObjectStorage struct {
	objects   []domain.ObjectInfo
	listErr   error
	signURLs  []string
	signCalls int
	putKeys   []string
}

func (f *fakeObjectStorage) ListObjects(_ context.Context, _, _ string) ([]domain.ObjectInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.objects, nil
}

func (f *fakeObjectStorage) SignGetURL(_ context.Context, _, key string, _ time.Duration) (string, error) {
	f.signCalls++
	if len(f.signURLs) > 0 {
		url := f.signURLs[0]
		if len(f.signURLs) > 1 {
			f.signURLs = f.signURLs[1:]
		}
		return url, nil
	}
	return "https://signed.example.com/" + key, nil
}

func (f *fakeObjectStorage) PutObject(_ context.Context, _, key string, _ io.Reader, _, _ string) error {
	f.putKeys = append(f.putKeys, key)
	return nil
}

func (f *fakeObjectStorage) EnsureBucket(_ context.Context, _ string) error { return nil }

// memEvaluationRepo is an in-memory document store keyed like the real one.
type memEvaluationRepo struct {
	mu   sync.Mutex
	docs map[string]domain.EvaluationRecord
	fail bool
}

func newMemEvaluationRepo() *memEvaluationRepo {
	return &memEvaluationRepo{docs: make(map[string]domain.EvaluationRecord)}
}

func (r *memEvaluationRepo) Upsert(_ context.Context, rec *domain.EvaluationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("connection reset")
	}
	r.docs[rec.DocumentID()] = *rec
	return nil
}

func (r *memEvaluationRepo) FetchAll(_ context.Context) ([]domain.EvaluationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errors.New("connection reset")
	}
	records := make([]domain.EvaluationRecord, 0, len(r.docs))
	for _, rec := range r.docs {
		records = append(records, rec)
	}
	return records, nil
}

func (r *memEvaluationRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.docs)), nil
}

// staticCatalog deals a fixed catalog, bypassing object storage entirely.
type staticCatalog struct {
	items    []domain.AudioItem
	buildErr error
}

func (c *staticCatalog) Build(_ context.Context) ([]domain.AudioItem, error) {
	if c.buildErr != nil {
		return nil, c.buildErr
	}
	return c.items, nil
}

func (c *staticCatalog) StreamURL(_ context.Context, item domain.AudioItem) (string, error) {
	return "https://signed.example.com/" + item.StorageKey, nil
}

func (c *staticCatalog) FetchAudio(_ context.Context, _ domain.AudioItem) ([]byte, error) {
	return []byte("audio"), nil
}

func (c *staticCatalog) Invalidate() {}

func testItems() []domain.AudioItem {
	return []domain.AudioItem{
		{AnonymousID: "audio_aa_0", OriginalName: "voice1.wav", Category: "library", Duration: domain.DurationShort, StorageKey: "p/library/voice1.wav", ContentType: "audio/wav"},
		{AnonymousID: "audio_bb_1", OriginalName: "voice2.mp3", Category: "synthesized", Duration: domain.DurationShort, StorageKey: "p/synthesized/voice2.mp3", ContentType: "audio/mpeg"},
		{AnonymousID: "audio_cc_2", OriginalName: "pingocast_ep1.mp3", Category: "library", Duration: domain.DurationLong, StorageKey: "p/library/pingocast_ep1.mp3", ContentType: "audio/mpeg"},
	}
}

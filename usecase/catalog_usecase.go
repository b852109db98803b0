package usecase

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"path"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/mamaepingo/voice-eval/domain"
	"github.com/mamaepingo/voice-eval/util/anonid"
)

var audioExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".flac": true,
	".m4a": true, ".ogg": true, ".opus": true,
}

type catalogUsecase struct {
	storage domain.ObjectStorage
	bucket  string
	prefix  string

	catalogCache *gocache.Cache
	urlCache     *gocache.Cache
	urlExpiry    time.Duration
	timeout      time.Duration
	httpClient   *http.Client
	logger       *zap.Logger
}

func NewCatalogUsecase(
	storage domain.ObjectStorage,
	bucket, prefix string,
	catalogWindow, urlExpiry, timeout time.Duration,
	logger *zap.Logger,
) domain.CatalogUsecase {
	// cached URLs live for three quarters of the presign expiry so a hit
	// is never already expired
	urlWindow := urlExpiry * 3 / 4
	return &catalogUsecase{
		storage:      storage,
		bucket:       bucket,
		prefix:       prefix,
		catalogCache: gocache.New(catalogWindow, 2*catalogWindow),
		urlCache:     gocache.New(urlWindow, 2*urlWindow),
		urlExpiry:    urlExpiry,
		timeout:      timeout,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

func (uc *catalogUsecase) cacheKey() string {
	return uc.bucket + "|" + uc.prefix
}

func (uc *catalogUsecase) Build(ctx context.Context) ([]domain.AudioItem, error) {
	if cached, ok := uc.catalogCache.Get(uc.cacheKey()); ok {
		return cached.([]domain.AudioItem), nil
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	objects, err := uc.storage.ListObjects(ctx, uc.bucket, uc.prefix)
	if err != nil {
		return nil, &domain.ConfigError{Op: "list audio objects", Err: err}
	}

	items := make([]domain.AudioItem, 0, len(objects))
	for _, obj := range objects {
		key := obj.Key
		if strings.HasSuffix(key, "/") {
			continue
		}
		ext := strings.ToLower(path.Ext(key))
		if !audioExtensions[ext] {
			continue
		}

		rel := strings.TrimPrefix(key, uc.prefix)
		parts := strings.Split(rel, "/")
		category := domain.CategoryRoot
		if len(parts) > 1 {
			category = parts[0]
		}
		filename := parts[len(parts)-1]

		items = append(items, domain.AudioItem{
			AnonymousID:  anonid.New(filename, len(items)),
			OriginalName: filename,
			Category:     category,
			Duration:     domain.ClassifyDuration(filename),
			StorageKey:   key,
			Bucket:       uc.bucket,
			ContentType:  contentTypeForExt(ext),
		})
	}

	// one uniform permutation per cache window, stable until it expires
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})

	uc.catalogCache.Set(uc.cacheKey(), items, gocache.DefaultExpiration)
	uc.logger.Info("catalog built",
		zap.Int("items", len(items)),
		zap.String("bucket", uc.bucket),
		zap.String("prefix", uc.prefix))
	return items, nil
}

func (uc *catalogUsecase) StreamURL(ctx context.Context, item domain.AudioItem) (string, error) {
	urlKey := item.Bucket + "|" + item.StorageKey
	if cached, ok := uc.urlCache.Get(urlKey); ok {
		return cached.(string), nil
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	url, err := uc.storage.SignGetURL(ctx, item.Bucket, item.StorageKey, uc.urlExpiry)
	if err != nil {
		return "", &domain.TransientError{Op: "sign audio url", Err: err}
	}
	uc.urlCache.Set(urlKey, url, gocache.DefaultExpiration)
	return url, nil
}

// FetchAudio downloads the clip through its signed URL. A failed fetch may
// just mean the cached URL outlived its signature, so it retries once with
// a fresh one.
func (uc *catalogUsecase) FetchAudio(ctx context.Context, item domain.AudioItem) ([]byte, error) {
	url, err := uc.StreamURL(ctx, item)
	if err != nil {
		return nil, err
	}

	data, fetchErr := uc.fetch(ctx, url)
	if fetchErr == nil {
		return data, nil
	}

	uc.urlCache.Delete(item.Bucket + "|" + item.StorageKey)
	url, err = uc.StreamURL(ctx, item)
	if err != nil {
		return nil, err
	}
	data, fetchErr = uc.fetch(ctx, url)
	if fetchErr != nil {
		return nil, &domain.TransientError{Op: "fetch audio", Err: fetchErr}
	}
	return data, nil
}

func (uc *catalogUsecase) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := uc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (uc *catalogUsecase) Invalidate() {
	uc.catalogCache.Flush()
	uc.urlCache.Flush()
}

func contentTypeForExt(ext string) string {
	if ext == ".wav" {
		return "audio/wav"
	}
	return "audio/mpeg"
}

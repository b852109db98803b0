package domain

import (
	"context"
	"io"
	"strings"
	"time"
)

// DurationBucket is the coarse length class of a clip, derived from its
// filename rather than from decoding the audio.
type DurationBucket string

const (
	DurationShort DurationBucket = "curto"
	DurationLong  DurationBucket = "longo"
)

// CategoryRoot is the sentinel category for objects sitting directly under
// the storage prefix.
const CategoryRoot = "raiz"

const (
	longMarker        = "pingocast"
	longNameThreshold = 50
)

// ClassifyDuration is the single duration heuristic shared by ingestion and
// serving. A clip is long when its filename carries the marker substring or
// exceeds the length threshold.
func ClassifyDuration(filename string) DurationBucket {
	if strings.Contains(strings.ToLower(filename), longMarker) || len(filename) > longNameThreshold {
		return DurationLong
	}
	return DurationShort
}

// AudioItem is one discoverable clip. Built fresh on each catalog load,
// held only in memory, never persisted.
type AudioItem struct {
	AnonymousID  string         `json:"anonymous_id"`
	OriginalName string         `json:"-"`
	Category     string         `json:"category"`
	Duration     DurationBucket `json:"duration"`
	StorageKey   string         `json:"-"`
	Bucket       string         `json:"-"`
	ContentType  string         `json:"content_type"`
}

// ObjectInfo is one entry from a bucket listing.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage is the narrow object-store surface the system consumes.
type ObjectStorage interface {
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	SignGetURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
	PutObject(ctx context.Context, bucket, key string, body io.Reader, contentType, cacheControl string) error
	EnsureBucket(ctx context.Context, bucket string) error
}

// CatalogUsecase builds and caches the shuffled in-memory catalog and hands
// out time-limited audio URLs.
type CatalogUsecase interface {
	// Build returns the catalog for the configured bucket and prefix,
	// shuffled once per cache window. An unreachable backend yields a
	// ConfigError; zero discoverable items is a valid empty catalog.
	Build(ctx context.Context) ([]AudioItem, error)

	// StreamURL returns a signed, time-limited URL for one item.
	StreamURL(ctx context.Context, item AudioItem) (string, error)

	// FetchAudio downloads the item bytes, treating an expired-URL failure
	// as retryable with a freshly signed URL.
	FetchAudio(ctx context.Context, item AudioItem) ([]byte, error)

	// Invalidate clears the catalog and signed-URL caches.
	Invalidate()
}

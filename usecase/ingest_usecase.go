package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"github.com/mamaepingo/voice-eval/domain"
	"github.com/mamaepingo/voice-eval/util/anonid"
)

// ManifestEntry describes one uploaded clip in the bucket manifest.
type ManifestEntry struct {
	AnonymousID  string                `json:"anonymous_id"`
	OriginalName string                `json:"original_name"`
	Category     string                `json:"category"`
	Duration     domain.DurationBucket `json:"duration"`
	StorageKey   string                `json:"s3_key"`
	Bucket       string                `json:"bucket"`
	ContentType  string                `json:"content_type"`
	Title        string                `json:"title,omitempty"`
	Artist       string                `json:"artist,omitempty"`
}

type Manifest struct {
	UploadDate time.Time       `json:"upload_date"`
	TotalFiles int             `json:"total_files"`
	Bucket     string          `json:"bucket"`
	Prefix     string          `json:"prefix"`
	Files      []ManifestEntry `json:"files"`
}

// IngestUsecase pushes local audio directories into the object store so the
// catalog builder can discover them. The directory base name becomes the
// category, matching how the builder derives it back from the key.
type IngestUsecase struct {
	storage domain.ObjectStorage
	bucket  string
	prefix  string
	logger  *zap.Logger
}

func NewIngestUsecase(storage domain.ObjectStorage, bucket, prefix string, logger *zap.Logger) *IngestUsecase {
	return &IngestUsecase{
		storage: storage,
		bucket:  bucket,
		prefix:  prefix,
		logger:  logger,
	}
}

// UploadDirs uploads every recognized audio file under the given directories
// and finishes by writing a JSON manifest next to them in the bucket.
func (uc *IngestUsecase) UploadDirs(ctx context.Context, dirs []string) (*Manifest, error) {
	if err := uc.storage.EnsureBucket(ctx, uc.bucket); err != nil {
		return nil, &domain.ConfigError{Op: "ensure bucket", Err: err}
	}

	manifest := &Manifest{
		UploadDate: time.Now().UTC(),
		Bucket:     uc.bucket,
		Prefix:     uc.prefix,
		Files:      []ManifestEntry{},
	}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			uc.logger.Warn("skipping unreadable directory", zap.String("dir", dir), zap.Error(err))
			continue
		}

		category := filepath.Base(dir)
		if category == "." || category == string(filepath.Separator) {
			category = domain.CategoryRoot
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			ext := strings.ToLower(filepath.Ext(name))
			if !audioExtensions[ext] {
				continue
			}

			filePath := filepath.Join(dir, name)
			item, err := uc.uploadFile(ctx, filePath, name, category, len(manifest.Files))
			if err != nil {
				uc.logger.Error("upload failed", zap.String("file", filePath), zap.Error(err))
				continue
			}
			manifest.Files = append(manifest.Files, item)
			uc.logger.Info("uploaded",
				zap.String("file", name),
				zap.String("key", item.StorageKey),
				zap.String("category", category))
		}
	}

	manifest.TotalFiles = len(manifest.Files)
	if err := uc.putManifest(ctx, manifest); err != nil {
		return manifest, err
	}
	return manifest, nil
}

func (uc *IngestUsecase) uploadFile(ctx context.Context, filePath, name, category string, seq int) (ManifestEntry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return ManifestEntry{}, err
	}

	contentType := sniffContentType(data, name)
	key := path.Join(uc.prefix+category, name)

	err = uc.storage.PutObject(ctx, uc.bucket, key, bytes.NewReader(data), contentType, "public, max-age=86400")
	if err != nil {
		return ManifestEntry{}, &domain.TransientError{Op: "put object", Err: err}
	}

	entry := ManifestEntry{
		AnonymousID:  anonid.New(name, seq),
		OriginalName: name,
		Category:     category,
		Duration:     domain.ClassifyDuration(name),
		StorageKey:   key,
		Bucket:       uc.bucket,
		ContentType:  contentType,
	}

	// tags are nice-to-have manifest context, never a reason to fail
	if meta, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
		entry.Title = meta.Title()
		entry.Artist = meta.Artist()
	}
	return entry, nil
}

func (uc *IngestUsecase) putManifest(ctx context.Context, manifest *Manifest) error {
	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	key := uc.prefix + "metadata.json"
	if err := uc.storage.PutObject(ctx, uc.bucket, key, bytes.NewReader(payload), "application/json", ""); err != nil {
		return &domain.TransientError{Op: "put manifest", Err: err}
	}
	uc.logger.Info("manifest uploaded", zap.String("key", key), zap.Int("files", manifest.TotalFiles))
	return nil
}

func sniffContentType(data []byte, name string) string {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return contentTypeForExt(strings.ToLower(filepath.Ext(name)))
}

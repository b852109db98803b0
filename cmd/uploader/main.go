// Command uploader pushes local audio directories into the object store and
// writes the bucket manifest. Run once per batch of clips; directory base
// names become serving categories.
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamaepingo/voice-eval/bootstrap"
	"github.com/mamaepingo/voice-eval/repository"
	"github.com/mamaepingo/voice-eval/usecase"
)

func main() {
	dirsFlag := flag.String("dirs", "", "comma-separated audio directories to upload")
	flag.Parse()

	if *dirsFlag == "" {
		log.Fatal("no directories given, use -dirs=dir1,dir2")
	}
	dirs := strings.Split(*dirsFlag, ",")

	env, err := bootstrap.NewEnv()
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	logger := bootstrap.NewLogger(env.AppEnv)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	s3Client, presign, err := bootstrap.NewS3Clients(ctx, env)
	if err != nil {
		logger.Fatal("object store setup failed", zap.Error(err))
	}

	storage := repository.NewObjectStorage(s3Client, presign, env.AWSRegion)
	ingest := usecase.NewIngestUsecase(storage, env.S3Bucket, env.S3Prefix, logger)

	manifest, err := ingest.UploadDirs(ctx, dirs)
	if err != nil {
		logger.Fatal("upload failed", zap.Error(err))
	}
	logger.Info("upload complete",
		zap.Int("files", manifest.TotalFiles),
		zap.String("bucket", manifest.Bucket),
		zap.String("prefix", manifest.Prefix))
}

package bootstrap

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mamaepingo/voice-eval/domain"
)

// NewS3Clients builds the object-store client and its presigner from the
// configured region and static credentials.
func NewS3Clients(ctx context.Context, env *Env) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(env.AWSRegion),
		awsconfig.WithCredentialsProvider(aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(env.AWSAccessKeyID, env.AWSSecretAccessKey, ""),
		)),
	)
	if err != nil {
		return nil, nil, &domain.ConfigError{Op: "object store credentials", Err: err}
	}

	client := s3.NewFromConfig(cfg)
	return client, s3.NewPresignClient(client), nil
}

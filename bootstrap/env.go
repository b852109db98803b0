package bootstrap

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/mamaepingo/voice-eval/domain"
)

// Env carries every recognized configuration input. Required fields are
// validated at startup; a missing one is a configuration error, not a data
// error.
type Env struct {
	AppEnv         string `mapstructure:"APP_ENV"`
	ServerAddress  string `mapstructure:"SERVER_ADDRESS" validate:"required"`
	ContextTimeout int    `mapstructure:"CONTEXT_TIMEOUT" validate:"min=1"`

	AWSRegion          string `mapstructure:"AWS_REGION" validate:"required"`
	AWSAccessKeyID     string `mapstructure:"AWS_ACCESS_KEY_ID" validate:"required"`
	AWSSecretAccessKey string `mapstructure:"AWS_SECRET_ACCESS_KEY" validate:"required"`
	S3Bucket           string `mapstructure:"AWS_S3_BUCKET" validate:"required"`
	S3Prefix           string `mapstructure:"S3_PREFIX" validate:"required"`

	MongoURI             string `mapstructure:"MONGO_URI" validate:"required"`
	MongoDatabase        string `mapstructure:"MONGO_DATABASE" validate:"required"`
	EvaluationCollection string `mapstructure:"EVALUATION_COLLECTION"`

	SessionSecret   string `mapstructure:"SESSION_SECRET" validate:"required"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS" validate:"min=1"`

	CatalogCacheMinutes   int    `mapstructure:"CATALOG_CACHE_MINUTES" validate:"min=1"`
	SignedURLTTLMinutes   int    `mapstructure:"SIGNED_URL_TTL_MINUTES" validate:"min=1"`
	AnalyticsCacheSeconds int    `mapstructure:"ANALYTICS_CACHE_SECONDS" validate:"min=1"`
	FileDisplayPrefix     string `mapstructure:"FILE_DISPLAY_PREFIX"`
}

var envKeys = []string{
	"APP_ENV", "SERVER_ADDRESS", "CONTEXT_TIMEOUT",
	"AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	"AWS_S3_BUCKET", "S3_PREFIX",
	"MONGO_URI", "MONGO_DATABASE", "EVALUATION_COLLECTION",
	"SESSION_SECRET", "SESSION_TTL_HOURS",
	"CATALOG_CACHE_MINUTES", "SIGNED_URL_TTL_MINUTES",
	"ANALYTICS_CACHE_SECONDS", "FILE_DISPLAY_PREFIX",
}

func NewEnv() (*Env, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	_ = viper.ReadInConfig() // a .env file is optional, the environment is not

	viper.AutomaticEnv()
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("SERVER_ADDRESS", ":8080")
	viper.SetDefault("CONTEXT_TIMEOUT", 10)
	viper.SetDefault("EVALUATION_COLLECTION", domain.CollectionEvaluation)
	viper.SetDefault("SESSION_TTL_HOURS", 24)
	viper.SetDefault("CATALOG_CACHE_MINUTES", 15)
	viper.SetDefault("SIGNED_URL_TTL_MINUTES", 60)
	viper.SetDefault("ANALYTICS_CACHE_SECONDS", 60)
	viper.SetDefault("FILE_DISPLAY_PREFIX", "original_filename_")

	env := &Env{}
	if err := viper.Unmarshal(env); err != nil {
		return nil, &domain.ConfigError{Op: "parse environment", Err: err}
	}
	if err := validator.New().Struct(env); err != nil {
		return nil, &domain.ConfigError{Op: "validate environment", Err: fmt.Errorf("missing or invalid settings: %w", err)}
	}
	return env, nil
}

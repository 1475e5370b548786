package artifacts

import (
	"errors"
	"time"

	"github.com/lipsense/portal/internal/pkg/env"
)

// Config holds the object storage settings for AI job outputs.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Prefix          string
	LinkTTL         time.Duration
	Enabled         bool
}

// LoadConfig loads the S3 configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Prefix:          env.GetEnv("S3_RESULTS_PREFIX", "results/"),
		LinkTTL:         env.GetSeconds("S3_LINK_TTL_SECONDS", 15*time.Minute),
		Enabled:         env.GetEnv("S3_ENABLED", "false") == "true",
	}

	if cfg.Enabled {
		if cfg.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when S3 is enabled")
		}
		if cfg.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when S3 is enabled")
		}
		if cfg.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when S3 is enabled")
		}
	}
	return cfg, nil
}

func (c *Config) IsEnabled() bool {
	return c.Enabled
}

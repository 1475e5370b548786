// Package artifacts signs download links for AI job outputs kept in S3.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
)

// ErrForbiddenKey is returned for keys outside the results prefix.
var ErrForbiddenKey = errors.New("object key is outside the results prefix")

type Client struct {
	s3Client *s3.Client
	presign  *s3.PresignClient
	config   *Config
}

// NewClient builds a signer for cfg. It does not contact S3.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("S3 is disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	return &Client{
		s3Client: s3Client,
		presign:  s3.NewPresignClient(s3Client),
		config:   cfg,
	}, nil
}

// NewClientFromEnv returns nil without error when S3 is disabled, so callers
// can pass the result straight to the dashboard as an optional linker.
func NewClientFromEnv(ctx context.Context) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.IsEnabled() {
		log.Infof("[Artifacts] S3 disabled, result downloads will not be linked")
		return nil, nil
	}
	c, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Infof("[Artifacts] signing result links for bucket %s", cfg.BucketName)
	return c, nil
}

// Ping checks that the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.config.BucketName)})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", c.config.BucketName, err)
	}
	return nil
}

// DownloadURL presigns a GET for key, valid for the configured link TTL.
func (c *Client) DownloadURL(ctx context.Context, key string) (string, error) {
	key, err := c.checkKey(key)
	if err != nil {
		return "", err
	}
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(c.config.LinkTTL))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

func (c *Client) checkKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" || strings.Contains(key, "..") {
		return "", ErrForbiddenKey
	}
	if c.config.Prefix != "" && !strings.HasPrefix(key, c.config.Prefix) {
		return "", ErrForbiddenKey
	}
	return key, nil
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	appconfig "github.com/ikkim/pumpcatalog-backend/config"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
)

// S3Storage writes order archives to a bucket.
type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Storage(ctx context.Context, cfg *appconfig.S3Config) *S3Storage {
	var awsCfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
		if err != nil {
			logger.Warn("Falling back to region-only AWS config", map[string]interface{}{
				"error": err.Error(),
			})
			awsCfg = aws.Config{Region: cfg.Region}
		}
	}

	return &S3Storage{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		baseURL: cfg.BaseURL,
	}
}

// ObjectKey builds a collision-free key under folder, keeping the
// extension of name.
func ObjectKey(folder, name string) string {
	return fmt.Sprintf("%s/%s-%s%s", folder, time.Now().UTC().Format("20060102"), uuid.NewString(), path.Ext(name))
}

// Upload stores body under key and returns its public URL.
func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	url := s.FileURL(key)
	logger.Info("Object uploaded", map[string]interface{}{
		"bucket": s.bucket,
		"key":    key,
		"bytes":  len(body),
	})
	return url, nil
}

// FileURL resolves the public URL for key.
func (s *S3Storage) FileURL(key string) string {
	if s.baseURL != "" {
		// Use CloudFront or custom domain
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}

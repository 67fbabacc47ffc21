package storage

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"skill-hire/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	ErrNotConfigured     = errors.New("object storage not configured")
	ErrInvalidObjectName = errors.New("invalid object name")
)

// MinIO stores objects in a single bucket of an S3-compatible server.
type MinIO struct {
	client *minio.Client
	bucket string
	logger *log.Logger
}

func NewMinIO(ctx context.Context, cfg config.StorageConfig, logger *log.Logger) (*MinIO, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, ErrNotConfigured
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.ResumeBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.ResumeBucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Printf("storage bucket=%s status=created", cfg.ResumeBucket)
		}
	}

	return &MinIO{client: client, bucket: cfg.ResumeBucket, logger: logger}, nil
}

func (s *MinIO) Bucket() string {
	return s.bucket
}

func (s *MinIO) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	if err := checkObjectName(objectName); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil && s.logger != nil {
		s.logger.Printf("storage put object=%s status=error err=%v", objectName, err)
	}
	return err
}

func (s *MinIO) PresignedGet(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if err := checkObjectName(objectName); err != nil {
		return "", err
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *MinIO) Remove(ctx context.Context, objectName string) error {
	if err := checkObjectName(objectName); err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}

func checkObjectName(name string) error {
	if strings.TrimSpace(name) == "" || strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
		return ErrInvalidObjectName
	}
	return nil
}

package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/khiva-consulting/backoffice-api/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioStorage implements Storage for a MinIO / S3-compatible object store
type MinioStorage struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewMinioStorage creates a new MinIO storage instance
func NewMinioStorage(cfg *config.StorageConfig, logger *zap.Logger) (*MinioStorage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	s := &MinioStorage{
		client: client,
		bucket: cfg.MinioBucket,
		logger: logger,
	}

	if err := s.ensureBucket(context.Background()); err != nil {
		return nil, err
	}

	logger.Info("MinIO storage initialized",
		zap.String("endpoint", cfg.MinioEndpoint),
		zap.String("bucket", cfg.MinioBucket),
	)

	return s, nil
}

func (s *MinioStorage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Save uploads an object at the given path, overwriting any existing object
func (s *MinioStorage) Save(ctx context.Context, path string, contentType string, data io.Reader) (int64, error) {
	info, err := s.client.PutObject(ctx, s.bucket, path, data, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to put object %s: %w", path, err)
	}

	s.logger.Info("file uploaded to MinIO",
		zap.String("object", path),
		zap.String("bucket", s.bucket),
		zap.Int64("size", info.Size),
	)

	return info.Size, nil
}

// Download retrieves an object from MinIO
func (s *MinioStorage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", path, err)
	}
	// GetObject is lazy; surface missing objects on first stat
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("failed to stat object %s: %w", path, err)
	}
	return obj, nil
}

// Delete removes an object from MinIO
func (s *MinioStorage) Delete(ctx context.Context, path string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", path, err)
	}
	return nil
}

// Exists reports whether an object exists
func (s *MinioStorage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object %s: %w", path, err)
	}
	return true, nil
}

package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rajbhoyar729/LokDarpan/internal/config"
)

// MinioBackend stores objects in a self-hosted MinIO server.
type MinioBackend struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewMinioBackend connects to MinIO and creates the bucket if it does not
// exist yet.
func NewMinioBackend(ctx context.Context, cfg config.StorageConfig) (*MinioBackend, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.AWSRegion}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.Bucket)
	}

	return &MinioBackend{client: client, bucket: cfg.Bucket, publicBase: publicBase}, nil
}

func (b *MinioBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := b.client.PutObject(ctx, b.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (b *MinioBackend) Delete(ctx context.Context, key string) error {
	return b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{})
}

func (b *MinioBackend) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	info, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ObjectInfo{}, ErrObjectNotFound
		}
		return ObjectInfo{}, fmt.Errorf("stat object: %w", err)
	}
	return ObjectInfo{Size: info.Size, ContentType: info.ContentType}, nil
}

// PresignPut returns a presigned PUT URL. MinIO does not sign the content
// type, so contentType is not enforced by the server.
func (b *MinioBackend) PresignPut(ctx context.Context, key, _ string, ttl time.Duration) (string, error) {
	u, err := b.client.PresignedPutObject(ctx, b.bucket, key, ttl)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (b *MinioBackend) URL(key string) string {
	return b.publicBase + "/" + key
}

func (b *MinioBackend) Bucket() string {
	return b.bucket
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/radif/medias/internal/apperr"
	"github.com/radif/medias/internal/media"
)

// MinioConfig configures MinioStorage.
type MinioConfig struct {
	Endpoint  string // bare host, e.g. "localhost:9000"
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// Provision creates the bucket with a public-read policy when missing.
	Provision bool
}

// MinioStorage stores uploads through minio-go. It suits S3-compatible
// services addressed by a bare host (MinIO, R2, ArvanCloud).
type MinioStorage struct {
	client *minio.Client
	bucket string
	urls   PublicURLs
}

// NewMinioStorage creates a MinIO client and optionally provisions the bucket.
func NewMinioStorage(ctx context.Context, cfg MinioConfig, urls PublicURLs, log *zap.Logger) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, apperr.E(apperr.Configuration, "create minio client", err)
	}
	urls.Bucket = cfg.Bucket

	if cfg.Provision {
		if err := provisionBucket(ctx, client, cfg.Bucket, cfg.Region, log); err != nil {
			return nil, apperr.StorageError("provision bucket", err)
		}
	}

	return &MinioStorage{client: client, bucket: cfg.Bucket, urls: urls}, nil
}

func provisionBucket(ctx context.Context, client *minio.Client, bucket, region string, log *zap.Logger) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		if log != nil {
			log.Info("created bucket", zap.String("bucket", bucket))
		}
	}

	if err := client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}
	return nil
}

// Put uploads body to public/<name>. An existing object is never replaced.
func (s *MinioStorage) Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (media.Key, error) {
	if err := checkName(name); err != nil {
		return media.Key{}, apperr.StorageError("upload object", err)
	}
	key := media.RemoteKey(name)

	// MinIO has no conditional put here; stat first.
	_, err := s.client.StatObject(ctx, s.bucket, key.Path, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return media.Key{}, apperr.StorageError("upload "+key.Path, ErrObjectExists)
	case minio.ToErrorResponse(err).Code != "NoSuchKey":
		return media.Key{}, apperr.StorageError("stat "+key.Path, err)
	}

	if size <= 0 {
		size = -1
	}
	_, err = s.client.PutObject(ctx, s.bucket, key.Path, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return media.Key{}, apperr.StorageError("upload "+key.Path, err)
	}
	return key, nil
}

// PublicURL returns the browser-accessible URL for key.
func (s *MinioStorage) PublicURL(key media.Key) (string, error) {
	return s.urls.URL(key)
}

// Delete removes the object at key from the bucket.
func (s *MinioStorage) Delete(ctx context.Context, key media.Key) error {
	if key.Kind != media.KindRemote {
		return fmt.Errorf("%w: %s", ErrWrongBackend, key)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key.Path, minio.RemoveObjectOptions{}); err != nil {
		return apperr.StorageError("delete "+key.Path, err)
	}
	return nil
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET
// under the public/ prefix.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/%s*", bucket, media.RemotePrefix),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/radif/medias/internal/apperr"
	"github.com/radif/medias/internal/media"
)

// S3Client is the subset of the S3 API used by S3Storage.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config configures S3Storage.
type S3Config struct {
	Endpoint  string // may carry a path, e.g. https://<ref>.supabase.co/storage/v1/s3
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

// S3Storage stores uploads in an S3-compatible bucket under the public/ prefix.
type S3Storage struct {
	client S3Client
	bucket string
	urls   PublicURLs
}

// S3Option configures S3Storage.
type S3Option func(*S3Storage)

// WithS3Client replaces the SDK client, mostly for tests.
func WithS3Client(c S3Client) S3Option {
	return func(s *S3Storage) { s.client = c }
}

// NewS3Storage builds a path-style S3 client for cfg.
func NewS3Storage(ctx context.Context, cfg S3Config, urls PublicURLs, opts ...S3Option) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, apperr.ConfigurationError("STORAGE_BUCKET not set")
	}
	urls.Bucket = cfg.Bucket

	s := &S3Storage{bucket: cfg.Bucket, urls: urls}
	for _, opt := range opts {
		opt(s)
	}
	if s.client != nil {
		return s, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, apperr.E(apperr.Configuration, "load s3 config", err)
	}

	s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})
	return s, nil
}

// Put uploads body to public/<name>. It never replaces an existing object.
func (s *S3Storage) Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (media.Key, error) {
	if err := checkName(name); err != nil {
		return media.Key{}, apperr.StorageError("upload object", err)
	}
	key := media.RemoteKey(name)

	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key.Path),
		Body:        body,
		ContentType: aws.String(contentType),
		IfNoneMatch: aws.String("*"),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return media.Key{}, apperr.StorageError("upload "+key.Path, classifyS3Error(err))
	}
	return key, nil
}

// PublicURL returns the canonical public address of key.
func (s *S3Storage) PublicURL(key media.Key) (string, error) {
	return s.urls.URL(key)
}

// Delete removes key from the bucket.
func (s *S3Storage) Delete(ctx context.Context, key media.Key) error {
	if key.Kind != media.KindRemote {
		return fmt.Errorf("%w: %s", ErrWrongBackend, key)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key.Path),
	})
	if err != nil {
		return apperr.StorageError("delete "+key.Path, classifyS3Error(err))
	}
	return nil
}

func classifyS3Error(err error) error {
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%w: %v", ErrBucketMissing, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "Duplicate", "ConditionalRequestConflict":
			return fmt.Errorf("%w: %v", ErrObjectExists, err)
		case "AccessDenied", "Unauthorized", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		case "NoSuchBucket":
			return fmt.Errorf("%w: %v", ErrBucketMissing, err)
		}
	}
	return err
}

package storage_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/radif/medias/internal/apperr"
	"github.com/radif/medias/internal/media"
	"github.com/radif/medias/internal/storage"
)

type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *mockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func newS3(t *testing.T, client storage.S3Client, urls storage.PublicURLs) *storage.S3Storage {
	t.Helper()
	s, err := storage.NewS3Storage(context.Background(), storage.S3Config{Bucket: "medias", Region: "us-east-1"}, urls, storage.WithS3Client(client))
	require.NoError(t, err)
	return s
}

func TestS3Storage_Put(t *testing.T) {
	t.Parallel()

	t.Run("uploads under public prefix without overwrite", func(t *testing.T) {
		t.Parallel()
		client := new(mockS3Client)
		client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return *in.Bucket == "medias" &&
				*in.Key == "public/abc.png" &&
				*in.ContentType == "image/png" &&
				*in.IfNoneMatch == "*" &&
				*in.ContentLength == 3
		})).Return(&s3.PutObjectOutput{}, nil)

		s := newS3(t, client, storage.PublicURLs{ProjectRef: "proj123"})
		key, err := s.Put(context.Background(), "abc.png", strings.NewReader("png"), 3, "image/png")
		require.NoError(t, err)
		assert.Equal(t, media.RemoteKey("abc.png"), key)

		url, err := s.PublicURL(key)
		require.NoError(t, err)
		assert.Equal(t, "https://proj123.supabase.co/storage/v1/object/public/medias/public/abc.png", url)
		client.AssertExpectations(t)
	})

	t.Run("existing object", func(t *testing.T) {
		t.Parallel()
		client := new(mockS3Client)
		client.On("PutObject", mock.Anything, mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"})

		s := newS3(t, client, storage.PublicURLs{ProjectRef: "proj123"})
		_, err := s.Put(context.Background(), "abc.png", strings.NewReader("png"), 3, "image/png")
		require.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrObjectExists)
		assert.Equal(t, apperr.Storage, apperr.KindOf(err))
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()
		client := new(mockS3Client)
		client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

		s := newS3(t, client, storage.PublicURLs{ProjectRef: "proj123"})
		_, err := s.Put(context.Background(), "abc.png", strings.NewReader("png"), 3, "image/png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		assert.Equal(t, apperr.Storage, apperr.KindOf(err))
	})
}

func TestS3Storage_PublicURL(t *testing.T) {
	t.Parallel()

	t.Run("public base override", func(t *testing.T) {
		s := newS3(t, new(mockS3Client), storage.PublicURLs{Base: "https://cdn.example.com/medias/"})
		url, err := s.PublicURL(media.RemoteKey("a.jpg"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/medias/public/a.jpg", url)
	})

	t.Run("derived from storage endpoint", func(t *testing.T) {
		s := newS3(t, new(mockS3Client), storage.PublicURLs{Endpoint: "https://proj123.supabase.co/storage/v1/s3/"})
		url, err := s.PublicURL(media.RemoteKey("a.jpg"))
		require.NoError(t, err)
		assert.Equal(t, "https://proj123.supabase.co/storage/v1/object/public/medias/public/a.jpg", url)
	})

	t.Run("project ref wins over endpoint", func(t *testing.T) {
		s := newS3(t, new(mockS3Client), storage.PublicURLs{
			ProjectRef: "proj123",
			Endpoint:   "https://other.example.com/storage/v1/s3",
		})
		url, err := s.PublicURL(media.RemoteKey("a.jpg"))
		require.NoError(t, err)
		assert.Equal(t, media.RemotePublicURL("proj123", "medias", "public/a.jpg"), url)
	})

	t.Run("missing project ref", func(t *testing.T) {
		s := newS3(t, new(mockS3Client), storage.PublicURLs{})
		_, err := s.PublicURL(media.RemoteKey("a.jpg"))
		require.Error(t, err)
		assert.Equal(t, apperr.Configuration, apperr.KindOf(err))
	})
}

func TestS3Storage_Delete(t *testing.T) {
	t.Parallel()
	client := new(mockS3Client)
	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return *in.Key == "public/a.jpg"
	})).Return(&s3.DeleteObjectOutput{}, nil)

	s := newS3(t, client, storage.PublicURLs{ProjectRef: "p"})
	require.NoError(t, s.Delete(context.Background(), media.RemoteKey("a.jpg")))
	assert.ErrorIs(t, s.Delete(context.Background(), media.LocalKey("a.jpg")), storage.ErrWrongBackend)
	client.AssertExpectations(t)
}
